package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"clubportal/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{
	"id", "title", "description", "location", "start_at", "end_at",
	"registration_start", "registration_end", "cancel_deadline", "max_participants",
	"optional_registration_allowed", "send_cancel_email",
	"organiser_group_id", "organiser_email", "created_at", "updated_at",
	"has_fields",
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO events`).
			WithArgs("Spring drink", "", "Basement bar", start, end,
				nil, nil, nil, nil,
				true, false,
				"group-1", "board@example.org", created, created).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("event-uuid-1"))

		repo := NewEventRepository(db)
		event := &domain.Event{
			Title:                       "Spring drink",
			Location:                    "Basement bar",
			Start:                       start,
			End:                         end,
			OptionalRegistrationAllowed: true,
			OrganiserGroupID:            "group-1",
			OrganiserEmail:              "board@example.org",
			CreatedAt:                   created,
			UpdatedAt:                   created,
		}
		require.NoError(t, repo.Create(ctx, event))
		require.Equal(t, "event-uuid-1", event.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)

		repo := NewEventRepository(db)
		require.Error(t, repo.Create(ctx, &domain.Event{Title: "x", Start: start, End: end}))
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	regStart := start.Add(-14 * 24 * time.Hour)
	regEnd := start.Add(-24 * time.Hour)
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("success with registration window", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)*FROM events e WHERE e\.id = \$1`).
			WithArgs("event-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"event-1", "Hike", "A walk", "Forest", start, end,
				regStart, regEnd, nil, int64(25),
				false, true,
				"group-1", "outdoor@example.org", created, created,
				true,
			))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "event-1")
		require.NoError(t, err)
		require.True(t, event.RegistrationRequired())
		require.NotNil(t, event.MaxParticipants)
		require.Equal(t, 25, *event.MaxParticipants)
		require.Nil(t, event.CancelDeadline)
		require.True(t, event.HasFields)
		require.True(t, event.SendCancelEmail)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success without registration window", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)*FROM events e WHERE e\.id = \$1`).
			WithArgs("event-2").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"event-2", "Open house", "", "", start, end,
				nil, nil, nil, nil,
				true, false,
				"group-1", "", created, created,
				false,
			))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "event-2")
		require.NoError(t, err)
		require.False(t, event.RegistrationRequired())
		require.Nil(t, event.MaxParticipants)
		require.False(t, event.HasFields)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)*FROM events e WHERE e\.id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	start := now.Add(48 * time.Hour)
	end := start.Add(2 * time.Hour)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT(.|\n)*FROM events e WHERE e\.end_at >= \$1 ORDER BY e\.start_at, e\.id`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow("event-1", "First", "", "", start, end, nil, nil, nil, nil,
				false, false, "group-1", "", now, now, false).
			AddRow("event-2", "Second", "", "", start.Add(time.Hour), end.Add(time.Hour), nil, nil, nil, nil,
				false, false, "group-1", "", now, now, false))

	repo := NewEventRepository(db)
	events, err := repo.ListUpcoming(ctx, now)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "First", events[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
