package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusevents/internal/domain"
)

const eventColumns = `id, name, venue_id, venue_name, date, time, end_time, description, price, organizer, created_by, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, name, venue_id, venue_name, date, time, end_time, description, price, organizer, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, nullString(e.VenueID), e.VenueName, e.Date, e.Time, e.EndTime,
		e.Description, e.Price, e.Organizer, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	args := []any{}
	if limit := params.Limit(); limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, params.Offset())
	}
	events, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at`)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var venueID, endTime, desc, organizer, createdBy sql.NullString
	err := s.Scan(&e.ID, &e.Name, &venueID, &e.VenueName, &e.Date, &e.Time, &endTime,
		&desc, &e.Price, &organizer, &createdBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.VenueID = venueID.String
	e.EndTime = endTime.String
	e.Description = desc.String
	e.Organizer = organizer.String
	e.CreatedBy = createdBy.String
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
