package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"

	"github.com/lib/pq"
)

const venueColumns = `id, name, location, capacity, description, facilities, image, generally_available, created_by, created_at, updated_at`

const bookingColumns = `id, venue_id, event_id, event_name, date, start_time, end_time, status, created_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{DB: db}
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, location, capacity, description, facilities, image, generally_available, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		v.Name, v.Location, v.Capacity, v.Description, pq.Array(v.Facilities), v.Image,
		v.GenerallyAvailable, v.CreatedBy, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if isPQCode(err, pqUniqueViolation) {
		return domain.ErrDuplicateVenueName
	}
	return err
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	return r.getOne(ctx, r.DB, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)
}

func (r *venueRepository) GetByName(ctx context.Context, name string) (*domain.Venue, error) {
	return r.getOne(ctx, r.DB, `SELECT `+venueColumns+` FROM venues WHERE name = $1`, name)
}

func (r *venueRepository) getOne(ctx context.Context, q queryer, query, key string) (*domain.Venue, error) {
	v, err := scanVenue(q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	bookings, err := listBookings(ctx, q, v.ID, "")
	if err != nil {
		return nil, err
	}
	v.Bookings = bookings
	return v, nil
}

func (r *venueRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY name`
	args := []any{}
	if limit := params.Limit(); limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, params.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	venues := make([]*domain.Venue, 0)
	byID := make(map[string]*domain.Venue)
	ids := make([]string, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		venues = append(venues, v)
		byID[v.ID] = v
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return venues, total, nil
	}

	bookingRows, err := r.DB.QueryContext(ctx, `SELECT `+bookingColumns+` FROM venue_bookings WHERE venue_id = ANY($1) ORDER BY created_at`, pq.Array(ids))
	if err != nil {
		return nil, 0, err
	}
	defer bookingRows.Close()
	for bookingRows.Next() {
		b, err := scanBooking(bookingRows)
		if err != nil {
			return nil, 0, err
		}
		if v, ok := byID[b.VenueID]; ok {
			v.Bookings = append(v.Bookings, b)
		}
	}
	return venues, total, bookingRows.Err()
}

func (r *venueRepository) Update(ctx context.Context, id string, u domain.VenueUpdate, updatedAt time.Time) (*domain.Venue, error) {
	// NULL parameters keep the stored column.
	query := `
		UPDATE venues
		SET name = COALESCE($2, name),
			location = COALESCE($3, location),
			capacity = COALESCE($4, capacity),
			description = COALESCE($5, description),
			facilities = COALESCE($6::text[], facilities),
			image = COALESCE($7, image),
			generally_available = COALESCE($8, generally_available),
			updated_at = $9
		WHERE id = $1
		RETURNING ` + venueColumns
	v, err := scanVenue(r.DB.QueryRowContext(ctx, query,
		id, nullStringPtr(u.Name), nullStringPtr(u.Location), nullInt(u.Capacity), nullStringPtr(u.Description),
		pq.Array(u.Facilities), nullStringPtr(u.Image), nullBool(u.GenerallyAvailable), updatedAt,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrNotFound
	case isPQCode(err, pqUniqueViolation):
		return nil, domain.ErrDuplicateVenueName
	case err != nil:
		return nil, err
	}
	bookings, err := listBookings(ctx, r.DB, v.ID, "")
	if err != nil {
		return nil, err
	}
	v.Bookings = bookings
	return v, nil
}

func (r *venueRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM venues
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM venue_bookings WHERE venue_id = $1)
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		// A booking inserted after the NOT EXISTS check trips the foreign key.
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.ErrVenueHasBookings
		}
		return err
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrVenueHasBookings
	}
	return domain.ErrNotFound
}

func (r *venueRepository) ListBookings(ctx context.Context, venueID string, status domain.BookingStatus) ([]domain.Booking, error) {
	return listBookings(ctx, r.DB, venueID, status)
}

func (r *venueRepository) AppendBooking(ctx context.Context, venueID string, b *domain.Booking, guard domain.BookingGuard) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	v, err := r.getOne(ctx, tx, `SELECT `+venueColumns+` FROM venues WHERE id = $1 FOR UPDATE`, venueID)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(v); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO venue_bookings (venue_id, event_id, event_name, date, start_time, end_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		v.ID, b.EventID, b.EventName, b.Date, b.StartTime, b.EndTime, string(b.Status), b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.ErrDuplicateBooking
		}
		return err
	}
	b.VenueID = v.ID
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

func (r *venueRepository) RemoveBooking(ctx context.Context, venueID, eventID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM venue_bookings WHERE venue_id = $1 AND event_id = $2`, venueID, eventID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func listBookings(ctx context.Context, q queryer, venueID string, status domain.BookingStatus) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM venue_bookings WHERE venue_id = $1`
	args := []any{venueID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func nullStringPtr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(s rowScanner) (*domain.Venue, error) {
	v := &domain.Venue{Bookings: []domain.Booking{}}
	var desc, image, createdBy sql.NullString
	err := s.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &desc, pq.Array(&v.Facilities), &image,
		&v.GenerallyAvailable, &createdBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Description = desc.String
	v.Image = image.String
	v.CreatedBy = createdBy.String
	if v.Facilities == nil {
		v.Facilities = []string{}
	}
	return v, nil
}

func scanBooking(s rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var endTime sql.NullString
	var status string
	if err := s.Scan(&b.ID, &b.VenueID, &b.EventID, &b.EventName, &b.Date, &b.StartTime, &endTime, &status, &b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.EndTime = endTime.String
	b.Status = domain.BookingStatus(status)
	return b, nil
}
