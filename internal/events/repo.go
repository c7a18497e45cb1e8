package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sunderlandtech/backend/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEventNotFound = errors.New("event not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, event *Event) (*Event, error) {
	if event.Name == "" || event.Date == "" || event.Category == "" {
		return nil, errors.New("event name, date or category empty")
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	// admin_id has a FK to the admin table, empty means unset
	var adminID *string
	if event.AdminID != "" {
		adminID = &event.AdminID
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO event
			(id, name, date, time, location, description, link, category, image, admin_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		event.ID, event.Name, event.Date, event.Time, event.Location,
		event.Description, event.Link, event.Category, event.Image,
		adminID, event.CreatedAt,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("insert event: admin [%s] does not exist", event.AdminID)
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return event, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Event, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				e.id, e.name, e.date, e.time, e.location, e.description,
				e.link, e.category, e.image, e.admin_id, a.username, e.created_at
			FROM event e
			LEFT JOIN admin a ON a.id = e.admin_id
			WHERE e.id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrEventNotFound
	}

	event, err := scanEvent(rows.Scan)
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (r *Repo) Update(ctx context.Context, event *Event) error {
	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE event SET
				name = $1, date = $2, time = $3, location = $4,
				description = $5, link = $6, category = $7, image = $8
			WHERE id = $9;`,
		event.Name, event.Date, event.Time, event.Location,
		event.Description, event.Link, event.Category, event.Image,
		event.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM event WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// List returns all events ordered by date, with the creator username resolved
func (r *Repo) List(ctx context.Context) ([]Event, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				e.id, e.name, e.date, e.time, e.location, e.description,
				e.link, e.category, e.image, e.admin_id, a.username, e.created_at
			FROM event e
			LEFT JOIN admin a ON a.id = e.admin_id
			ORDER BY e.date ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, nil
}

func scanEvent(scan func(dest ...any) error) (*Event, error) {
	var event Event
	var eventTime, link, image, adminID, createdBy *string
	if err := scan(
		&event.ID, &event.Name, &event.Date, &eventTime, &event.Location,
		&event.Description, &link, &event.Category, &image,
		&adminID, &createdBy, &event.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	if eventTime != nil {
		event.Time = *eventTime
	}
	if link != nil {
		event.Link = *link
	}
	if image != nil {
		event.Image = *image
	}
	if adminID != nil {
		event.AdminID = *adminID
	}
	if createdBy != nil {
		event.CreatedBy = *createdBy
	}

	return &event, nil
}
