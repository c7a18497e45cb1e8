package inquiries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInquiryNotFound = errors.New("inquiry not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, inquiry *Inquiry) (*Inquiry, error) {
	if inquiry.Name == "" || inquiry.Email == "" {
		return nil, errors.New("inquiry name or email empty")
	}

	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO inquiry
			(id, name, email, phone, company_name, country, job_title, job_details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		inquiry.ID, inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.CompanyName,
		inquiry.Country, inquiry.JobTitle, inquiry.JobDetails, inquiry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert inquiry: %w", err)
	}

	return inquiry, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Inquiry, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, email, phone, company_name, country,
				job_title, job_details, created_at
			FROM inquiry
			WHERE id = $1;`,
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
		return nil, ErrInquiryNotFound
	}

	inquiry, err := scanInquiry(rows.Scan)
	if err != nil {
		return nil, err
	}

	return inquiry, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM inquiry WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

// List returns all inquiries, newest first
func (r *Repo) List(ctx context.Context) ([]Inquiry, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, email, phone, company_name, country,
				job_title, job_details, created_at
			FROM inquiry
			ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var inquiries []Inquiry
	for rows.Next() {
		inquiry, err := scanInquiry(rows.Scan)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, *inquiry)
	}

	return inquiries, nil
}

func scanInquiry(scan func(dest ...any) error) (*Inquiry, error) {
	var inquiry Inquiry
	var phone, jobTitle *string
	if err := scan(
		&inquiry.ID, &inquiry.Name, &inquiry.Email, &phone, &inquiry.CompanyName,
		&inquiry.Country, &jobTitle, &inquiry.JobDetails, &inquiry.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	if phone != nil {
		inquiry.Phone = *phone
	}
	if jobTitle != nil {
		inquiry.JobTitle = *jobTitle
	}

	return &inquiry, nil
}
