package inquiries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type repoMock struct {
	inquiries map[string]*Inquiry
}

func NewMockInquiriesRepo(inquiries ...*Inquiry) *repoMock {
	mock := &repoMock{
		inquiries: make(map[string]*Inquiry),
	}
	for _, inquiry := range inquiries {
		mock.inquiries[inquiry.ID] = inquiry
	}
	return mock
}

func (r *repoMock) Add(_ context.Context, inquiry *Inquiry) (*Inquiry, error) {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = time.Now()
	}
	r.inquiries[inquiry.ID] = inquiry
	return inquiry, nil
}

func (r *repoMock) Get(_ context.Context, id string) (*Inquiry, error) {
	inquiry, ok := r.inquiries[id]
	if !ok {
		return nil, ErrInquiryNotFound
	}
	return inquiry, nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	if _, ok := r.inquiries[id]; !ok {
		return ErrInquiryNotFound
	}
	delete(r.inquiries, id)
	return nil
}

func (r *repoMock) List(_ context.Context) ([]Inquiry, error) {
	inquiries := make([]Inquiry, 0, len(r.inquiries))
	for _, inquiry := range r.inquiries {
		inquiries = append(inquiries, *inquiry)
	}
	sort.Slice(inquiries, func(i, j int) bool {
		return inquiries[i].CreatedAt.After(inquiries[j].CreatedAt)
	})
	return inquiries, nil
}
