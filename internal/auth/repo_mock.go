package auth

import "context"

type repoMock struct {
	admins map[string]*Admin
}

func NewMockAdminRepo(admins ...*Admin) *repoMock {
	m := &repoMock{
		admins: make(map[string]*Admin),
	}
	for _, a := range admins {
		m.admins[a.ID] = a
	}
	return m
}

func (r *repoMock) Add(_ context.Context, admin *Admin) error {
	r.admins[admin.ID] = admin
	return nil
}

func (r *repoMock) GetByUsername(_ context.Context, username string) (*Admin, error) {
	for _, a := range r.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, ErrAdminNotFound
}

func (r *repoMock) GetByID(_ context.Context, id string) (*Admin, error) {
	admin, ok := r.admins[id]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

func (r *repoMock) Remove(id string) {
	delete(r.admins, id)
}
