package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sunderlandtech/backend/pkg"

	log "github.com/sirupsen/logrus"
)

// ErrInvalidCredentials covers both unknown usernames and password
// mismatches - the two are deliberately indistinguishable to callers
// so usernames cannot be enumerated through the login endpoint.
var ErrInvalidCredentials = errors.New("invalid credentials")

type adminRepo interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByID(ctx context.Context, id string) (*Admin, error)
}

type Service struct {
	repo  adminRepo
	codec *TokenCodec
}

func NewService(repo adminRepo, codec *TokenCodec) *Service {
	return &Service{
		repo:  repo,
		codec: codec,
	}
}

// Login checks the credentials against the stored bcrypt hash and issues a
// session token for the admin. No server-side session state is created.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Admin, error) {
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			log.Tracef("[username] failed login attempt for user: %s", username)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get admin: %w", err)
	}

	if !pkg.CheckPasswordHash(password, admin.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(admin.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, admin, nil
}

// ResolveToken verifies the token and loads the admin it belongs to.
// An admin deleted after token issuance fails resolution the same way an
// invalid token does.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Admin, error) {
	subjectID, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	admin, err := s.repo.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("get admin %s: %w", subjectID, err)
	}

	return admin, nil
}
