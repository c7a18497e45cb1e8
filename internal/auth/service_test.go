package auth

import (
	"context"
	"testing"
	"time"

	"github.com/sunderlandtech/backend/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *repoMock, *TokenCodec) {
	t.Helper()

	passwordHash, err := pkg.HashPassword("correct-password")
	require.NoError(t, err)

	repo := NewMockAdminRepo(&Admin{
		ID:           "admin-id-1",
		Username:     "boss",
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	})
	codec := NewTokenCodec("test-secret", DefaultTokenTTL)

	return NewService(repo, codec), repo, codec
}

func TestService_Login(t *testing.T) {
	service, _, codec := newTestService(t)
	ctx := context.Background()

	token, admin, err := service.Login(ctx, "boss", "correct-password")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "boss", admin.Username)

	subjectID, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, subjectID)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	// unknown username and wrong password fail with the same error, so the
	// login endpoint cannot be used to probe for existing usernames
	token, admin, unknownUserErr := service.Login(ctx, "who-is-this", "correct-password")
	assert.ErrorIs(t, unknownUserErr, ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, admin)

	token, admin, wrongPassErr := service.Login(ctx, "boss", "wrong-password")
	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, admin)

	assert.Equal(t, unknownUserErr.Error(), wrongPassErr.Error())
}

func TestService_ResolveToken(t *testing.T) {
	service, repo, _ := newTestService(t)
	ctx := context.Background()

	token, _, err := service.Login(ctx, "boss", "correct-password")
	require.NoError(t, err)

	admin, err := service.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "boss", admin.Username)

	// token survives the admin, resolution must not
	repo.Remove("admin-id-1")
	admin, err = service.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrAdminNotFound)
	assert.Nil(t, admin)

	admin, err = service.ResolveToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.Nil(t, admin)

	otherCodec := NewTokenCodec("other-secret", DefaultTokenTTL)
	foreignToken, err := otherCodec.Issue("admin-id-1")
	require.NoError(t, err)
	admin, err = service.ResolveToken(ctx, foreignToken)
	assert.ErrorIs(t, err, ErrTokenSignature)
	assert.Nil(t, admin)
}
