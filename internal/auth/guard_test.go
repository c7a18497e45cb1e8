package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sunderlandtech/backend/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) (*Guard, *TokenCodec) {
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
	cookies := NewCookieTransport(false, DefaultTokenTTL)

	return NewGuard(cookies, NewService(repo, codec)), codec
}

func TestGuard_Protect(t *testing.T) {
	guard, codec := newTestGuard(t)

	var seenPrincipal *Admin
	protected := guard.Protect(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		seenPrincipal = principal
		w.WriteHeader(http.StatusOK)
	})

	token, err := codec.Issue("admin-id-1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/admin/events", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rr := httptest.NewRecorder()
	protected(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seenPrincipal)
	assert.Equal(t, "boss", seenPrincipal.Username)
}

func TestGuard_Protect_Unauthorized(t *testing.T) {
	guard, codec := newTestGuard(t)

	protected := guard.Protect(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run")
	})

	expiredCodec := NewTokenCodec("test-secret", DefaultTokenTTL)
	expiredCodec.NowFunc = func() time.Time {
		return time.Now().Add(-8 * 24 * time.Hour)
	}
	expiredToken, err := expiredCodec.Issue("admin-id-1")
	require.NoError(t, err)

	foreignCodec := NewTokenCodec("other-secret", DefaultTokenTTL)
	foreignToken, err := foreignCodec.Issue("admin-id-1")
	require.NoError(t, err)

	deletedAdminToken, err := codec.Issue("gone-admin-id")
	require.NoError(t, err)

	testCases := map[string]*http.Cookie{
		"no cookie":      nil,
		"garbage token":  {Name: CookieName, Value: "garbage"},
		"expired token":  {Name: CookieName, Value: expiredToken},
		"foreign secret": {Name: CookieName, Value: foreignToken},
		"unknown admin":  {Name: CookieName, Value: deletedAdminToken},
		"empty cookie":   {Name: CookieName, Value: ""},
		"other cookie":   {Name: "some_other_cookie", Value: "whatever"},
	}

	for name, cookie := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/events", nil)
			if cookie != nil {
				req.AddCookie(cookie)
			}
			rr := httptest.NewRecorder()
			protected(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, `{"message":"Unauthorized. Please log in as admin."}`, rr.Body.String())
		})
	}
}
