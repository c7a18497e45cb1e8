package inquiries_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sunderlandtech/backend/internal/auth"
	"github.com/sunderlandtech/backend/internal/inquiries"
	"github.com/sunderlandtech/backend/internal/instrumentation"
	"github.com/sunderlandtech/backend/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type handlerTestSetup struct {
	router    *mux.Router
	authToken string
}

func newHandlerTestSetup(t *testing.T, storedInquiries ...*inquiries.Inquiry) *handlerTestSetup {
	t.Helper()

	passwordHash, err := pkg.HashPassword("test-password")
	require.NoError(t, err)
	admin := &auth.Admin{
		ID:           "admin-id-1",
		Username:     "boss",
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	codec := auth.NewTokenCodec("test-secret", auth.DefaultTokenTTL)
	service := auth.NewService(auth.NewMockAdminRepo(admin), codec)
	cookies := auth.NewCookieTransport(false, auth.DefaultTokenTTL)
	guard := auth.NewGuard(cookies, service)

	token, err := codec.Issue(admin.ID)
	require.NoError(t, err)

	router := mux.NewRouter()
	handler := inquiries.NewHandler(
		inquiries.NewMockInquiriesRepo(storedInquiries...),
		guard,
		instrumentation.NewTestInstrumentation(),
	)
	handler.SetupRoutes(router)

	return &handlerTestSetup{
		router:    router,
		authToken: token,
	}
}

func (s *handlerTestSetup) authenticate(req *http.Request) {
	req.AddCookie(&http.Cookie{
		Name:  auth.CookieName,
		Value: s.authToken,
	})
}

func TestInquiriesHandler_Submit(t *testing.T) {
	s := newHandlerTestSetup(t)

	reqBody := `{
		"name": "Jamie Ward",
		"email": "jamie@acme.example",
		"phone": "+44 191 000 0000",
		"companyName": "Acme Ltd",
		"country": "UK",
		"jobTitle": "CTO",
		"jobDetails": "We need a new site backend."
	}`
	req := httptest.NewRequest("POST", "/api/contact", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"message":"Inquiry submitted successfully!"}`, rr.Body.String())

	// submitted inquiry shows up in the admin listing
	listReq := httptest.NewRequest("GET", "/api/admin/inquiries", nil)
	s.authenticate(listReq)
	listRr := httptest.NewRecorder()
	s.router.ServeHTTP(listRr, listReq)

	require.Equal(t, http.StatusOK, listRr.Code)
	var listed []inquiries.Inquiry
	require.NoError(t, json.Unmarshal(listRr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Jamie Ward", listed[0].Name)
	assert.Equal(t, "Acme Ltd", listed[0].CompanyName)
	assert.NotEmpty(t, listed[0].ID)
}

func TestInquiriesHandler_Submit_MissingRequiredFields(t *testing.T) {
	s := newHandlerTestSetup(t)

	testCases := map[string]string{
		"no name":        `{"email":"a@b.c","companyName":"x","country":"UK","jobDetails":"y"}`,
		"no email":       `{"name":"a","companyName":"x","country":"UK","jobDetails":"y"}`,
		"no company":     `{"name":"a","email":"a@b.c","country":"UK","jobDetails":"y"}`,
		"no country":     `{"name":"a","email":"a@b.c","companyName":"x","jobDetails":"y"}`,
		"no job details": `{"name":"a","email":"a@b.c","companyName":"x","country":"UK"}`,
	}

	for name, reqBody := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/contact", bytes.NewBufferString(reqBody))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, `{"message":"Required fields are missing."}`, rr.Body.String())
		})
	}
}

func TestInquiriesHandler_Contact_GetNotAllowed(t *testing.T) {
	s := newHandlerTestSetup(t)

	req := httptest.NewRequest("GET", "/api/contact", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "POST, OPTIONS", rr.Header().Get("Allow"))
}

func TestInquiriesHandler_List_Unauthorized(t *testing.T) {
	s := newHandlerTestSetup(t)

	req := httptest.NewRequest("GET", "/api/admin/inquiries", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `{"message":"Unauthorized. Please log in as admin."}`, rr.Body.String())
}

func TestInquiriesHandler_List_NewestFirst(t *testing.T) {
	now := time.Now()
	s := newHandlerTestSetup(t,
		&inquiries.Inquiry{
			ID:          "inq-old",
			Name:        "Older",
			Email:       "old@b.c",
			CompanyName: "x",
			Country:     "UK",
			JobDetails:  "y",
			CreatedAt:   now.Add(-time.Hour),
		},
		&inquiries.Inquiry{
			ID:          "inq-new",
			Name:        "Newer",
			Email:       "new@b.c",
			CompanyName: "x",
			Country:     "UK",
			JobDetails:  "y",
			CreatedAt:   now,
		},
	)

	req := httptest.NewRequest("GET", "/api/admin/inquiries", nil)
	s.authenticate(req)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var listed []inquiries.Inquiry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "inq-new", listed[0].ID)
	assert.Equal(t, "inq-old", listed[1].ID)
}

func TestInquiriesHandler_List_Empty(t *testing.T) {
	s := newHandlerTestSetup(t)

	req := httptest.NewRequest("GET", "/api/admin/inquiries", nil)
	s.authenticate(req)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestInquiriesHandler_GetAndDelete(t *testing.T) {
	s := newHandlerTestSetup(t, &inquiries.Inquiry{
		ID:          "inq-1",
		Name:        "Jamie Ward",
		Email:       "jamie@acme.example",
		CompanyName: "Acme Ltd",
		Country:     "UK",
		JobDetails:  "We need a new site backend.",
		CreatedAt:   time.Now(),
	})

	req := httptest.NewRequest("GET", "/api/admin/inquiries/inq-1", nil)
	s.authenticate(req)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var retrieved inquiries.Inquiry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &retrieved))
	assert.Equal(t, "Jamie Ward", retrieved.Name)

	deleteReq := httptest.NewRequest("DELETE", "/api/admin/inquiries/inq-1", nil)
	s.authenticate(deleteReq)
	deleteRr := httptest.NewRecorder()
	s.router.ServeHTTP(deleteRr, deleteReq)

	require.Equal(t, http.StatusOK, deleteRr.Code)
	assert.Equal(t, `{"message":"Inquiry deleted successfully!"}`, deleteRr.Body.String())

	// now gone
	getReq := httptest.NewRequest("GET", "/api/admin/inquiries/inq-1", nil)
	s.authenticate(getReq)
	getRr := httptest.NewRecorder()
	s.router.ServeHTTP(getRr, getReq)

	require.Equal(t, http.StatusNotFound, getRr.Code)
	assert.Equal(t, `{"message":"Inquiry not found."}`, getRr.Body.String())
}

func TestInquiriesHandler_Delete_NotFound(t *testing.T) {
	s := newHandlerTestSetup(t)

	req := httptest.NewRequest("DELETE", "/api/admin/inquiries/nope", nil)
	s.authenticate(req)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"message":"Inquiry not found."}`, rr.Body.String())
}
