package inquiries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sunderlandtech/backend/internal/auth"
	"github.com/sunderlandtech/backend/internal/instrumentation"
	"github.com/sunderlandtech/backend/internal/telemetry/tracing"
	"github.com/sunderlandtech/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type inquiriesRepo interface {
	Add(ctx context.Context, inquiry *Inquiry) (*Inquiry, error)
	Get(ctx context.Context, id string) (*Inquiry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Inquiry, error)
}

type inquiryRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	Country     string `json:"country"`
	JobTitle    string `json:"jobTitle"`
	JobDetails  string `json:"jobDetails"`
}

type Handler struct {
	repo  inquiriesRepo
	guard *auth.Guard
	instr *instrumentation.Instrumentation
}

func NewHandler(
	repo inquiriesRepo,
	guard *auth.Guard,
	instr *instrumentation.Instrumentation,
) *Handler {
	return &Handler{
		repo:  repo,
		guard: guard,
		instr: instr,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	contactRouter := router.PathPrefix("/api/contact").Subrouter()
	contactRouter.HandleFunc("", handler.handleSubmit).
		Methods("POST", "OPTIONS").Name("new-inquiry")
	contactRouter.HandleFunc("", handler.handleContactNotAllowed).
		Methods("GET").Name("contact-not-allowed")

	adminRouter := router.PathPrefix("/api/admin/inquiries").Subrouter()
	adminRouter.HandleFunc("", handler.guard.Protect(handler.handleList)).
		Methods("GET").Name("admin-list-inquiries")
	adminRouter.HandleFunc("/{id}", handler.guard.Protect(handler.handleGet)).
		Methods("GET").Name("admin-get-inquiry")
	adminRouter.HandleFunc("/{id}", handler.guard.Protect(handler.handleDelete)).
		Methods("DELETE", "OPTIONS").Name("admin-delete-inquiry")
}

func (handler *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "inquiriesHandler.submit")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var inquiryReq inquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&inquiryReq); err != nil {
		log.Errorf("inquiry request, unmarshal json params: %s", err)
		pkg.WriteJSONMessage(w, "invalid request body", http.StatusBadRequest)
		span.SetStatus(codes.Error, "invalid-body")
		return
	}

	if inquiryReq.Name == "" || inquiryReq.Email == "" || inquiryReq.CompanyName == "" ||
		inquiryReq.Country == "" || inquiryReq.JobDetails == "" {
		pkg.WriteJSONMessage(w, "Required fields are missing.", http.StatusBadRequest)
		span.SetStatus(codes.Error, "missing-fields")
		return
	}

	addedInquiry, err := handler.repo.Add(ctx, &Inquiry{
		Name:        inquiryReq.Name,
		Email:       inquiryReq.Email,
		Phone:       inquiryReq.Phone,
		CompanyName: inquiryReq.CompanyName,
		Country:     inquiryReq.Country,
		JobTitle:    inquiryReq.JobTitle,
		JobDetails:  inquiryReq.JobDetails,
	})
	if err != nil {
		log.Errorf("failed to add new inquiry: %s", err)
		pkg.WriteJSONMessage(w, "Failed to submit inquiry.", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "add-err")
		span.RecordError(err)
		return
	}

	handler.instr.CounterInquiries.Inc()

	log.Tracef("new inquiry from [%s / %s]: %s", addedInquiry.Name, addedInquiry.CompanyName, addedInquiry.ID)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONMessage(w, "Inquiry submitted successfully!", http.StatusCreated)
}

func (handler *Handler) handleContactNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Allow", "POST, OPTIONS")
	pkg.WriteJSONMessage(w, "method not allowed", http.StatusMethodNotAllowed)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	inquiries, err := handler.repo.List(r.Context())
	if err != nil {
		log.Errorf("list inquiries error: %s", err)
		pkg.WriteJSONMessage(w, "Failed to fetch inquiries.", http.StatusInternalServerError)
		return
	}

	if len(inquiries) == 0 {
		inquiries = []Inquiry{}
	}

	inquiriesJson, err := json.Marshal(inquiries)
	if err != nil {
		log.Errorf("marshal inquiries error: %s", err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONBytesResponse(w, inquiriesJson, http.StatusOK)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id := vars["id"]
	if id == "" {
		pkg.WriteJSONMessage(w, "Inquiry ID is missing.", http.StatusBadRequest)
		return
	}

	inquiry, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrInquiryNotFound) {
			pkg.WriteJSONMessage(w, "Inquiry not found.", http.StatusNotFound)
			return
		}
		log.Errorf("get inquiry %s: %s", id, err)
		pkg.WriteJSONMessage(w, "Failed to fetch inquiry details.", http.StatusInternalServerError)
		return
	}

	inquiryJson, err := json.Marshal(inquiry)
	if err != nil {
		log.Errorf("marshal inquiry error: %s", err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONBytesResponse(w, inquiryJson, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "inquiriesHandler.delete")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		pkg.WriteJSONMessage(w, "Inquiry ID is missing.", http.StatusBadRequest)
		span.SetStatus(codes.Error, "missing-id")
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrInquiryNotFound) {
			pkg.WriteJSONMessage(w, "Inquiry not found.", http.StatusNotFound)
			span.SetStatus(codes.Error, "not-found")
			return
		}
		log.Errorf("failed to delete inquiry %s: %s", id, err)
		pkg.WriteJSONMessage(w, "Failed to delete inquiry.", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "delete-err")
		return
	}

	log.Tracef("inquiry deleted: %s", id)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONMessage(w, "Inquiry deleted successfully!", http.StatusOK)
}
