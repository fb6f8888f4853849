package recruitinghandler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talenthub/internal/domain/audit"
	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/notifications"
	"talenthub/internal/domain/recruiting"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	DB     *pgxpool.Pool
	Store  *recruiting.Store
	Core   *core.Store
	Audit  *audit.Service
	Notify *notifications.Service
}

func NewHandler(db *pgxpool.Pool, store *recruiting.Store, coreStore *core.Store, auditSvc *audit.Service, notify *notifications.Service) *Handler {
	return &Handler{DB: db, Store: store, Core: coreStore, Audit: auditSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/recruiting", func(r chi.Router) {
		r.Route("/postings", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermRecruitingRead, h.Core)).Get("/", h.handleListPostings)
			r.With(middleware.RequirePermission(auth.PermRecruitingWrite, h.Core)).Post("/", h.handleCreatePosting)
			r.Route("/{postingID}", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermRecruitingRead, h.Core)).Get("/", h.handleGetPosting)
				r.With(middleware.RequirePermission(auth.PermRecruitingWrite, h.Core)).Post("/close", h.handleClosePosting)
				r.With(middleware.RequirePermission(auth.PermRecruitingRead, h.Core)).Post("/apply", h.handleApply)
			})
		})
		r.Route("/applications", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermRecruitingDecide, h.Core)).Get("/", h.handleListApplications)
			r.With(middleware.RequirePermission(auth.PermRecruitingDecide, h.Core)).Post("/{applicationID}/decide", h.handleDecide)
		})
	})
}

type postingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VenueID     string `json:"venueId"`
}

type applyRequest struct {
	Note string `json:"note"`
}

type decideRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) handleListPostings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	// Members only see open postings.
	if user.RoleName == auth.RoleMember {
		status = recruiting.PostingOpen
	}

	postings, err := h.Store.ListPostings(r.Context(), user.TenantID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_list_failed", "failed to list postings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, postings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	postingID := chi.URLParam(r, "postingID")

	posting, err := h.Store.GetPosting(r.Context(), user.TenantID, postingID)
	if errors.Is(err, recruiting.ErrPostingNotFound) {
		api.Fail(w, http.StatusNotFound, "posting_not_found", "job posting not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_lookup_failed", "failed to load posting", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, posting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload postingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreatePosting(r.Context(), user.TenantID, recruiting.Posting{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		VenueID:     payload.VenueID,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_create_failed", "failed to create posting", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "recruiting.posting.create", "job_posting", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClosePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	postingID := chi.URLParam(r, "postingID")

	err := h.Store.ClosePosting(r.Context(), user.TenantID, postingID)
	if errors.Is(err, recruiting.ErrPostingNotFound) {
		api.Fail(w, http.StatusNotFound, "posting_not_found", "job posting not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_close_failed", "failed to close posting", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "recruiting.posting.close", "job_posting", postingID, nil, nil)
	api.Success(w, map[string]string{"id": postingID, "status": recruiting.PostingClosed}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	postingID := chi.URLParam(r, "postingID")

	employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for this account", middleware.GetRequestID(r.Context()))
		return
	}

	var payload applyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	app, err := h.Store.Apply(r.Context(), user.TenantID, postingID, employeeID, strings.TrimSpace(payload.Note))
	switch {
	case errors.Is(err, recruiting.ErrPostingNotFound):
		api.Fail(w, http.StatusNotFound, "posting_not_found", "job posting not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, recruiting.ErrPostingClosed):
		api.Fail(w, http.StatusConflict, "posting_closed", "job posting is closed", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, recruiting.ErrAlreadyApplied):
		api.Fail(w, http.StatusConflict, "already_applied", "already applied to this posting", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "apply_failed", "failed to submit application", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "recruiting.apply", "job_application", app.ID, nil, app)
	api.Created(w, app, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	postingID := strings.TrimSpace(r.URL.Query().Get("postingId"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !recruiting.ValidApplicationStatus(status) {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown application status", middleware.GetRequestID(r.Context()))
		return
	}

	apps, err := h.Store.ListApplications(r.Context(), user.TenantID, postingID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "application_list_failed", "failed to list applications", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, apps, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	applicationID := chi.URLParam(r, "applicationID")

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload decideRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Decision != recruiting.ApplicationAccepted && payload.Decision != recruiting.ApplicationRejected {
		api.Fail(w, http.StatusBadRequest, "invalid_decision", "decision must be accepted or rejected", middleware.GetRequestID(r.Context()))
		return
	}

	// Scoped per application so one key cannot replay another decision.
	endpoint := "recruiting.decide:" + applicationID
	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(raw)
	if idempotencyKey != "" {
		stored, found, err := middleware.CheckIdempotency(r.Context(), h.DB, user.TenantID, user.UserID, endpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			log.Printf("idempotency check failed: %v", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		}
	}

	app, err := h.Store.Decide(r.Context(), user.TenantID, applicationID, payload.Decision)
	switch {
	case errors.Is(err, recruiting.ErrApplicationNotFound):
		api.Fail(w, http.StatusNotFound, "application_not_found", "application not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, recruiting.ErrAlreadyDecided):
		api.Fail(w, http.StatusConflict, "already_decided", "application already decided", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "decide_failed", "failed to decide application", middleware.GetRequestID(r.Context()))
		return
	}

	if idempotencyKey != "" {
		if err := middleware.SaveIdempotency(r.Context(), h.DB, user.TenantID, user.UserID, endpoint, idempotencyKey, requestHash, app); err != nil {
			log.Printf("idempotency save failed: %v", err)
		}
	}

	h.record(r, user, "recruiting.decide", "job_application", applicationID, nil, app)
	h.notifyDecision(r, user.TenantID, app)

	api.Success(w, app, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyDecision(r *http.Request, tenantID string, app *recruiting.Application) {
	if h.Notify == nil {
		return
	}
	ntype := notifications.TypeApplicationRejected
	title := "Application rejected"
	if app.Status == recruiting.ApplicationAccepted {
		ntype = notifications.TypeApplicationAccepted
		title = "Application accepted"
	}

	emp, err := h.Core.GetEmployee(r.Context(), tenantID, app.EmployeeID)
	if err != nil || emp.UserID == "" {
		return
	}
	body := "Your job application was " + app.Status + "."
	if err := h.Notify.Notify(r.Context(), tenantID, emp.UserID, ntype, title, body); err != nil {
		log.Printf("application notification failed: %v", err)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		log.Printf("audit record failed: %v", err)
	}
}
