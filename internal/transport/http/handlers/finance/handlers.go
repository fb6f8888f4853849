package financehandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"talenthub/internal/domain/audit"
	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/finance"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	Service *finance.Service
	Core    *core.Store
	Audit   *audit.Service
}

func NewHandler(service *finance.Service, coreStore *core.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreStore, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/finance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Core)).Post("/transactions", h.handleRecord)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Core)).Get("/transactions", h.handleList)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Core)).Get("/summary", h.handleSummary)
	})
}

type transactionRequest struct {
	EmployeeID  string  `json:"employeeId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	PeriodMonth int     `json:"periodMonth"`
	PeriodYear  int     `json:"periodYear"`
	Description string  `json:"description"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Enum("type", payload.Type, finance.Types, "unknown transaction type")
	v.Positive("amount", payload.Amount, "amount must be positive")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	txDate, err := shared.ParseDate(payload.Date)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be a valid date", middleware.GetRequestID(r.Context()))
		return
	}

	tx := finance.Transaction{
		EmployeeID:  payload.EmployeeID,
		Type:        payload.Type,
		Amount:      payload.Amount,
		Date:        txDate,
		PeriodMonth: payload.PeriodMonth,
		PeriodYear:  payload.PeriodYear,
		Description: strings.TrimSpace(payload.Description),
	}
	id, err := h.Service.RecordTransaction(r.Context(), user.TenantID, tx)
	switch {
	case errors.Is(err, finance.ErrInvalidType):
		api.Fail(w, http.StatusBadRequest, "invalid_type", "unknown transaction type", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, finance.ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_amount", "amount must be positive", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, finance.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", "period month and year must be set together and valid", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "transaction_failed", "failed to record transaction", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "finance.record", "financial_transaction", id, middleware.GetRequestID(r.Context()), r.RemoteAddr, nil, tx); err != nil {
			log.Printf("audit record failed: %v", err)
		}
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID, ok := h.resolveEmployeeScope(w, r, user)
	if !ok {
		return
	}

	month, year := shared.ParseMonthYear(r)
	page := shared.ParsePagination(r, 50, 200)

	txs, err := h.Service.List(r.Context(), user.TenantID, employeeID, month, year, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "transaction_list_failed", "failed to list transactions", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, txs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID, ok := h.resolveEmployeeScope(w, r, user)
	if !ok {
		return
	}
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	month, year := shared.ParseMonthYear(r)
	summary, err := h.Service.MonthlySummary(r.Context(), user.TenantID, employeeID, month, year)
	if errors.Is(err, finance.ErrInvalidPeriod) {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month and year are required", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to compute summary", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

// resolveEmployeeScope pins members to their own ledger while letting
// managers and admins query any employee.
func (h *Handler) resolveEmployeeScope(w http.ResponseWriter, r *http.Request, user auth.UserContext) (string, bool) {
	requested := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if user.RoleName != auth.RoleMember {
		return requested, true
	}

	selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for this account", middleware.GetRequestID(r.Context()))
		return "", false
	}
	if requested != "" && requested != selfID {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return selfID, true
}
