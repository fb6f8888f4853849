package reportshandler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/reports"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Core    *core.Store
}

func NewHandler(service *reports.Service, coreStore *core.Store) *Handler {
	return &Handler{Service: service, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead, h.Core))
		r.Get("/salary-register", h.handleSalaryRegister)
		r.Get("/salary-register.csv", h.handleSalaryRegisterCSV)
		r.Get("/attendance-matrix", h.handleAttendanceMatrix)
		r.Get("/statements/{employeeID}.pdf", h.handleStatementPDF)
	})
}

func (h *Handler) period(r *http.Request) (int, int, bool) {
	month, year := shared.ParseMonthYear(r)
	now := time.Now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year, month >= 1 && month <= 12
}

func (h *Handler) handleSalaryRegister(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	month, year, ok := h.period(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be between 1 and 12", middleware.GetRequestID(r.Context()))
		return
	}

	register, err := h.Service.SalaryRegister(r.Context(), user.TenantID, month, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build salary register", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{"month": month, "year": year, "rows": register}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSalaryRegisterCSV(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	month, year, ok := h.period(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be between 1 and 12", middleware.GetRequestID(r.Context()))
		return
	}

	register, err := h.Service.SalaryRegister(r.Context(), user.TenantID, month, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build salary register", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=salary-register-%04d-%02d.csv", year, month))
	if err := h.Service.WriteRegisterCSV(w, register, month, year); err != nil {
		log.Printf("salary register csv write failed: %v", err)
	}
}

func (h *Handler) handleAttendanceMatrix(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	month, year, ok := h.period(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be between 1 and 12", middleware.GetRequestID(r.Context()))
		return
	}

	matrix, err := h.Service.AttendanceMatrix(r.Context(), user.TenantID, month, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build attendance matrix", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{"month": month, "year": year, "rows": matrix}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	month, year, ok := h.period(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be between 1 and 12", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statement-%s-%04d-%02d.pdf", employeeID, year, month))
	if err := h.Service.StatementPDF(r.Context(), w, user.TenantID, employeeID, month, year); err != nil {
		log.Printf("statement pdf write failed: %v", err)
	}
}
