package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talenthub/internal/domain/attendance"
	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	Store *attendance.Store
	Core  *core.Store
}

func NewHandler(store *attendance.Store, coreStore *core.Store) *Handler {
	return &Handler{Store: store, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Core)).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Core)).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequirePermission(auth.PermAttendanceRecord, h.Core)).Post("/records", h.handleRecordDay)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Core)).Get("/today", h.handleToday)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Core)).Get("/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermAttendanceRecord, h.Core)).Get("/daily", h.handleDaily)
	})
}

type recordDayRequest struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

// selfEmployeeID resolves the caller's employee profile. Check-in and
// check-out always act on the caller, never on a supplied id.
func (h *Handler) selfEmployeeID(w http.ResponseWriter, r *http.Request, user auth.UserContext) (string, bool) {
	employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for this account", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return employeeID, true
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID, ok := h.selfEmployeeID(w, r, user)
	if !ok {
		return
	}

	id, err := h.Store.CheckIn(r.Context(), user.TenantID, employeeID, time.Now().UTC())
	if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		api.Fail(w, http.StatusConflict, "already_checked_in", "already checked in today", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "check_in_failed", "failed to check in", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID, ok := h.selfEmployeeID(w, r, user)
	if !ok {
		return
	}

	err := h.Store.CheckOut(r.Context(), user.TenantID, employeeID, time.Now().UTC())
	switch {
	case errors.Is(err, attendance.ErrNoCheckInFound):
		api.Fail(w, http.StatusConflict, "no_check_in", "no check-in recorded today", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		api.Fail(w, http.StatusConflict, "already_checked_out", "already checked out today", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		api.Fail(w, http.StatusConflict, "check_out_before_check_in", "check-out cannot precede check-in", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "check_out_failed", "failed to check out", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "checked_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecordDay(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload recordDayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Enum("status", payload.Status, attendance.Statuses, "unknown attendance status")
	day, dayOK := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !dayOK {
		return
	}

	id, err := h.Store.RecordDay(r.Context(), user.TenantID, payload.EmployeeID, day, payload.Status, payload.Note)
	if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		api.Fail(w, http.StatusConflict, "record_exists", "a record already exists for that day", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "record_failed", "failed to record attendance", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID, ok := h.selfEmployeeID(w, r, user)
	if !ok {
		return
	}

	rec, err := h.Store.Today(r.Context(), user.TenantID, employeeID, time.Now().UTC())
	if errors.Is(err, attendance.ErrRecordNotFound) {
		api.Success(w, nil, middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_lookup_failed", "failed to load today's record", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	selfID, ok := h.selfEmployeeID(w, r, user)
	if !ok {
		return
	}
	if employeeID == "" {
		employeeID = selfID
	}
	if user.RoleName == auth.RoleMember && employeeID != selfID {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, -1, 0)
	to := now.AddDate(0, 0, 1)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		to = parsed
	}

	records, err := h.Store.History(r.Context(), user.TenantID, employeeID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_lookup_failed", "failed to load history", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		day = parsed
	}

	records, err := h.Store.ListByDate(r.Context(), user.TenantID, day)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_lookup_failed", "failed to load daily records", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, records, middleware.GetRequestID(r.Context()))
}
