package corehandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"talenthub/internal/domain/audit"
	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	Store *core.Store
	Audit *audit.Service
}

func NewHandler(store *core.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Store)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Store)).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Store)).Put("/", h.handleUpdateEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Store)).Put("/status", h.handleUpdateStatus)
		})
	})
	r.Route("/venues", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermVenuesRead, h.Store)).Get("/", h.handleListVenues)
		r.With(middleware.RequirePermission(auth.PermVenuesWrite, h.Store)).Post("/", h.handleCreateVenue)
	})
}

type employeeRequest struct {
	FullName    string `json:"fullName"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	VenueID     string `json:"venueId"`
	Status      string `json:"status"`
	JoinDate    string `json:"joinDate"`
	BankAccount string `json:"bankAccount"`
	NationalID  string `json:"nationalId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type venueRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Store.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil && !errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to load profile", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"user": map[string]string{
			"id":       user.UserID,
			"tenantId": user.TenantID,
			"roleId":   user.RoleID,
			"role":     user.RoleName,
		},
		"employee": emp,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !core.ValidEmployeeStatus(status) {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown employee status", middleware.GetRequestID(r.Context()))
		return
	}
	venueID := strings.TrimSpace(r.URL.Query().Get("venueId"))

	employees, err := h.Store.ListEmployees(r.Context(), user.TenantID, status, venueID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}

	for i := range employees {
		core.FilterEmployeeFields(&employees[i], user, employees[i].UserID == user.UserID)
	}

	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	emp, err := h.Store.GetEmployee(r.Context(), user.TenantID, employeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}

	// Members can only read themselves.
	isSelf := emp.UserID == user.UserID
	if user.RoleName == auth.RoleMember && !isSelf {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}
	core.FilterEmployeeFields(emp, user, isSelf)

	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	if payload.Status == "" {
		payload.Status = core.EmployeeStatusInterview
	}
	v.Enum("status", payload.Status, core.EmployeeStatuses, "unknown employee status")
	var joinDate *time.Time
	if payload.JoinDate != "" {
		parsed, ok := v.Date("joinDate", payload.JoinDate)
		if ok {
			joinDate = &parsed
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp := core.Employee{
		FullName:    strings.TrimSpace(payload.FullName),
		Nickname:    strings.TrimSpace(payload.Nickname),
		Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:       strings.TrimSpace(payload.Phone),
		VenueID:     payload.VenueID,
		Status:      payload.Status,
		JoinDate:    joinDate,
		BankAccount: payload.BankAccount,
		NationalID:  payload.NationalID,
	}
	id, err := h.Store.CreateEmployee(r.Context(), user.TenantID, emp)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "employee.create", "employee", id, nil, emp)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	before, err := h.Store.GetEmployee(r.Context(), user.TenantID, employeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	var joinDate *time.Time
	if payload.JoinDate != "" {
		parsed, ok := v.Date("joinDate", payload.JoinDate)
		if ok {
			joinDate = &parsed
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp := core.Employee{
		FullName:    strings.TrimSpace(payload.FullName),
		Nickname:    strings.TrimSpace(payload.Nickname),
		Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:       strings.TrimSpace(payload.Phone),
		VenueID:     payload.VenueID,
		JoinDate:    joinDate,
		BankAccount: payload.BankAccount,
		NationalID:  payload.NationalID,
	}
	if err := h.Store.UpdateEmployee(r.Context(), user.TenantID, employeeID, emp); err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "employee.update", "employee", employeeID, before, emp)
	api.Success(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	err := h.Store.UpdateEmployeeStatus(r.Context(), user.TenantID, employeeID, payload.Status)
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, core.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown employee status", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, core.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "status transition not allowed", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update status", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "employee.status", "employee", employeeID, nil, map[string]string{"status": payload.Status})
	api.Success(w, map[string]string{"id": employeeID, "status": payload.Status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListVenues(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	venues, err := h.Store.ListVenues(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "venue_list_failed", "failed to list venues", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, venues, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload venueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "venue name is required", middleware.GetRequestID(r.Context()))
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	id, err := h.Store.CreateVenue(r.Context(), user.TenantID, core.Venue{
		Name:    strings.TrimSpace(payload.Name),
		Address: strings.TrimSpace(payload.Address),
		Active:  active,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "venue_create_failed", "failed to create venue", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "venue.create", "venue", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		log.Printf("audit record failed: %v", err)
	}
}
