package shophandler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talenthub/internal/domain/audit"
	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/notifications"
	"talenthub/internal/domain/shop"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	DB     *pgxpool.Pool
	Store  *shop.Store
	Core   *core.Store
	Audit  *audit.Service
	Notify *notifications.Service
}

func NewHandler(db *pgxpool.Pool, store *shop.Store, coreStore *core.Store, auditSvc *audit.Service, notify *notifications.Service) *Handler {
	return &Handler{DB: db, Store: store, Core: coreStore, Audit: auditSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/shop", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermShopRead, h.Core)).Get("/", h.handleListItems)
			r.With(middleware.RequirePermission(auth.PermShopWrite, h.Core)).Post("/", h.handleCreateItem)
			r.With(middleware.RequirePermission(auth.PermShopWrite, h.Core)).Put("/{itemID}", h.handleUpdateItem)
		})
		r.Route("/purchases", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermShopPurchase, h.Core)).Post("/", h.handlePurchase)
			r.With(middleware.RequirePermission(auth.PermShopRead, h.Core)).Get("/", h.handleListPurchases)
			r.With(middleware.RequirePermission(auth.PermShopApprove, h.Core)).Put("/{purchaseID}/status", h.handleUpdateStatus)
		})
	})
}

type itemRequest struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Active *bool   `json:"active"`
}

type purchaseRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type purchaseStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	// Members only browse what is for sale.
	activeOnly := user.RoleName == auth.RoleMember || r.URL.Query().Get("active") == "true"
	items, err := h.Store.ListItems(r.Context(), user.TenantID, activeOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_list_failed", "failed to list items", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload itemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "item name is required")
	v.Positive("price", payload.Price, "price must be positive")
	if payload.Stock < 0 {
		v.Add("stock", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	id, err := h.Store.CreateItem(r.Context(), user.TenantID, shop.Item{
		Name:   strings.TrimSpace(payload.Name),
		Price:  payload.Price,
		Stock:  payload.Stock,
		Active: active,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_create_failed", "failed to create item", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "shop.item.create", "store_item", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	itemID := chi.URLParam(r, "itemID")

	before, err := h.Store.GetItem(r.Context(), user.TenantID, itemID)
	if errors.Is(err, shop.ErrItemNotFound) {
		api.Fail(w, http.StatusNotFound, "item_not_found", "item not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_lookup_failed", "failed to load item", middleware.GetRequestID(r.Context()))
		return
	}

	var payload itemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "item name is required")
	v.Positive("price", payload.Price, "price must be positive")
	if payload.Stock < 0 {
		v.Add("stock", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	active := before.Active
	if payload.Active != nil {
		active = *payload.Active
	}
	err = h.Store.UpdateItem(r.Context(), user.TenantID, itemID, shop.Item{
		Name:   strings.TrimSpace(payload.Name),
		Price:  payload.Price,
		Stock:  payload.Stock,
		Active: active,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_update_failed", "failed to update item", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "shop.item.update", "store_item", itemID, before, payload)
	api.Success(w, map[string]string{"id": itemID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for this account", middleware.GetRequestID(r.Context()))
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload purchaseRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.ItemID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "itemId is required", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(raw)
	if idempotencyKey != "" {
		stored, found, err := middleware.CheckIdempotency(r.Context(), h.DB, user.TenantID, user.UserID, "shop.purchase", idempotencyKey, requestHash)
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

	purchase, err := h.Store.Purchase(r.Context(), user.TenantID, employeeID, payload.ItemID, payload.Quantity)
	switch {
	case errors.Is(err, shop.ErrItemNotFound):
		api.Fail(w, http.StatusNotFound, "item_not_found", "item not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, shop.ErrItemInactive):
		api.Fail(w, http.StatusConflict, "item_inactive", "item is not for sale", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, shop.ErrInvalidQuantity):
		api.Fail(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, shop.ErrInsufficientStock):
		api.Fail(w, http.StatusConflict, "insufficient_stock", "not enough stock", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "purchase_failed", "failed to record purchase", middleware.GetRequestID(r.Context()))
		return
	}

	if idempotencyKey != "" {
		if err := middleware.SaveIdempotency(r.Context(), h.DB, user.TenantID, user.UserID, "shop.purchase", idempotencyKey, requestHash, purchase); err != nil {
			log.Printf("idempotency save failed: %v", err)
		}
	}

	h.record(r, user, "shop.purchase", "store_purchase", purchase.ID, nil, purchase)
	api.Created(w, purchase, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if user.RoleName == auth.RoleMember {
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for this account", middleware.GetRequestID(r.Context()))
			return
		}
		if employeeID != "" && employeeID != selfID {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = selfID
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !shop.ValidStatus(status) {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown purchase status", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)

	purchases, err := h.Store.ListPurchases(r.Context(), user.TenantID, employeeID, status, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "purchase_list_failed", "failed to list purchases", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, purchases, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	purchaseID := chi.URLParam(r, "purchaseID")

	var payload purchaseStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !shop.ValidStatus(payload.Status) {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown purchase status", middleware.GetRequestID(r.Context()))
		return
	}

	purchase, err := h.Store.UpdateStatus(r.Context(), user.TenantID, purchaseID, payload.Status, time.Now().UTC())
	switch {
	case errors.Is(err, shop.ErrPurchaseNotFound):
		api.Fail(w, http.StatusNotFound, "purchase_not_found", "purchase not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, shop.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "status transition not allowed", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "purchase_update_failed", "failed to update purchase", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "shop.purchase.status", "store_purchase", purchaseID, nil, map[string]string{"status": payload.Status})
	h.notifyStatus(r, user.TenantID, purchase)

	api.Success(w, purchase, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyStatus(r *http.Request, tenantID string, purchase *shop.Purchase) {
	if h.Notify == nil {
		return
	}
	var ntype, title string
	switch purchase.Status {
	case shop.StatusApproved:
		ntype, title = notifications.TypePurchaseApproved, "Purchase approved"
	case shop.StatusDelivered:
		ntype, title = notifications.TypePurchaseDelivered, "Purchase delivered"
	case shop.StatusCancelled:
		ntype, title = notifications.TypePurchaseCancelled, "Purchase cancelled"
	default:
		return
	}

	emp, err := h.Core.GetEmployee(r.Context(), tenantID, purchase.EmployeeID)
	if err != nil || emp.UserID == "" {
		return
	}
	body := "Your store purchase is now " + purchase.Status + "."
	if err := h.Notify.Notify(r.Context(), tenantID, emp.UserID, ntype, title, body); err != nil {
		log.Printf("purchase notification failed: %v", err)
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
