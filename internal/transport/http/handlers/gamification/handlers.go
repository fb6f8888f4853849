package gamificationhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/gamification"
	"talenthub/internal/domain/notifications"
	"talenthub/internal/platform/jobs"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
	"talenthub/internal/transport/http/shared"
)

type Handler struct {
	Store   *gamification.Store
	Builder *gamification.Builder
	Core    *core.Store
	Jobs    *jobs.Service
	Notify  *notifications.Service
}

func NewHandler(store *gamification.Store, builder *gamification.Builder, coreStore *core.Store, jobsSvc *jobs.Service, notify *notifications.Service) *Handler {
	return &Handler{Store: store, Builder: builder, Core: coreStore, Jobs: jobsSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/gamification", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermGamificationRead, h.Core)).Get("/leaderboard", h.handleLeaderboard)
		r.With(middleware.RequirePermission(auth.PermGamificationRead, h.Core)).Get("/snapshots/{employeeID}", h.handleSnapshot)
		r.With(middleware.RequirePermission(auth.PermGamificationWrite, h.Core)).Post("/reviews", h.handleUpsertReview)
		r.With(middleware.RequirePermission(auth.PermGamificationRun, h.Core)).Post("/snapshots/run", h.handleRunSnapshot)
	})
}

type reviewRequest struct {
	EmployeeID       string  `json:"employeeId"`
	Month            int     `json:"month"`
	Year             int     `json:"year"`
	PerformanceScore float64 `json:"performanceScore"`
	CustomerRating   float64 `json:"customerRating"`
}

type runRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type leaderboardEntry struct {
	gamification.Snapshot
	Badge    string `json:"badge"`
	FullName string `json:"fullName,omitempty"`
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	month, year := shared.ParseMonthYear(r)
	now := time.Now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	page := shared.ParsePagination(r, 10, 100)

	snaps, err := h.Store.TopPerformers(r.Context(), user.TenantID, month, year, page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leaderboard_failed", "failed to load leaderboard", middleware.GetRequestID(r.Context()))
		return
	}

	entries := make([]leaderboardEntry, 0, len(snaps))
	for _, snap := range snaps {
		entry := leaderboardEntry{Snapshot: snap, Badge: gamification.RankBadge(snap.RankScore)}
		if emp, err := h.Core.GetEmployee(r.Context(), user.TenantID, snap.EmployeeID); err == nil {
			entry.FullName = emp.FullName
		}
		entries = append(entries, entry)
	}

	api.Success(w, map[string]any{
		"month":   month,
		"year":    year,
		"entries": entries,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if user.RoleName == auth.RoleMember {
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil || selfID != employeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
			return
		}
	}

	month, year := shared.ParseMonthYear(r)
	now := time.Now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	snap, err := h.Store.Get(r.Context(), user.TenantID, employeeID, month, year)
	if errors.Is(err, gamification.ErrSnapshotNotFound) {
		api.Fail(w, http.StatusNotFound, "snapshot_not_found", "no snapshot for that period", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "snapshot_failed", "failed to load snapshot", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, leaderboardEntry{Snapshot: *snap, Badge: gamification.RankBadge(snap.RankScore)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	if payload.Month < 1 || payload.Month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	if payload.Year < 2000 {
		v.Add("year", "must be a four digit year")
	}
	if payload.PerformanceScore < 0 || payload.PerformanceScore > 100 {
		v.Add("performanceScore", "must be between 0 and 100")
	}
	if payload.CustomerRating < 0 || payload.CustomerRating > 5 {
		v.Add("customerRating", "must be between 0 and 5")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	review := gamification.Review{
		EmployeeID:       payload.EmployeeID,
		Month:            payload.Month,
		Year:             payload.Year,
		PerformanceScore: payload.PerformanceScore,
		CustomerRating:   payload.CustomerRating,
	}
	if err := h.Store.UpsertReview(r.Context(), user.TenantID, review); err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_failed", "failed to save review", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{"status": "saved"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunSnapshot(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload runRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	now := time.Now().UTC()
	if payload.Month == 0 {
		payload.Month = int(now.Month())
	}
	if payload.Year == 0 {
		payload.Year = now.Year()
	}
	if payload.Month < 1 || payload.Month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be between 1 and 12", middleware.GetRequestID(r.Context()))
		return
	}

	details, err := h.Jobs.RunNow(r.Context(), jobs.JobRankSnapshot, user.TenantID, func(ctx context.Context) (any, error) {
		written, err := h.Builder.BuildMonth(ctx, user.TenantID, payload.Month, payload.Year)
		return map[string]any{"month": payload.Month, "year": payload.Year, "written": written}, err
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "snapshot_run_failed", "failed to rebuild leaderboard", middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyPublished(r, user.TenantID, payload.Month, payload.Year)

	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

// publishedBody renders the notification line for a ranked snapshot. Rows
// without an assigned position produce nothing.
func publishedBody(snap gamification.Snapshot) string {
	if snap.RankPosition == nil {
		return ""
	}
	return fmt.Sprintf("You ranked #%d with a score of %.1f (%s).", *snap.RankPosition, snap.RankScore, gamification.RankBadge(snap.RankScore))
}

// notifyPublished tells ranked employees their month is on the board.
// Best effort, the rebuild itself already succeeded.
func (h *Handler) notifyPublished(r *http.Request, tenantID string, month, year int) {
	if h.Notify == nil {
		return
	}
	snaps, err := h.Store.TopPerformers(r.Context(), tenantID, month, year, 100)
	if err != nil {
		log.Printf("snapshot notification listing failed: %v", err)
		return
	}
	title := fmt.Sprintf("Leaderboard published for %d/%d", month, year)
	for _, snap := range snaps {
		body := publishedBody(snap)
		if body == "" {
			continue
		}
		emp, err := h.Core.GetEmployee(r.Context(), tenantID, snap.EmployeeID)
		if err != nil || emp.UserID == "" {
			continue
		}
		if err := h.Notify.Notify(r.Context(), tenantID, emp.UserID, notifications.TypeSnapshotPublished, title, body); err != nil {
			log.Printf("snapshot notification failed: %v", err)
		}
	}
}
