package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pquerna/otp/totp"

	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/notifications"
	cryptoutil "talenthub/internal/platform/crypto"
	"talenthub/internal/platform/requestctx"
	"talenthub/internal/transport/http/api"
	"talenthub/internal/transport/http/middleware"
)

const sessionTTL = 8 * time.Hour

type Handler struct {
	DB              *pgxpool.Pool
	Store           *auth.Store
	Secret          string
	Crypto          *cryptoutil.Service
	Mailer          notifications.Mailer
	MailFrom        string
	AllowSelfSignup bool
	SignupTenant    string
}

func NewHandler(db *pgxpool.Pool, secret string, crypto *cryptoutil.Service, mailer notifications.Mailer, mailFrom string, allowSelfSignup bool, signupTenant string) *Handler {
	return &Handler{DB: db, Store: auth.NewStore(db), Secret: secret, Crypto: crypto, Mailer: mailer, MailFrom: mailFrom, AllowSelfSignup: allowSelfSignup, SignupTenant: signupTenant}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	user, err := h.Store.FindActiveUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), core.UserStatusActive)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	if user.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestctx.GetRequestID(r.Context()))
			return
		}
		secret := string(user.MFASecretEnc)
		if h.Crypto != nil && h.Crypto.Configured() {
			decoded, err := h.Crypto.DecryptString(user.MFASecretEnc)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa configuration", requestctx.GetRequestID(r.Context()))
				return
			}
			secret = decoded
		}
		if secret == "" || !totp.Validate(payload.MFACode, secret) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestctx.GetRequestID(r.Context()))
			return
		}
	}

	sessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.CreateSession(r.Context(), user.ID, auth.HashToken(sessionID), time.Now().Add(sessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", requestctx.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:    user.ID,
		TenantID:  user.TenantID,
		RoleID:    user.RoleID,
		RoleName:  user.RoleName,
		SessionID: sessionID,
	}, sessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  map[string]string{"id": user.ID, "tenantId": user.TenantID, "roleId": user.RoleID, "role": user.RoleName},
	}, requestctx.GetRequestID(r.Context()))
}

// HandleRegister self-registers a member account with an interview-stage
// employee profile. Disabled unless AllowSelfSignup is set.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.AllowSelfSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self registration is disabled", requestctx.GetRequestID(r.Context()))
		return
	}

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || len(payload.Password) < 8 || strings.TrimSpace(payload.FullName) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email, fullName and a password of at least 8 characters are required", requestctx.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to hash password", requestctx.GetRequestID(r.Context()))
		return
	}

	tx, err := h.DB.Begin(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to register", requestctx.GetRequestID(r.Context()))
		return
	}
	defer func() { _ = tx.Rollback(r.Context()) }()

	// Signups land in the configured tenant, never a lookup-order accident.
	var tenantID, roleID string
	if err := tx.QueryRow(r.Context(), `
    SELECT r.tenant_id, r.id
    FROM roles r
    JOIN tenants t ON t.id = r.tenant_id
    WHERE t.name = $1 AND r.name = $2
  `, h.SignupTenant, auth.RoleMember).Scan(&tenantID, &roleID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "member role is not provisioned", requestctx.GetRequestID(r.Context()))
		return
	}

	var userID string
	err = tx.QueryRow(r.Context(), `
    INSERT INTO users (tenant_id, role_id, email, password_hash, status)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (tenant_id, email) DO NOTHING
    RETURNING id
  `, tenantID, roleID, email, hash, core.UserStatusActive).Scan(&userID)
	if err != nil {
		api.Fail(w, http.StatusConflict, "email_taken", "email is already registered", requestctx.GetRequestID(r.Context()))
		return
	}

	var employeeID string
	if err := tx.QueryRow(r.Context(), `
    INSERT INTO employees (tenant_id, user_id, full_name, nickname, email, phone, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, tenantID, userID, strings.TrimSpace(payload.FullName), strings.TrimSpace(payload.Nickname), email, strings.TrimSpace(payload.Phone), core.EmployeeStatusInterview).Scan(&employeeID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to register", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to register", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"userId": userID, "employeeId": employeeID}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok && user.SessionID != "" {
		if err := h.Store.RevokeSession(r.Context(), user.UserID, auth.HashToken(user.SessionID)); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	// Response is identical whether or not the email exists.
	userID, err := h.Store.UserIDByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err == nil && userID != "" {
		token, genErr := generateToken()
		if genErr == nil {
			if err := h.Store.CreatePasswordReset(r.Context(), userID, auth.HashToken(token), time.Now().Add(30*time.Minute)); err != nil {
				slog.Warn("password reset insert failed", "err", err)
			} else if h.Mailer != nil {
				if err := h.Mailer.Send(r.Context(), h.MailFrom, payload.Email, "Password reset", "Your reset token: "+token); err != nil {
					slog.Warn("password reset email failed", "err", err)
				}
			}
		}
	}

	api.Success(w, map[string]string{"status": "reset_requested"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if payload.Token == "" || len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "token and a password of at least 8 characters are required", requestctx.GetRequestID(r.Context()))
		return
	}

	tokenHash := auth.HashToken(payload.Token)
	userID, err := h.Store.PasswordResetUserID(r.Context(), tokenHash)
	if err != nil || userID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired reset token", requestctx.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to hash password", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to update password", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.MarkPasswordResetUsed(r.Context(), tokenHash); err != nil {
		slog.Warn("mark reset used failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "password_reset"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "talenthub",
		AccountName: user.UserID,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_error", "failed to generate mfa secret", requestctx.GetRequestID(r.Context()))
		return
	}

	stored := []byte(key.Secret())
	if h.Crypto != nil && h.Crypto.Configured() {
		encrypted, err := h.Crypto.EncryptString(key.Secret())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "mfa_error", "failed to store mfa secret", requestctx.GetRequestID(r.Context()))
			return
		}
		stored = encrypted
	}
	if err := h.Store.UpdateMFASecret(r.Context(), user.UserID, stored); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to store mfa secret", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"secret": key.Secret(), "url": key.URL()}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Code == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "mfa code is required", requestctx.GetRequestID(r.Context()))
		return
	}

	secretEnc, err := h.Store.GetMFASecret(r.Context(), user.UserID)
	if err != nil || len(secretEnc) == 0 {
		api.Fail(w, http.StatusBadRequest, "mfa_not_setup", "mfa secret has not been generated", requestctx.GetRequestID(r.Context()))
		return
	}
	secret := string(secretEnc)
	if h.Crypto != nil && h.Crypto.Configured() {
		decoded, err := h.Crypto.DecryptString(secretEnc)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "mfa_error", "failed to read mfa secret", requestctx.GetRequestID(r.Context()))
			return
		}
		secret = decoded
	}

	if !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.SetMFAEnabled(r.Context(), user.UserID, true); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to enable mfa", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "mfa_enabled"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.SetMFAEnabled(r.Context(), user.UserID, false); err != nil {
		api.Fail(w, http.StatusInternalServerError, "db_error", "failed to disable mfa", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "mfa_disabled"}, requestctx.GetRequestID(r.Context()))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
