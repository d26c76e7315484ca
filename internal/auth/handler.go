package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/haddadrachelle2-png/testdoc/internal/transport"
	"github.com/haddadrachelle2-png/testdoc/pkg/logger"
)

type ctxKey string

const ContextUserKey ctxKey = "identity"

// IdentityFromContext returns the authenticated caller placed in the request
// context by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ContextUserKey).(*Identity)
	return id, ok
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err, "username", dto.Username)

		switch err.(type) {
		case ValidationError:
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// AuthMiddleware validates the bearer token and injects the caller identity
// into the request context. All claims needed downstream live in the token,
// so no store round-trip happens here.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Error("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserKey, claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly gates a route to members of the admin group. It must run after
// AuthMiddleware.
func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity == nil {
			h.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !identity.IsAdminGroup {
			h.Logger.Warn("admin-only route denied",
				"user_id", identity.ID,
				"group_id", identity.GroupID,
				"path", r.URL.Path)
			h.WriteError(w, http.StatusForbidden, "Access denied. Admins only.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
