package auth

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/owt-boats/internal/api"
)

type HandlerImpl struct {
	logger *slog.Logger
	issuer *TokenIssuer
}

func NewAuthHandlerImpl(issuer *TokenIssuer, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger: logger,
		issuer: issuer,
	}
}

// Token exchanges the principal established by BasicAuth for an access token.
func (h *HandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Token"))

	p, ok := GetPrincipalFromContext(ctx)
	if !ok {
		l.WarnContext(ctx, "No authenticated principal")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	resp, err := h.issuer.Issue(ctx, p)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.String("principal", p.Name), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	l.InfoContext(ctx, "Token issued", slog.String("principal", p.Name))
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
