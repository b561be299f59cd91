// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/store/sessions"
	"github.com/dalemusser/learnportal/internal/app/system/auditlog"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /logout: the session record is closed and the
// cookie cleared, then the user goes home.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u)
		h.Log.Debug("user signed out", zap.String("user_id", u.ID))
	}

	h.SessionMgr.SignOut(w, r, sessions.EndLogout)

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if shared.IsHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	// Non-HTMX: standard redirect home.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
