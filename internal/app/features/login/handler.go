// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/learnportal/internal/app/features/errors"
	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/auditlog"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/app/system/formutil"
	"github.com/dalemusser/learnportal/internal/app/system/inputval"
	"github.com/dalemusser/learnportal/internal/app/system/navigation"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/app/system/ratelimit"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	API        *apiclient.Client
	SessionMgr *auth.SessionManager
	Guard      *ratelimit.Guard
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	api *apiclient.Client,
	sessionMgr *auth.SessionManager,
	guard *ratelimit.Guard,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	if guard == nil {
		guard = ratelimit.NewGuard(ratelimit.Limits{})
	}
	return &Handler{
		API:        api,
		SessionMgr: sessionMgr,
		Guard:      guard,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	formutil.Base
	Email     string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin shows the sign-in form. A user who is already signed in goes
// straight to their dashboard.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		dest := navigation.SafeReturn(r, navigation.LoginReturn)
		if dest == "" {
			dest = authz.DashboardPath(r)
		}
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	data := loginFormData{ReturnURL: query.Get(r, "return")}
	formutil.SetBase(&data.Base, r, "Sign in", "/")
	templates.Render(w, r, "login", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLoginPost checks the form, asks the backend for a token and starts
// a session. Failures re-render the form; the password is never echoed.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	in := inputval.LoginInput{
		Email:    normalize.Email(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if errs := inputval.Validate(in); errs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, in.Email, "", errs)
		return
	}

	if ok, msg := h.Guard.Login(auth.ClientIP(r), in.Email); !ok {
		h.AuditLog.LoginFailed(r.Context(), r, audit.EventLoginFailedRateLimit, in.Email, "rate limited")
		h.renderForm(w, r, http.StatusTooManyRequests, in.Email, msg, nil)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.API(), h.Log, "login")
	defer cancel()

	token, user, err := h.API.Auth().Login(ctx, in.Email, in.Password)
	if err != nil {
		h.loginFailed(w, r, in.Email, err)
		return
	}
	if user.ID == "" {
		// Some deployments return only a token; ask who it belongs to.
		if user, err = h.API.WithToken(token).Auth().Me(ctx); err != nil {
			h.loginFailed(w, r, in.Email, err)
			return
		}
	}

	su, err := h.SessionMgr.SignIn(w, r, user, token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		h.Log.Warn("login: backend issued an expired token", zap.String("email", in.Email))
		h.AuditLog.LoginFailed(r.Context(), r, audit.EventLoginFailedBackend, in.Email, "expired token")
		h.renderForm(w, r, http.StatusBadGateway, in.Email, "Sign-in failed. Please try again.", nil)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "login: start session", err, "Unable to create session. Please try again.", "/login")
		return
	}

	h.Guard.LoginSucceeded(in.Email)
	h.AuditLog.LoginSuccess(context.WithoutCancel(r.Context()), r, su)

	dest := destinationFor(r, &user)
	if shared.IsHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// loginFailed maps a backend error to what the user sees. Rejected
// credentials are not distinguished from unknown accounts.
func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, email string, err error) {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && isCredentialStatus(apiErr.Status) {
		h.AuditLog.LoginFailed(r.Context(), r, audit.EventLoginFailedCredentials, email, "invalid credentials")
		h.renderForm(w, r, http.StatusUnauthorized, email, "Invalid email or password.", nil)
		return
	}

	h.Log.Error("login: backend call failed", zap.Error(err), zap.String("email", email))
	h.AuditLog.LoginFailed(r.Context(), r, audit.EventLoginFailedBackend, email, "backend unavailable")
	h.renderForm(w, r, http.StatusBadGateway, email,
		"We couldn't reach the sign-in service. Please try again in a moment.", nil)
}

func isCredentialStatus(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, email, msg string, fields inputval.Errors) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	data := loginFormData{Email: email, ReturnURL: ret}
	formutil.SetBase(&data.Base, r, "Sign in", "/")
	data.Fields = fields
	data.SetError(msg)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "login", data)
}

// destinationFor prefers a safe return URL and otherwise the dashboard for
// the user's role.
func destinationFor(r *http.Request, u *models.User) string {
	if dest := navigation.SafeReturn(r, navigation.LoginReturn); dest != "" {
		return dest
	}
	return authz.Destination(u)
}
