// internal/app/features/contact/handler.go
package contact

import (
	"net/http"

	uierrors "github.com/dalemusser/learnportal/internal/app/features/errors"
	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/system/formutil"
	"github.com/dalemusser/learnportal/internal/app/system/inputval"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const defaultCategory = "general"

type pageData struct {
	formutil.Base
	Action     string
	Input      inputval.ContactInput
	Categories []string
}

type Handler struct {
	Sender *shared.ContactSender
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(sender *shared.ContactSender, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Sender: sender,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeContact handles GET /contact.
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, shared.ContactResult{Input: shared.ContactPrefill(r, defaultCategory)})
}

// HandleContact handles POST /contact. On success the form comes back
// empty with a thank-you message.
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/contact")
		return
	}

	res := h.Sender.Submit(r, defaultCategory)
	if res.Sent() {
		h.Log.Info("contact message sent", zap.String("category", res.Input.Category))
		res.Input = shared.ContactPrefill(r, defaultCategory)
	}
	h.render(w, r, res.Status, res)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, res shared.ContactResult) {
	data := pageData{Action: "/contact", Input: res.Input, Categories: inputval.ContactCategories}
	formutil.SetBase(&data.Base, r, "Contact us", "/")
	data.Fields = res.Fields
	data.SetError(res.Error)
	if res.Sent() {
		data.Success = "Thanks! Your message is on its way and we'll reply by email."
		if res.Confirmation != "" {
			data.Success = res.Confirmation
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "contact", data)
}
