package shared

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/auditlog"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/inputval"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/app/system/ratelimit"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"go.uber.org/zap"
)

// ContactSender validates and forwards the contact and support forms.
type ContactSender struct {
	API      *apiclient.Client
	Guard    *ratelimit.Guard
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// ContactResult is the outcome of one submission. Status is the HTTP
// status the form page should be rendered with.
type ContactResult struct {
	Input  inputval.ContactInput
	Fields inputval.Errors
	Error  string
	Status int

	// Confirmation is the backend's reply on success.
	Confirmation string
}

// Sent reports whether the backend accepted the message.
func (res ContactResult) Sent() bool { return res.Status == http.StatusOK && res.Error == "" && res.Fields == nil }

// ContactInputFrom reads the posted form. An empty category becomes def.
func ContactInputFrom(r *http.Request, def string) inputval.ContactInput {
	in := inputval.ContactInput{
		Name:     normalize.Name(r.FormValue("name")),
		Email:    normalize.Email(r.FormValue("email")),
		Subject:  strings.TrimSpace(r.FormValue("subject")),
		Category: strings.ToLower(strings.TrimSpace(r.FormValue("category"))),
		Message:  strings.TrimSpace(r.FormValue("message")),
	}
	if in.Category == "" {
		in.Category = def
	}
	return in
}

// ContactPrefill fills name and email from the signed-in user.
func ContactPrefill(r *http.Request, def string) inputval.ContactInput {
	in := inputval.ContactInput{Category: def}
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		in.Name, in.Email = u.Name, u.Email
	}
	return in
}

// Submit handles a posted form. The form must already be parsed.
func (s *ContactSender) Submit(r *http.Request, def string) ContactResult {
	res := ContactResult{Input: ContactInputFrom(r, def), Status: http.StatusOK}

	if errs := inputval.Validate(res.Input); errs != nil {
		res.Fields = errs
		res.Status = http.StatusUnprocessableEntity
		return res
	}

	if ok, msg := s.Guard.Contact(auth.ClientIP(r)); !ok {
		s.AuditLog.ContactRateLimited(r.Context(), r, res.Input.Email)
		res.Error = msg
		res.Status = http.StatusTooManyRequests
		return res
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.API(), s.Log, "contact submit")
	defer cancel()

	confirmation, err := s.API.Support().SubmitContact(ctx, models.ContactMessage{
		Name:     res.Input.Name,
		Email:    res.Input.Email,
		Subject:  res.Input.Subject,
		Category: res.Input.Category,
		Message:  res.Input.Message,
	})
	if err != nil {
		s.Log.Warn("contact submit failed", zap.Error(err), zap.String("category", res.Input.Category))
		res.Error = "We couldn't send your message right now. Please try again in a few minutes."
		res.Status = http.StatusBadGateway
		return res
	}

	s.AuditLog.ContactSubmitted(context.WithoutCancel(r.Context()), r, res.Input.Email, res.Input.Category, confirmation)
	res.Confirmation = confirmation
	return res
}
