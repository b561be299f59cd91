// Package formutil provides helpers for re-rendering a form after a failed
// submission.
//
// The page is rendered again with the values the user typed, a message per
// invalid field, and an optional form-level error:
//
//	type contactData struct {
//		formutil.Base
//		Input inputval.ContactInput
//	}
//
//	data := contactData{Input: in}
//	formutil.SetBase(&data.Base, r, "Contact us", "/")
//	data.Fields = inputval.Validate(in)
//	templates.Render(w, r, "contact", data)
package formutil

import (
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/inputval"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
)

// Base is embedded in form page data.
type Base struct {
	viewdata.BaseVM
	Fields  inputval.Errors
	Error   string
	Success string
}

// SetBase fills the layout fields from the request.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the form-level message.
func (b *Base) SetError(msg string) { b.Error = msg }

// FieldError returns the message for field, or "".
func (b Base) FieldError(field string) string { return b.Fields[field] }

// HasErrors reports whether anything failed.
func (b Base) HasErrors() bool { return b.Error != "" || len(b.Fields) > 0 }
