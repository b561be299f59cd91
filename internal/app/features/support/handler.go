// internal/app/features/support/handler.go
package support

import (
	"context"
	"html/template"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/learnportal/internal/app/features/errors"
	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/store/cache"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/formutil"
	"github.com/dalemusser/learnportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/learnportal/internal/app/system/inputval"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	articlesKey     = "support:articles"
	defaultCategory = "technical"
)

type Handler struct {
	API      *apiclient.Client
	Cache    cache.Cache
	CacheTTL time.Duration
	Sender   *shared.ContactSender
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(api *apiclient.Client, c cache.Cache, ttl time.Duration, sender *shared.ContactSender, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	return &Handler{
		API:      api,
		Cache:    c,
		CacheTTL: ttl,
		Sender:   sender,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type article struct {
	ID    string
	Title string
	Body  template.HTML
}

type pageData struct {
	formutil.Base
	Articles     []article
	ArticlesDown bool

	Action     string
	Input      inputval.ContactInput
	Categories []string
}

// ServeSupport handles GET /support: help articles plus the support form.
func (h *Handler) ServeSupport(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, shared.ContactResult{Input: shared.ContactPrefill(r, defaultCategory)})
}

// HandleSupport handles POST /support.
func (h *Handler) HandleSupport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/support")
		return
	}

	res := h.Sender.Submit(r, defaultCategory)
	if res.Sent() {
		res.Input = shared.ContactPrefill(r, defaultCategory)
	}
	h.render(w, r, res.Status, res)
}

// articles returns the help articles, from cache when possible.
func (h *Handler) articles(ctx context.Context) ([]models.SupportArticle, error) {
	return cache.Remember(ctx, h.Cache, h.Log, articlesKey, h.CacheTTL, h.API.Support().Articles)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, res shared.ContactResult) {
	data := pageData{
		Action:     "/support",
		Input:      res.Input,
		Categories: inputval.ContactCategories,
	}
	formutil.SetBase(&data.Base, r, "Support", "/")
	data.Fields = res.Fields
	data.SetError(res.Error)
	if res.Sent() {
		data.Success = "Thanks! A member of our support team will reply by email."
		if res.Confirmation != "" {
			data.Success = res.Confirmation
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.API(), h.Log, "support articles")
	defer cancel()
	list, err := h.articles(ctx)
	if err != nil {
		h.Log.Warn("support articles unavailable", zap.Error(err))
		data.ArticlesDown = true
	}
	data.Articles = sanitizeArticles(list)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "support", data)
}

func sanitizeArticles(list []models.SupportArticle) []article {
	out := make([]article, 0, len(list))
	for _, a := range list {
		out = append(out, article{
			ID:    a.ID.String(),
			Title: a.Title,
			Body:  htmlsanitize.PrepareForDisplay(a.Body),
		})
	}
	return out
}
