package home

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/cache"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// featuredKey is the cache key for the public featured-courses list.
const featuredKey = "catalog:featured"

// Handler holds dependencies needed to serve the public pages.
type Handler struct {
	API      *apiclient.Client
	Cache    cache.Cache
	CacheTTL time.Duration
	Log      *zap.Logger
}

func NewHandler(api *apiclient.Client, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	return &Handler{API: api, Cache: c, CacheTTL: ttl, Log: logger}
}

type courseCard struct {
	Title       string
	Code        string
	Teacher     string
	Description template.HTML
}

type homeData struct {
	viewdata.BaseVM
	Featured    []courseCard
	CatalogDown bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := homeData{BaseVM: viewdata.NewBaseVM(r, "Welcome", "/")}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.API())
	defer cancel()

	courses, err := h.featured(ctx)
	if err != nil {
		// The landing page still renders without the catalog.
		h.Log.Warn("featured courses unavailable", zap.Error(err))
		data.CatalogDown = true
	}
	data.Featured = cards(courses)

	templates.Render(w, r, "home", data)
}

// featured returns the featured courses, from cache when possible.
func (h *Handler) featured(ctx context.Context) ([]models.Course, error) {
	return cache.Remember(ctx, h.Cache, h.Log, featuredKey, h.CacheTTL, h.API.Courses().Featured)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /privacy                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServePrivacy(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "privacy", struct{ viewdata.BaseVM }{viewdata.NewBaseVM(r, "Privacy", "/")})
}

func (h *Handler) ServeTerms(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "terms", struct{ viewdata.BaseVM }{viewdata.NewBaseVM(r, "Terms of Use", "/")})
}

func cards(courses []models.Course) []courseCard {
	out := make([]courseCard, 0, len(courses))
	for _, c := range courses {
		card := courseCard{
			Title:       c.Title,
			Code:        c.Code,
			Description: htmlsanitize.PrepareForDisplay(c.Description),
		}
		if c.Teacher != nil {
			card.Teacher = normalize.DisplayName(c.Teacher)
		}
		out = append(out, card)
	}
	return out
}
