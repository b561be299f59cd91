// internal/app/system/apiclient/services.go
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/learnportal/internal/domain/models"
)

// Backend endpoints.
const (
	PathLogin       = "/auth/login"
	PathMe          = "/auth/me"
	PathUsers       = "/users"
	PathCourses     = "/courses"
	PathFeatured    = "/courses/featured"
	PathEnrollments = "/enrollments/me"
	PathContact     = "/support/contact"
	PathArticles    = "/support/articles"
	PathHealth      = "/health"
)

// Auth groups the authentication endpoints.
func (c *Client) Auth() AuthService { return AuthService{c: c} }

// Users groups the user-management endpoints.
func (c *Client) Users() UsersService { return UsersService{c: c} }

// Courses groups the course catalog endpoints.
func (c *Client) Courses() CoursesService { return CoursesService{c: c} }

// Enrollments groups the signed-in student's enrollment endpoints.
func (c *Client) Enrollments() EnrollmentsService { return EnrollmentsService{c: c} }

// Support groups the contact and help-center endpoints.
func (c *Client) Support() SupportService { return SupportService{c: c} }

// Health calls the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Get(ctx, PathHealth, nil)
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*/

type AuthService struct{ c *Client }

// Login exchanges credentials for an access token and the user record.
func (s AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	env, err := s.c.Post(ctx, PathLogin, map[string]string{"email": email, "password": password})
	if err != nil {
		return "", models.User{}, err
	}
	var out struct {
		Token       string      `json:"token"`
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	if err := env.Decode(&out); err != nil {
		return "", models.User{}, err
	}
	tok := out.Token
	if tok == "" {
		tok = out.AccessToken
	}
	if tok == "" {
		return "", models.User{}, fmt.Errorf("apiclient: login response has no token")
	}
	return tok, out.User, nil
}

// Me returns the user the client's token belongs to.
func (s AuthService) Me(ctx context.Context) (models.User, error) {
	env, err := s.c.Get(ctx, PathMe, nil)
	if err != nil {
		return models.User{}, err
	}
	var out struct {
		models.User
		Wrapped *models.User `json:"user"`
	}
	if err := env.Decode(&out); err != nil {
		return models.User{}, err
	}
	// Some deployments wrap it as {"user": {...}}.
	if out.Wrapped != nil {
		return *out.Wrapped, nil
	}
	return out.User, nil
}

/*─────────────────────────────────────────────────────────────────────────────*/

type UsersService struct{ c *Client }

// UserFilter narrows a users listing.
type UserFilter struct {
	Query string
	Role  string
}

// Page returns the raw response body for one page of users; callers
// normalize it with rowset.
func (s UsersService) Page(ctx context.Context, page, limit int, f UserFilter) ([]byte, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if q := strings.TrimSpace(f.Query); q != "" {
		params.Set("q", q)
	}
	if r := strings.TrimSpace(f.Role); r != "" {
		params.Set("role", r)
	}
	env, err := s.c.Get(ctx, PathUsers, params)
	if err != nil {
		return nil, err
	}
	return env.Raw, nil
}

/*─────────────────────────────────────────────────────────────────────────────*/

type CoursesService struct{ c *Client }

// ListAll returns every course visible to the caller.
func (s CoursesService) ListAll(ctx context.Context) ([]models.Course, error) {
	env, err := s.c.Get(ctx, PathCourses, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Course](env, "courses")
}

// Featured returns the public featured-course list.
func (s CoursesService) Featured(ctx context.Context) ([]models.Course, error) {
	env, err := s.c.Get(ctx, PathFeatured, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Course](env, "courses")
}

/*─────────────────────────────────────────────────────────────────────────────*/

type EnrollmentsService struct{ c *Client }

// Mine returns the signed-in student's enrollments.
func (s EnrollmentsService) Mine(ctx context.Context) ([]models.Enrollment, error) {
	env, err := s.c.Get(ctx, PathEnrollments, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Enrollment](env, "enrollments")
}

/*─────────────────────────────────────────────────────────────────────────────*/

type SupportService struct{ c *Client }

// SubmitContact sends a contact-form message. Returns the backend's
// confirmation message, if any.
func (s SupportService) SubmitContact(ctx context.Context, msg models.ContactMessage) (string, error) {
	env, err := s.c.Post(ctx, PathContact, msg)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Articles returns the help-center articles.
func (s SupportService) Articles(ctx context.Context) ([]models.SupportArticle, error) {
	env, err := s.c.Get(ctx, PathArticles, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.SupportArticle](env, "articles")
}

// decodeList accepts data as a bare array, or an object holding the array
// under key, "rows" or "items".
func decodeList[T any](env *Envelope, key string) ([]T, error) {
	var list []T
	if err := env.Decode(&list); err == nil {
		if list == nil {
			list = []T{}
		}
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := env.Decode(&obj); err != nil {
		return nil, err
	}
	for _, k := range []string{key, "rows", "items"} {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("apiclient: decode %s: %w", k, err)
		}
		if list == nil {
			list = []T{}
		}
		return list, nil
	}
	return nil, fmt.Errorf("apiclient: no %q list in response", key)
}
