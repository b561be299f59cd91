// internal/domain/models/course.go
package models

import "time"

// Course is a course as listed by the catalog and teacher endpoints.
// Description is HTML authored in the backend's editor; sanitize before use.
type Course struct {
	ID          ID        `json:"id"`
	Code        string    `json:"code,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Teacher     *User     `json:"teacher,omitempty"`
	Students    int       `json:"students_count,omitempty"`
	Lessons     int       `json:"lessons_count,omitempty"`
	StartsAt    time.Time `json:"starts_at,omitempty"`
}

// Enrollment is a student's enrollment in a course.
type Enrollment struct {
	ID         ID         `json:"id"`
	Course     Course     `json:"course"`
	Progress   int        `json:"progress"` // percent, 0..100
	Status     string     `json:"status,omitempty"`
	EnrolledAt *time.Time `json:"enrolled_at,omitempty"`
}

// SupportArticle is a help-centre article shown on /support.
type SupportArticle struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"` // HTML
}

// ContactMessage is what the contact and support forms post to the API.
type ContactMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// DefaultSiteName is shown in page titles and the header.
const DefaultSiteName = "LearnPortal"
