// internal/domain/models/user.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ID is a record identifier as sent by the REST API. The API is not
// consistent about quoting ids, so both 42 and "42" decode to "42".
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// User is the authenticated-user record returned by the API.
// Name, Email and Role are all optional upstream.
type User struct {
	ID        ID         `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      Role       `json:"role"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UserRow is one row of the admin users table. It mirrors what the
// /users endpoint returns, including the nested role object.
type UserRow struct {
	ID        ID         `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Joined formats CreatedAt for table cells.
func (u UserRow) Joined() string {
	if u.CreatedAt == nil || u.CreatedAt.IsZero() {
		return ""
	}
	return u.CreatedAt.Format("Jan 2, 2006")
}

// AsUser converts a table row back into a User.
func (u UserRow) AsUser() User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Status: u.Status, CreatedAt: u.CreatedAt}
}

// NumericID builds an ID from an int.
func NumericID(n int) ID { return ID(strconv.Itoa(n)) }
