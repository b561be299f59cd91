// internal/domain/models/role.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RoleKind tags which shape a raw role arrived in.
type RoleKind int

const (
	RoleAbsent RoleKind = iota // no role field, null, or an unusable shape
	RoleString                 // "role": "teacher"
	RoleObject                 // "role": {"name": "Teacher"}
)

// Role is the raw role value from the API. Some endpoints send a plain
// string, others a role object with a name. Decode once here and hand the
// value to normalize.RoleToken; nothing downstream should inspect Kind.
type Role struct {
	Kind  RoleKind
	Value string // the string itself, or the object's name
}

// StringRole builds a Role as if the API had sent a plain string.
func StringRole(s string) Role { return Role{Kind: RoleString, Value: s} }

// NamedRole builds a Role as if the API had sent {"name": name}.
func NamedRole(name string) Role { return Role{Kind: RoleObject, Value: name} }

// IsZero reports whether no role was present.
func (r Role) IsZero() bool { return r.Kind == RoleAbsent }

func (r *Role) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Role{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = StringRole(s)
	case '{':
		var obj struct {
			Name any `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if obj.Name == nil {
			r.Kind = RoleObject
			return nil
		}
		if s, ok := obj.Name.(string); ok {
			*r = NamedRole(s)
		} else {
			*r = NamedRole(fmt.Sprint(obj.Name))
		}
	default:
		// numbers, arrays, booleans: tolerated as "no role"
	}
	return nil
}

func (r Role) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RoleString:
		return json.Marshal(r.Value)
	case RoleObject:
		return json.Marshal(struct {
			Name string `json:"name"`
		}{r.Value})
	default:
		return []byte("null"), nil
	}
}
