package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

// AdminRoles may act on any user's account.
var AdminRoles = []string{RoleAdmin, RoleHR}

// Roles is an unordered set of role labels stored as a JSON array.
type Roles []string

// NewRoles trims, drops empties and collapses duplicates, keeping first-seen order.
func NewRoles(labels ...string) Roles {
	seen := make(map[string]struct{}, len(labels))
	out := make(Roles, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func (r Roles) Has(role string) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the two role sets intersect.
func (r Roles) HasAny(allowed ...string) bool {
	for _, a := range allowed {
		if r.Has(a) {
			return true
		}
	}
	return false
}

func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		r = Roles{}
	}
	buf, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

func (r *Roles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Roles{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("roles: unsupported scan type %T", src)
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return fmt.Errorf("roles: decode: %w", err)
	}
	*r = NewRoles(labels...)
	return nil
}
