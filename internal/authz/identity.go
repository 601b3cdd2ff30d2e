package authz

import (
	"context"

	"hrms/internal/domain"
)

type EmployeeRef struct {
	ID   domain.EmployeeID `json:"id"`
	Name string            `json:"name"`
}

// Identity is the authenticated caller attached to the request context by the Guard.
type Identity struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Roles    domain.Roles  `json:"roles"`
	Employee *EmployeeRef  `json:"employee,omitempty"`
}

func IdentityFromUser(u *domain.User) *Identity {
	id := &Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    append(domain.Roles{}, u.Roles...),
	}
	if u.Employee != nil {
		id.Employee = &EmployeeRef{ID: u.Employee.ID, Name: u.Employee.FullName()}
	}
	return id
}

func (i *Identity) IsAdmin() bool { return i.Roles.HasAny(domain.AdminRoles...) }

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
