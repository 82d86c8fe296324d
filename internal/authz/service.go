package authz

import (
	"context"
	"fmt"

	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
)

// Grants is the resolved set of roles a user holds in a company.
type Grants struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Roles     []enums.MemberRole
}

// Has reports whether the grant set contains the role.
func (g Grants) Has(role enums.MemberRole) bool {
	for _, r := range g.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanManage reports whether the user may approve, fulfill, or administer
// company resources. Admin and superuser are managing roles.
func (g Grants) CanManage() bool {
	return g.Has(enums.MemberRoleAdmin) || g.Has(enums.MemberRoleSuperuser)
}

// IsMember reports whether the user holds any active role in the company.
func (g Grants) IsMember() bool {
	return len(g.Roles) > 0
}

// Service resolves membership grants for authorization decisions.
type Service interface {
	Resolve(ctx context.Context, userID, companyID uuid.UUID) (Grants, error)
	RequireManager(ctx context.Context, userID, companyID uuid.UUID) (Grants, error)
}

type service struct {
	repo Repository
}

// NewService wires an authz service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("authz repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Resolve(ctx context.Context, userID, companyID uuid.UUID) (Grants, error) {
	if userID == uuid.Nil {
		return Grants{}, fmt.Errorf("user id is required")
	}
	if companyID == uuid.Nil {
		return Grants{}, fmt.Errorf("company id is required")
	}
	roles, err := s.repo.ListActiveRoles(ctx, userID, companyID)
	if err != nil {
		return Grants{}, err
	}
	return Grants{UserID: userID, CompanyID: companyID, Roles: roles}, nil
}

// RequireManager resolves grants and fails with a forbidden error when the
// user holds no managing role in the company.
func (s *service) RequireManager(ctx context.Context, userID, companyID uuid.UUID) (Grants, error) {
	grants, err := s.Resolve(ctx, userID, companyID)
	if err != nil {
		return Grants{}, err
	}
	if !grants.CanManage() {
		return Grants{}, pkgerrors.New(pkgerrors.CodeForbidden, "managing role required")
	}
	return grants, nil
}
