package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/kevinaaaquil/docshare/backend/models"
)

// Operation names one class of guarded operation. The gate decides per
// operation, independently of how routes are laid out.
type Operation struct {
	Resource string
	Action   string
}

var (
	OpReadDocuments  = Operation{"documents", "read"}
	OpWriteDocuments = Operation{"documents", "write"}
	OpReadProfile    = Operation{"profile", "read"}
	OpAdminDocuments = Operation{"documents", "administer"}
	OpManageUsers    = Operation{"users", "manage"}
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// authorization table: role, resource, action
var policy = [][]string{
	{string(models.RoleUser), "documents", "read"},
	{string(models.RoleUser), "documents", "write"},
	{string(models.RoleUser), "profile", "read"},
	{string(models.RoleAdmin), "documents", "administer"},
	{string(models.RoleAdmin), "users", "manage"},
}

// ADMIN inherits every USER grant; the reverse does not hold.
var inheritance = [][]string{
	{string(models.RoleAdmin), string(models.RoleUser)},
}

// Gate maps identity roles to permitted operations. It fails closed: any
// enforcement error or unknown role results in a denial.
type Gate struct {
	enforcer *casbin.SyncedEnforcer
}

func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for _, p := range policy {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", p, err)
		}
	}
	for _, g := range inheritance {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("add role link %v: %w", g, err)
		}
	}
	return &Gate{enforcer: e}, nil
}

// Authorize returns models.ErrForbidden unless one of the identity's roles
// grants op.
func (g *Gate) Authorize(id Identity, op Operation) error {
	for _, r := range id.Roles {
		if r != models.RoleUser && r != models.RoleAdmin {
			continue
		}
		ok, err := g.enforcer.Enforce(string(r), op.Resource, op.Action)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrForbidden, err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", models.ErrForbidden, op.Action, op.Resource)
}

// RequireRole returns models.ErrForbidden unless the identity holds required
// directly or through inheritance.
func (g *Gate) RequireRole(id Identity, required models.Role) error {
	for _, r := range id.Roles {
		if r != models.RoleUser && r != models.RoleAdmin {
			continue
		}
		if r == required {
			return nil
		}
		ok, err := g.enforcer.HasRoleForUser(string(r), string(required))
		if err == nil && ok {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s required", models.ErrForbidden, required)
}
