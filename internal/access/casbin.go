package access

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	id "idbridge/pkg/domain"
)

//go:embed model.conf
var casbinModelContent string

//go:embed policy.csv
var defaultPolicy string

// DefaultPolicy returns the embedded policy text.
func DefaultPolicy() string {
	return defaultPolicy
}

// CasbinRegistry resolves capabilities through a casbin enforcer. Field
// capabilities are modelled as the object "<object>.<field>".
type CasbinRegistry struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbinRegistry builds a registry from policy text in casbin CSV form.
func NewCasbinRegistry(policy string) (*CasbinRegistry, error) {
	return newCasbinRegistry(stringadapter.NewAdapter(policy))
}

// NewCasbinRegistryFromFile builds a registry from a policy CSV file. An
// empty path falls back to the embedded policy.
func NewCasbinRegistryFromFile(path string) (*CasbinRegistry, error) {
	if path == "" {
		return NewCasbinRegistry(defaultPolicy)
	}
	return newCasbinRegistry(fileadapter.NewAdapter(path))
}

func newCasbinRegistry(adapter persist.Adapter) (*CasbinRegistry, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load casbin policies: %w", err)
	}
	return &CasbinRegistry{enforcer: enforcer}, nil
}

func (r *CasbinRegistry) ObjectAllowed(_ context.Context, principal id.Principal, object string, op Operation) (bool, error) {
	return r.authorize(principal, object, op)
}

func (r *CasbinRegistry) FieldAllowed(_ context.Context, principal id.Principal, object, field string, op Operation) (bool, error) {
	return r.authorize(principal, object+"."+field, op)
}

// authorize grants when the principal itself or any of its roles is allowed.
func (r *CasbinRegistry) authorize(principal id.Principal, obj string, op Operation) (bool, error) {
	subjects := make([]string, 0, len(principal.Roles)+1)
	subjects = append(subjects, principal.ID)
	for _, role := range principal.Roles {
		subjects = append(subjects, RoleID(role))
	}
	for _, sub := range subjects {
		allowed, err := r.enforcer.Enforce(sub, obj, string(op))
		if err != nil {
			return false, fmt.Errorf("casbin enforce error for %s: %w", sub, err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// RoleID converts a role name to its casbin subject.
func RoleID(role string) string {
	if strings.HasPrefix(role, "role:") {
		return role
	}
	return "role:" + role
}
