package testutil

import (
	"context"

	id "idbridge/pkg/domain"
	"idbridge/pkg/requestcontext"
)

// PrincipalContext returns a background context acting as principalID with
// the given roles. This simulates what the auth middleware does for
// authenticated requests.
func PrincipalContext(principalID string, roles ...string) context.Context {
	return requestcontext.WithPrincipal(context.Background(), id.Principal{ID: principalID, Roles: roles})
}
