package auth

import (
	"fmt"
	"slices"

	"github.com/phrazzld/taskboard/internal/domain"
)

// Authorize checks that claims carry one of the required roles. With no
// required roles any authenticated caller passes.
func Authorize(claims *Claims, required ...domain.Role) error {
	if claims == nil {
		return domain.ErrUnauthenticated
	}
	if len(required) == 0 || slices.Contains(required, claims.Role) {
		return nil
	}
	return fmt.Errorf("%w: role %q may not perform this operation", domain.ErrForbidden, claims.Role)
}
