package middleware

import (
	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/security"
)

// RequireCapability middleware checks the actor's role against the
// capability policy. Role logic lives in the policy rule, not here.
func RequireCapability(policy *security.Policy, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if actor == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if !policy.Allowed(actor.Role, capability) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_capability", capability).
					WithDetail("role", string(actor.Role)),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
