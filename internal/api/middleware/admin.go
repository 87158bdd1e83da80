package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lestade/fanzone-api/internal/api/handler/v1/response"
	"github.com/lestade/fanzone-api/internal/config"
	"github.com/lestade/fanzone-api/internal/domain"
)

type AdminUserFinder interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// RequireAdmin allows the request through when the authenticated user has
// the admin role or one of the configured admin emails. Runs after
// VerifyJWT.
func RequireAdmin(conf *config.APIConfig, users AdminUserFinder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(CtxKeyUserID)
		if !exists {
			response.RenderErr(ctx, response.ErrUnauthorized("missing authentication"))

			return
		}

		userID, ok := value.(uint)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized("missing authentication"))

			return
		}

		user, err := users.GetUser(ctx.Request.Context(), userID)
		if err != nil {
			response.RenderErr(ctx, response.ErrPermissionDenied())

			return
		}

		if user.Role != "admin" && !conf.IsAdminEmail(user.Email) {
			response.RenderErr(ctx, response.ErrPermissionDenied())

			return
		}

		ctx.Next()
	}
}
