package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
)

// IdentityMiddleware copies the caller identity forwarded by the API gateway
// into the request context. Authentication itself happens upstream; this
// service only needs the resolved identity for audit stamping and for branch
// scoping of queries. A request without x-branch-id and without the admin
// flag cannot be scoped and is rejected.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if v := c.GetHeader("x-user-id"); v != "" {
			if userId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetUserIdInContext(ctx, userId)
			}
		}
		if v := c.GetHeader("x-user-name"); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}

		isAdmin := c.GetHeader("x-is-admin") == "true"
		if isAdmin {
			ctx = utils.SetIsAdminInContext(ctx, true)
		}

		if v := c.GetHeader("x-branch-id"); v != "" {
			branchId, err := strconv.Atoi(v)
			if err != nil || branchId <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid x-branch-id"})
				c.Abort()
				return
			}
			ctx = utils.SetBranchIdInContext(ctx, branchId)
		} else if !isAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant scope"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CorrelationMiddleware attaches a correlation id to every request, reusing
// the caller's x-correlation-id when present.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Writer.Header().Set("x-correlation-id", cid)
		c.Next()
	}
}
