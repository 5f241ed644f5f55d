package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/infrastructure/logger"
	"github.com/kasamthapa/krisi/internal/interfaces/http/dto"
)

// Actor headers set by the upstream gateway. They are trusted as-is.
const (
	ActorIDHeader   = "X-Actor-ID"
	ActorRoleHeader = "X-Actor-Role"
)

const actorKey = "actor"

// Actor parses the actor headers. Requests without a valid actor pass
// through anonymously; RequireActor rejects them on mutating routes.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := parseActor(c)
		if ok {
			c.Set(actorKey, actor)
			ctx, reqLogger := logger.WithActorID(c.Request.Context(), logger.GetGinLogger(c), actor.ID.String())
			c.Request = c.Request.WithContext(ctx)
			c.Set(logger.GinLoggerKey, reqLogger)
		}
		c.Next()
	}
}

func parseActor(c *gin.Context) (shared.Actor, bool) {
	id, err := uuid.Parse(c.GetHeader(ActorIDHeader))
	if err != nil {
		return shared.Actor{}, false
	}
	role, err := shared.ParseRole(c.GetHeader(ActorRoleHeader))
	if err != nil {
		return shared.Actor{}, false
	}
	actor, err := shared.NewActor(id, role)
	if err != nil {
		return shared.Actor{}, false
	}
	return actor, true
}

// RequireActor aborts with UNAUTHORIZED unless Actor resolved a caller
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetActor(c); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"A valid X-Actor-ID and X-Actor-Role are required",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

// GetActor returns the caller resolved by Actor
func GetActor(c *gin.Context) (shared.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return shared.Actor{}, false
	}
	actor, ok := v.(shared.Actor)
	return actor, ok
}
