package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/opsdesk/internal/auth/domain"
	obscontext "github.com/smallbiznis/opsdesk/internal/observability/context"
)

const (
	contextUserIDKey = "user_id"
	contextUserKey   = "user"
)

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		user, err := s.authsvc.GetUser(c.Request.Context(), sess.UserID.String())
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := obscontext.WithActorID(c.Request.Context(), user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, user.ID.String())
		c.Set(contextUserKey, user)
		c.Next()
	}
}

func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *authdomain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*authdomain.User)
	if !ok {
		return nil
	}
	return user
}
