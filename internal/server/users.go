package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/opsdesk/internal/auth/domain"
)

type CreateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role := authdomain.Role(req.Role)
	if role == "" {
		role = authdomain.RoleUser
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          role,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.authsvc.ListUsers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) DeleteUser(c *gin.Context) {
	// Admins cannot remove their own account.
	if user := currentUser(c); user != nil && user.ID.String() == c.Param("id") {
		AbortWithError(c, ErrForbidden)
		return
	}

	if err := s.authsvc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
