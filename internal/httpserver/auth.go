package httpserver

import (
	"net/http"

	"plugdrop/internal/domain"
	"plugdrop/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func registerHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}
		role := domain.Role(req.Role)
		if req.Role == "" {
			role = domain.RoleCustomer
		}
		u, token, err := svc.Register(c.Request.Context(), req.Username, req.Password, role)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sessionResponse{Token: token, User: *u})
	}
}

func loginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}
		u, token, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse{Token: token, User: *u})
	}
}

func logoutHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc.Logout(currentToken(c))
		c.Status(http.StatusNoContent)
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, currentUser(c))
	}
}
