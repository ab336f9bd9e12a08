package auth

import (
	"net/http"

	"github.com/janmaslov/wishlist/internal/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service    *Service
	cookieName string
	cookiePath string
}

func NewHandler(service *Service, cookieName, cookiePath string) *Handler {
	if cookiePath == "" {
		cookiePath = "/"
	}
	return &Handler{
		service:    service,
		cookieName: cookieName,
		cookiePath: cookiePath,
	}
}

// SignIn exchanges credentials for the session cookie. Every failure is the
// same generic 401; clients cannot tell an unknown user from a bad password.
func (h *Handler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	identity, token, err := h.service.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	maxAge := int(h.service.Tokens().Expiry().Seconds())
	c.SetCookie(h.cookieName, token, maxAge, h.cookiePath, "", false, true)

	c.JSON(http.StatusOK, models.SignInResponse{
		User: models.UserResponse{
			ID:         identity.UserID,
			JellyfinID: identity.JellyfinID,
			Name:       identity.Name,
			Admin:      identity.Admin,
		},
	})
}

func (h *Handler) SignOut(c *gin.Context) {
	c.SetCookie(h.cookieName, "", -1, h.cookiePath, "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/sign-in", h.SignIn)
		group.POST("/sign-out", h.SignOut)
	}
}
