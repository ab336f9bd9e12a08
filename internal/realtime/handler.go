package realtime

import (
	"log/slog"
	"net/http"

	"github.com/janmaslov/wishlist/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin app behind the session cookie; the cookie check is the gate.
		return true
	},
}

// Handler upgrades authenticated requests into live connections. One endpoint
// per channel; the session cookie must already have been verified by the auth
// middleware, or the request is terminated before any registry state exists.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Endpoint returns the upgrade handler for one channel.
func (h *Handler) Endpoint(ch Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.IdentityFrom(c)
		if !ok {
			// Auth middleware admits no one without an identity; this is the
			// fail-closed backstop.
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("WebSocket upgrade failed", "user", identity.Name, "error", err)
			return
		}

		client := newClient(h.registry, conn, identity, ch)
		h.registry.Admit(client)

		go client.writePump()
		go client.readPump()
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/active", h.Endpoint(ChannelActive))
	r.GET("/archived", h.Endpoint(ChannelArchived))
}
