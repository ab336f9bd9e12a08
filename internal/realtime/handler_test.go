package realtime

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// An unauthenticated request must be terminated before any registry state
// exists: no admit, no subscription, nothing to clean up.
func TestEndpointRejectsUnauthenticatedBeforeAdmission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := NewRegistry()
	handler := NewHandler(registry)

	engine := gin.New()
	ws := engine.Group("/ws")
	handler.RegisterRoutes(ws)

	for _, path := range []string{"/ws/active", "/ws/archived"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}

	if registry.Len() != 0 {
		t.Errorf("rejected connections leaked into the registry: %d", registry.Len())
	}
	for _, ch := range Channels() {
		if got := len(registry.SubscribersOf(ch)); got != 0 {
			t.Errorf("channel %s has %d subscribers after rejected opens", ch, got)
		}
	}
}
