package api

import (
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking"
)

// Handler contains all properties to serve the API
type Handler struct {
	nc    *nats.Conn
	store storage.Interface
	ctrl  *tracking.Controller
}

// NewHandler create a new API handler
func NewHandler(nc *nats.Conn, store storage.Interface, ctrl *tracking.Controller) *Handler {
	return &Handler{
		nc:    nc,
		store: store,
		ctrl:  ctrl,
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")
	api := e.Group("/api/v1")
	api.POST("/sessions", h.handleClaimSession)
	api.POST("/sessions/release", h.handleReleaseSession)
	api.GET("/sessions", h.handleFetchSessions)
	api.GET("/buses/:busNumber/session", h.handleGetBusSession)

	api.Any("/realtime-events", h.realtimeEventsHandler())

	tr := e.Group("/tracking")
	tr.Any("/v1", h.trackingChannelHandler())
}
