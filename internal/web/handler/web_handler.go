package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/internal/common/messaging"
	"github.com/rizkirmdhn/vidloader/internal/controller"
	"github.com/rizkirmdhn/vidloader/internal/video"
	"github.com/rizkirmdhn/vidloader/internal/web/websocket"
	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/sirupsen/logrus"
)

// Platforms advertised on the index page
var supportedPlatforms = []models.Platform{models.PlatformYouTube, models.PlatformInstagram}

type Handler struct {
	cfg     *config.Config
	baseLog *logrus.Logger
	log     *logger.ComponentLogger
	ctrl    *controller.Controller
	message messaging.Client
	wsHub   *websocket.Hub
}

// NewHandler wires the controller to the hub. msg may be nil when the
// event bus is disabled.
func NewHandler(cfg *config.Config, log *logrus.Logger, ctrl *controller.Controller, hub *websocket.Hub, msg messaging.Client) *Handler {
	handler := &Handler{
		cfg:     cfg,
		baseLog: log,
		log:     logger.NewComponentLogger(log, "web_handler"),
		ctrl:    ctrl,
		message: msg,
		wsHub:   hub,
	}

	// Push every state change to the connected pages
	ctrl.SetObserver(handler.broadcastState)

	return handler
}

// RegisterRoutes registers all the routes for the web handler
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Web views
	r.GET("/", h.IndexHandler())
	r.GET("/ws", h.WebSocketHandler())

	// API endpoints
	api := r.Group("/api")
	{
		api.GET("/state", h.StateHandler())
		api.POST("/url", h.SetURLHandler())
		api.POST("/options", h.OptionsHandler())
		api.POST("/lookup", h.LookupHandler())
		api.POST("/download", h.DownloadHandler())
		api.POST("/clear", h.ClearHandler())
	}
}

// IndexHandler handles the index page request
func (h *Handler) IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":     "Video Downloader",
			"platforms": supportedPlatforms,
			"formats":   []string{models.FormatVideo, models.FormatAudio},
			"state":     h.ctrl.Snapshot(),
		})
	}
}

// WebSocketHandler returns the WebSocket connection handler
func (h *Handler) WebSocketHandler() gin.HandlerFunc {
	return websocket.WebSocketHandler(h.wsHub, h.baseLog, h.stateMessage)
}

// StateHandler returns the current form state
func (h *Handler) StateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
}

// SetURLHandler replaces the URL text
func (h *Handler) SetURLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL string `json:"url"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		if err := h.ctrl.SetURL(req.URL); err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
}

// OptionsHandler updates the format and quality selections
func (h *Handler) OptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Format  string `json:"format"`
			Quality string `json:"quality"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		if req.Format != "" {
			if err := h.ctrl.SetFormat(req.Format); err != nil {
				h.respondError(c, err)
				return
			}
		}
		if req.Quality != "" {
			if err := h.ctrl.SetQuality(req.Quality); err != nil {
				h.respondError(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
}

// LookupHandler submits the form. The body may carry the URL to submit.
func (h *Handler) LookupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL *string `json:"url"`
		}

		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid request body",
				})
				return
			}
		}

		if req.URL != nil {
			if err := h.ctrl.SetURL(*req.URL); err != nil {
				h.respondError(c, err)
				return
			}
		}

		// The lookup is not canceled when the page goes away
		err := h.ctrl.Submit(context.WithoutCancel(c.Request.Context()))
		if errors.Is(err, controller.ErrBusy) {
			h.respondError(c, err)
			return
		}

		// Other failures are part of the state
		c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
}

// DownloadHandler triggers the download of the active video
func (h *Handler) DownloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h.ctrl.Download(context.WithoutCancel(c.Request.Context()))
		if errors.Is(err, controller.ErrBusy) {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
}

// ClearHandler resets the form
func (h *Handler) ClearHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.ctrl.Clear()
		c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
}

// respondError maps controller errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	var inputErr *video.InvalidInputError

	switch {
	case errors.Is(err, controller.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{
			"error": "busy",
		})
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": inputErr.Msg,
		})
	default:
		h.log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
	}
}

// ConsumeEvents relays completed downloads from the event bus to the pages
func (h *Handler) ConsumeEvents(ctx context.Context) error {
	if h.message == nil {
		return fmt.Errorf("event bus is not configured")
	}

	queue := h.cfg.RabbitMq.Queue.Events
	if err := h.message.DeclareQueue(queue); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := h.message.BindQueue(queue, h.cfg.RabbitMq.Exchange, config.RoutingDownloadCompleted); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	return h.message.ConsumeWithContext(ctx, queue, h.handleEvent)
}

// handleEvent broadcasts one bus message as activity
func (h *Handler) handleEvent(body []byte, routingKey string) error {
	if routingKey != config.RoutingDownloadCompleted {
		return nil
	}

	var event models.DownloadEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Requeueing a malformed message would loop forever
		h.log.WithError(err).Warn("Dropping malformed download event")
		return nil
	}

	wsMessage, err := json.Marshal(models.ActivityMessage{
		Type:   models.EventActivity,
		Source: event.Source,
		Entry:  event.Entry,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal activity message: %w", err)
	}

	h.wsHub.Broadcast(wsMessage)
	h.log.WithFields(logrus.Fields{
		"source": event.Source,
		"title":  event.Entry.Title,
	}).Debug("Broadcasting activity to WebSocket clients")

	return nil
}

// stateMessage encodes the current state for a new connection
func (h *Handler) stateMessage() []byte {
	msg, err := encodeState(h.ctrl.Snapshot())
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal WebSocket state message")
		return nil
	}
	return msg
}

// broadcastState broadcasts a state snapshot to all WebSocket clients
func (h *Handler) broadcastState(s controller.State) {
	msg, err := encodeState(s)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal WebSocket state message")
		return
	}

	h.wsHub.Broadcast(msg)
}

func encodeState(s controller.State) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":  models.EventState,
		"state": s,
	})
}
