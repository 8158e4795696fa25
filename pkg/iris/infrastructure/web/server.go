package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
)

const (
	EndPointHealth        = "/health"
	EndPointStatus        = "/status"
	EndPointDescribe      = "/describe"
	EndPointTap           = "/tap"
	EndPointSettings      = "/settings"
	EndPointSettingsShow  = "/settings/show"
	EndPointSettingsClose = "/settings/close"
	EndPointCamera        = "/camera/:index"
	EndPointCameras       = "/cameras"
	EndPointFrames        = "/frames"
	EndPointSpeechStop    = "/speech/stop"
	EndPointListen        = "/listen"
	EndPointWebSocket     = "/ws"
	EndPointMetrics       = "/metrics"
)

const maxFrameSize = 10 << 20

// Assistant is the part of domain.Orchestrator exposed over HTTP.
type Assistant interface {
	Trigger(query string) domain.TriggerOutcome
	Tap() bool
	ShowSettings()
	CloseSettings()
	SaveSettings(config domain.ProviderConfig) error
	Settings() (domain.ProviderConfig, error)
	ToggleListening()
	StopSpeaking()
	Status() domain.Status
}

// FramePusher accepts frames from clients which own the camera (e.g. a browser).
type FramePusher interface {
	// PushFrame returns domain.ErrFramesNotAccepted if frames come from a local device.
	PushFrame(frame domain.Frame) error
}

type describeRequest struct {
	Query string `json:"query"`
}

type settingsRequest struct {
	Provider   string `json:"provider"`
	Credential string `json:"credential"`
}

type settingsResponse struct {
	Provider           string   `json:"provider"`
	HasCredential      bool     `json:"hasCredential"`
	MaskedCredential   string   `json:"maskedCredential,omitempty"`
	SupportedProviders []string `json:"supportedProviders"`
}

type statusResponse struct {
	State           string `json:"state"`
	LastResponse    string `json:"lastResponse"`
	SettingsVisible bool   `json:"settingsVisible"`
}

type Server struct {
	assistant      Assistant
	cameraSwitcher domain.CameraSwitcher
	framePusher    FramePusher
	hub            *Hub
	upgrader       websocket.Upgrader
	logger         log.Interface
}

func NewServer(
	assistant Assistant,
	cameraSwitcher domain.CameraSwitcher,
	framePusher FramePusher,
	hub *Hub,
	logger log.Interface,
) *Server {
	return &Server{
		assistant:      assistant,
		cameraSwitcher: cameraSwitcher,
		framePusher:    framePusher,
		hub:            hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))
	v1 := router.Group("/api/v1")
	{
		v1.GET(EndPointHealth, s.health)
		v1.GET(EndPointStatus, s.status)
		v1.POST(EndPointDescribe, s.describe)
		v1.POST(EndPointTap, s.tap)
		v1.GET(EndPointSettings, s.settings)
		v1.PUT(EndPointSettings, s.saveSettings)
		v1.POST(EndPointSettingsShow, s.showSettings)
		v1.POST(EndPointSettingsClose, s.closeSettings)
		v1.POST(EndPointCamera, s.switchCamera)
		v1.GET(EndPointCameras, s.cameras)
		v1.POST(EndPointFrames, s.pushFrame)
		v1.POST(EndPointSpeechStop, s.stopSpeaking)
		v1.POST(EndPointListen, s.listen)
		v1.GET(EndPointWebSocket, s.webSocket)
	}
	return router
}

func (s *Server) logRequests(c *gin.Context) {
	c.Next()
	s.logger.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"status": c.Writer.Status(),
	}).Debug("request served")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          "iris",
		"connectedClients": s.hub.ClientCount(),
	})
}

func (s *Server) status(c *gin.Context) {
	status := s.assistant.Status()
	c.JSON(http.StatusOK, statusResponse{
		State:           status.State.String(),
		LastResponse:    status.LastResponse,
		SettingsVisible: status.SettingsVisible,
	})
}

// An empty body is fine: it means the default question.
func (s *Server) describe(c *gin.Context) {
	var request describeRequest
	if c.Request.ContentLength != 0 {
		err := c.ShouldBindJSON(&request)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	outcome := s.assistant.Trigger(request.Query)
	c.JSON(triggerStatusCode(outcome), gin.H{"outcome": outcome.String()})
}

func triggerStatusCode(outcome domain.TriggerOutcome) int {
	switch outcome {
	case domain.TriggerOutcomeStarted:
		return http.StatusAccepted
	case domain.TriggerOutcomeIgnored:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func (s *Server) tap(c *gin.Context) {
	accepted := s.assistant.Tap()
	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}

func (s *Server) settings(c *gin.Context) {
	config, err := s.assistant.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settingsResponse{
		Provider:           string(config.Provider),
		HasCredential:      config.HasCredential(),
		MaskedCredential:   maskCredential(config.Credential),
		SupportedProviders: domain.SupportedProviders,
	})
}

func (s *Server) saveSettings(c *gin.Context) {
	var request settingsRequest
	err := c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	provider, err := domain.ParseProvider(request.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = s.assistant.SaveSettings(domain.ProviderConfig{
		Provider:   provider,
		Credential: strings.TrimSpace(request.Credential),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) showSettings(c *gin.Context) {
	s.assistant.ShowSettings()
	c.Status(http.StatusNoContent)
}

func (s *Server) closeSettings(c *gin.Context) {
	s.assistant.CloseSettings()
	c.Status(http.StatusNoContent)
}

func (s *Server) switchCamera(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "camera index must be a number"})
		return
	}
	err = s.cameraSwitcher.SwitchCamera(index)
	if errors.Is(err, domain.ErrNoSuchCamera) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) cameras(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cameras": s.cameraSwitcher.Cameras(),
		"active":  s.cameraSwitcher.ActiveCamera(),
	})
}

// The body is a data URL, exactly what a browser's canvas.toDataURL() returns.
func (s *Server) pushFrame(c *gin.Context) {
	body, err := common.ReadAllLimited(c.Request.Body, maxFrameSize)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	frame, err := domain.ParseDataURL(strings.TrimSpace(string(body)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = s.framePusher.PushFrame(frame)
	if errors.Is(err, domain.ErrFramesNotAccepted) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stopSpeaking(c *gin.Context) {
	s.assistant.StopSpeaking()
	c.Status(http.StatusNoContent)
}

func (s *Server) listen(c *gin.Context) {
	s.assistant.ToggleListening()
	c.Status(http.StatusNoContent)
}

func (s *Server) webSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("failed to upgrade to websocket")
		return
	}
	s.hub.Register(conn)
}

// Only the last 4 characters are shown: enough to tell keys apart.
func maskCredential(credential string) string {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ""
	}
	if len(credential) <= 4 {
		return "****"
	}
	return "****" + credential[len(credential)-4:]
}
