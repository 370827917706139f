package services

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"github.com/xairline/xa-ffb/utils/wire"
)

// APIService is a small local HTTP API to look at what the bridge is doing
// and to inject commands without a controller attached.
type APIService interface {
	Handler() http.Handler
	Start(addr string) error
	Stop(ctx context.Context) error
}

type apiService struct {
	Logger logger.Logger
	bridge *Bridge
	engine *gin.Engine
	server *http.Server
}

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

type overridesResponse struct {
	Joystick   bool               `json:"joystick"`
	Pedals     bool               `json:"pedals"`
	Collective bool               `json:"collective"`
	Axes       map[string]float32 `json:"axes"`
}

func NewAPIService(bridge *Bridge, logger logger.Logger) APIService {
	a := &apiService{
		Logger: logger,
		bridge: bridge,
		engine: gin.New(),
	}
	a.engine.Use(gin.Recovery())

	apis := a.engine.Group("/apis")
	apis.GET("/telemetry", a.getTelemetry)
	apis.GET("/overrides", a.getOverrides)
	apis.GET("/sources", a.getSources)
	apis.POST("/commands", a.postCommand)
	return a
}

func (a *apiService) Handler() http.Handler {
	return a.engine
}

func (a *apiService) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	a.server = &http.Server{Handler: a.engine}
	a.Logger.Infof("API listening on %s", ln.Addr())
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Errorf("API server stopped: %v", err)
		}
	}()
	return nil
}

func (a *apiService) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *apiService) getTelemetry(c *gin.Context) {
	snap := a.bridge.LastSnapshot()
	if snap == nil {
		snap = models.Snapshot{}
	}
	c.JSON(http.StatusOK, snap)
}

func (a *apiService) getOverrides(c *gin.Context) {
	state := a.bridge.Dispatcher.State()
	axes := make(map[string]float32, len(state.Axes))
	for k, v := range state.Axes {
		axes[string(k)] = v
	}
	c.JSON(http.StatusOK, overridesResponse{
		Joystick:   state.Joystick(),
		Pedals:     state.Pedals(),
		Collective: state.Collective(),
		Axes:       axes,
	})
}

func (a *apiService) getSources(c *gin.Context) {
	c.JSON(http.StatusOK, a.bridge.Registry.Sources())
}

func (a *apiService) postCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := wire.DecodeCommand([]byte(req.Command))
	if unknown, ok := cmd.(models.UnknownCommand); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Reason})
		return
	}
	a.bridge.Dispatcher.Apply(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
