//go:build !test

package services

//go:generate mockgen -destination=./__mocks__/xplane.go -package=mocks -source=xplane.go

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/xairline/goplane/extra"
	"github.com/xairline/goplane/xplm/processing"
	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"github.com/xairline/xa-ffb/utils/wire"
)

type XplaneService interface {
	// init
	onPluginStateChanged(state extra.PluginState, plugin *extra.XPlanePlugin)
	onPluginStart()
	onPluginStop()
	// flight loop
	flightLoop(elapsedSinceLastCall, elapsedTimeSinceLastFlightLoop float32, counter int, ref interface{}) float32
}

type xplaneService struct {
	Plugin *extra.XPlanePlugin
	Logger logger.Logger
	config models.Config

	bridge   *Bridge
	receiver *wire.UDPReceiver
	api      APIService
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

var xplaneSvcLock = &sync.Mutex{}
var xplaneSvc XplaneService

func NewXplaneService(
	config models.Config,
	logger logger.Logger,
) XplaneService {
	xplaneSvcLock.Lock()
	defer xplaneSvcLock.Unlock()
	if xplaneSvc != nil {
		logger.Info("Xplane SVC has been initialized already")
		return xplaneSvc
	}
	logger.Info("Xplane SVC: initializing")
	svc := &xplaneService{
		Plugin: extra.NewPlugin("XA FFB", "com.github.xairline.xa-ffb", "Collect and send telemetry for force feedback processing"),
		Logger: logger,
		config: config,
	}
	svc.Plugin.SetPluginStateCallback(svc.onPluginStateChanged)
	xplaneSvc = svc
	return svc
}

func (s *xplaneService) onPluginStateChanged(state extra.PluginState, plugin *extra.XPlanePlugin) {
	switch state {
	case extra.PluginStart:
		s.onPluginStart()
	case extra.PluginStop:
		s.onPluginStop()
	case extra.PluginEnable:
		s.Logger.Infof("Plugin: %s enabled", plugin.GetName())
	case extra.PluginDisable:
		s.Logger.Infof("Plugin: %s disabled", plugin.GetName())
		if s.bridge != nil {
			s.bridge.Dispatcher.ReleaseAll()
		}
	}
}

func (s *xplaneService) onPluginStart() {
	s.Logger.Info("Plugin started")
	runtime.GOMAXPROCS(runtime.NumCPU())

	sender, err := wire.NewUDPSender(s.config.TelemetryAddr)
	if err != nil {
		s.Logger.Errorf("Telemetry disabled: %v", err)
	} else {
		s.Logger.Infof("Sending telemetry to %s", s.config.TelemetryAddr)
	}

	s.bridge = NewBridge(NewXplmSimulator(), sender, s.Logger)
	s.bridge.SendWhilePaused = s.config.SendWhilePaused
	s.bridge.Subscribe(s.config.Subscriptions)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	receiver, err := wire.NewUDPReceiver(s.config.CommandAddr, s.config.ReceiveTimeout, s.Logger)
	if err != nil {
		s.Logger.Errorf("Commands disabled: %v", err)
	} else {
		s.receiver = receiver
		s.Logger.Infof("Listening for commands on %s", receiver.LocalAddr())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			receiver.Run(ctx, s.bridge.HandleDatagram)
		}()
	}

	if s.config.API.Enabled {
		s.api = NewAPIService(s.bridge, s.Logger)
		if err := s.api.Start(s.config.API.Addr); err != nil {
			s.Logger.Errorf("API disabled: %v", err)
			s.api = nil
		}
	}

	processing.RegisterFlightLoopCallback(s.flightLoop, -1, nil)
}

func (s *xplaneService) onPluginStop() {
	s.Logger.Info("Plugin stopped")
	processing.UnregisterFlightLoopCallback(s.flightLoop, nil)

	if s.bridge != nil {
		s.bridge.Dispatcher.ReleaseAll()
	}
	if s.cancel != nil {
		s.cancel()
	}
	// the receive loop exits within one read timeout
	s.wg.Wait()
	if s.receiver != nil {
		s.receiver.Close()
	}
	if s.bridge != nil && s.bridge.Sender != nil {
		s.bridge.Sender.Close()
	}
	if s.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.api.Stop(ctx); err != nil {
			s.Logger.Errorf("API shutdown: %v", err)
		}
	}
}

func (s *xplaneService) flightLoop(
	elapsedSinceLastCall,
	elapsedTimeSinceLastFlightLoop float32,
	counter int,
	ref interface{},
) float32 {
	defer func() {
		if p := recover(); p != nil {
			s.Logger.Errorf("Flight loop panic: %v", p)
		}
	}()
	s.bridge.Tick()
	// call again next frame
	return -1
}
