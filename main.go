package main

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/xairline/goplane/extra/logging"
	"github.com/xairline/goplane/xplm/plugins"
	"github.com/xairline/goplane/xplm/utilities"
	"github.com/xairline/xa-ffb/services"
	"github.com/xairline/xa-ffb/utils/logger"
)

// @BasePath  /apis

func main() {
}

func init() {
	gin.SetMode(gin.ReleaseMode)
	xpLogger := logger.NewXplaneLogger()
	plugins.EnableFeature("XPLM_USE_NATIVE_PATHS", true)
	logging.MinLevel = logging.Info_Level
	logging.PluginName = "XA FFB"
	// get plugin path
	systemPath := utilities.GetSystemPath()
	pluginPath := filepath.Join(systemPath, "Resources", "plugins", "XA-ffb")
	xpLogger.Infof("Plugin path: %s", pluginPath)

	config := services.LoadConfig(filepath.Join(pluginPath, "xa-ffb.yaml"), xpLogger)
	if config.LogLevel == "debug" {
		logging.MinLevel = logging.Debug_Level
	}

	log := xpLogger
	if config.LogFile != "" {
		logFile := config.LogFile
		if !filepath.IsAbs(logFile) {
			logFile = filepath.Join(pluginPath, logFile)
		}
		log = logger.Multi(xpLogger, logger.NewFileLogger(logFile, config.LogLevel))
	}

	// entrypoint
	services.NewXplaneService(
		config,
		log,
	)
}
