package models

import "time"

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type Config struct {
	TelemetryAddr   string        `yaml:"telemetry_addr"`
	CommandAddr     string        `yaml:"command_addr"`
	ReceiveTimeout  time.Duration `yaml:"receive_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`
	SendWhilePaused bool          `yaml:"send_while_paused"`
	API             APIConfig     `yaml:"api"`
	Subscriptions   []Dataref     `yaml:"subscriptions"`
}

func DefaultConfig() Config {
	return Config{
		TelemetryAddr:  "127.255.255.255:34390",
		CommandAddr:    "127.0.0.1:34391",
		ReceiveTimeout: 250 * time.Millisecond,
		LogLevel:       "info",
		LogFile:        "xa-ffb.log",
		API: APIConfig{
			Addr: "127.0.0.1:34392",
		},
	}
}
