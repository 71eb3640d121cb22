package config

const (
	defaultLogDir             = "~/.local/share/tapetail/logs"
	defaultTelemetryLog       = "~/.local/share/tapetail/telemetry.log"
	defaultAPIBind            = "127.0.0.1:7319"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	defaultPollInterval       = "1s"
	defaultBackoffFloor       = "1s"
	defaultBackoffCap         = "30s"
	defaultBackoffMultiplier  = 2.0
	defaultSimulatorInterval  = "1s"
	defaultSimulatorProducers = 2
	defaultSimulatorConsumers = 2
	defaultSimulatorCapacity  = 1024
	defaultSimulatorRate      = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Source: Source{
			TelemetryLog: defaultTelemetryLog,
		},
		Collector: Collector{
			PollInterval:      defaultPollInterval,
			BackoffFloor:      defaultBackoffFloor,
			BackoffCap:        defaultBackoffCap,
			BackoffMultiplier: defaultBackoffMultiplier,
		},
		Simulator: Simulator{
			Interval:       defaultSimulatorInterval,
			Producers:      defaultSimulatorProducers,
			Consumers:      defaultSimulatorConsumers,
			BufferCapacity: defaultSimulatorCapacity,
			TargetRate:     defaultSimulatorRate,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
