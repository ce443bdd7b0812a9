// Package key defines the configuration identifiers shared by viper, flags and env bindings.
package key

// Player defaults - applied to every engine the CLI creates.
const (
	PlayerRate         = "player.rate"
	PlayerMuted        = "player.muted"
	PlayerTickInterval = "player.tick_interval"
)

// mpv transport.
const (
	MpvBinary     = "mpv.binary"
	MpvSocketWait = "mpv.socket_wait"
)

// Resilient acquisition policy.
const (
	AcquireAttempts       = "acquire.attempts"
	AcquireReadyWindow    = "acquire.ready_window"
	AcquireInitialBackoff = "acquire.initial_backoff"
	AcquireMultiplier     = "acquire.multiplier"
)

// Telemetry.
const (
	TelemetryAddr = "telemetry.addr"
)

// Iconography.
const (
	IconsVariant = "icons.variant"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI execution environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
