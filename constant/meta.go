// Package constant defines immutable application-level identifiers.
package constant

const (
	// App is the application identifier used for filesystem paths, env prefixes and CLI branding.
	App = "playstate"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is sent with update checks and forwarded to mpv for HTTP streams.
	UserAgent = App + "/" + Version
)

// Build metadata, set with -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
