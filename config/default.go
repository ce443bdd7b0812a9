package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/playstate/playstate/color"
	"github.com/playstate/playstate/constant"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a registered configuration field.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName names the field's value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	default:
		return "unknown"
	}
}

// Parse converts raw into the field's value type.
func (f *Field) Parse(raw string) (any, error) {
	switch f.Value.(type) {
	case string:
		return raw, nil
	case int:
		return strconv.Atoi(raw)
	case float64:
		return strconv.ParseFloat(raw, 64)
	case bool:
		return strconv.ParseBool(raw)
	case time.Duration:
		return time.ParseDuration(raw)
	default:
		return nil, fmt.Errorf("unsupported type %s", f.TypeName())
	}
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerRate, 1.0, "Preferred playback rate.\nAny rate other than 1 starts playback immediately at that rate")
	register(key.PlayerMuted, false, "Start playback muted")
	register(key.PlayerTickInterval, 500*time.Millisecond, "How often the playback position is reported")
	register(key.MpvBinary, "mpv", "Path or name of the mpv executable")
	register(key.MpvSocketWait, 5*time.Second, "How long to wait for the mpv IPC socket to appear")
	register(key.AcquireAttempts, 3, "Number of attempts to open a stream before settling for a degraded engine")
	register(key.AcquireReadyWindow, 2*time.Second, "How long each attempt waits for the stream to become ready")
	register(key.AcquireInitialBackoff, time.Second, "Delay after the first failed attempt")
	register(key.AcquireMultiplier, 2.0, "Factor the delay grows by after each failed attempt")
	register(key.TelemetryAddr, "", "Address to serve Prometheus metrics on, e.g. :9090.\nEmpty disables the endpoint")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"key":    style.Fg(color.Purple),
	"label":  style.Fg(color.Blue),
	"value":  func(k string) any { return viper.Get(k) },
	"render": renderValue,
}).Parse(`{{ faint .Description }}
{{ label "key" }}      {{ key .Key }}
{{ label "env" }}      {{ .Env }}
{{ label "type" }}     {{ .TypeName }}
{{ label "current" }}  {{ render (value .Key) }}
{{ label "default" }}  {{ render .Value }}`))

// renderValue colors a value by type: booleans green or red, text yellow,
// durations cyan.
func renderValue(v any) string {
	switch value := v.(type) {
	case bool:
		return style.Fg(lo.Ternary(value, color.Green, color.Red))(strconv.FormatBool(value))
	case string:
		if value == "" {
			return style.Faint(`""`)
		}
		return style.Fg(color.Yellow)(value)
	case time.Duration:
		return style.Fg(color.Cyan)(value.String())
	default:
		return fmt.Sprint(value)
	}
}
