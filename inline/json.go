package inline

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
	"github.com/samber/mo"
)

// Line is one JSON-lines record of the snapshot stream.
type Line struct {
	// Seq counts written records from 1.
	Seq int `json:"seq"`
	// At is when the snapshot was received.
	At time.Time `json:"at"`
	// Session identifies the engine that published the snapshot.
	Session string `json:"session"`
	// URL is the loaded source.
	URL string `json:"url,omitempty"`
	// State is the snapshot itself.
	State state.PlayerState `json:"state"`
	// IsPlaying is status Playing or a positive rate.
	IsPlaying bool `json:"isPlaying"`
	// Progress is position over duration in [0, 1].
	Progress float64 `json:"progress"`
}

func newLine(seq int, session, url string, s state.PlayerState) Line {
	return Line{
		Seq:       seq,
		At:        time.Now(),
		Session:   session,
		URL:       url,
		State:     s,
		IsPlaying: s.IsPlaying(),
		Progress:  s.NormalizedProgress(),
	}
}

func asJson(line Line) ([]byte, error) {
	data, err := json.Marshal(line)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

var (
	timeType   = reflect.TypeOf(mediatime.Time{})
	rangeType  = reflect.TypeOf(mo.Option[mediatime.Range]{})
	statusType = reflect.TypeOf(state.PlaybackStatus{})
	bufferType = reflect.TypeOf(state.BufferingState(0))
)

// Schema describes Line. Types with custom encodings are mapped to the
// shape they actually produce.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch strings.ToLower(name) {
		case "line", "range", "size":
			return filepath.Base(t.PkgPath()) + "." + name
		}
		return name
	}
	reflector.Mapper = func(t reflect.Type) *jsonschema.Schema {
		switch t {
		case timeType:
			return seconds()
		case rangeType:
			return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
				{
					Type:       "object",
					Properties: rangeProperties(),
					Required:   []string{"start", "duration"},
				},
				{Type: "null"},
			}}
		case statusType:
			return statusSchema()
		case bufferType:
			return &jsonschema.Schema{
				Type: "string",
				Enum: []any{
					state.BufferingUnknown.String(),
					state.Buffering.String(),
					state.BufferingReady.String(),
				},
			}
		}
		return nil
	}

	return reflector.Reflect(&Line{})
}

func seconds() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "seconds, null when invalid or indefinite",
		AnyOf: []*jsonschema.Schema{
			{Type: "number", Minimum: json.Number("0")},
			{Type: "null"},
		},
	}
}

func rangeProperties() *jsonschema.Properties {
	props := jsonschema.NewProperties()
	props.Set("start", seconds())
	props.Set("duration", seconds())
	return props
}

func statusSchema() *jsonschema.Schema {
	kinds := []any{}
	for k := state.KindIdle; k <= state.KindFailed; k++ {
		kinds = append(kinds, k.String())
	}

	props := jsonschema.NewProperties()
	props.Set("kind", &jsonschema.Schema{Type: "string", Enum: kinds})
	props.Set("message", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"kind"},
	}
}
