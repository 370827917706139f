package models

import (
	"fmt"
	"math"
	"strings"
)

// DatarefHandle is the opaque reference handed out by the simulator's data
// access layer for a resolved dataref path.
type DatarefHandle interface{}

type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindDouble
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ValueKind) UnmarshalText(text []byte) error {
	kind, ok := ParseValueKind(string(text))
	if !ok {
		return fmt.Errorf("unsupported value kind %q", text)
	}
	*k = kind
	return nil
}

// ParseValueKind accepts the type names used on the wire and in the config
// file. Matching is case-insensitive.
func ParseValueKind(s string) (ValueKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "double":
		return KindDouble, true
	}
	return 0, false
}

const (
	DefaultPrecision  = 3
	DefaultConversion = 1.0
	// MaxPrecision keeps a single value, and with it the frame, small.
	MaxPrecision = 9
)

// ValidPrecision reports whether p decimal places can be rendered.
func ValidPrecision(p int) bool {
	return p >= 0 && p <= MaxPrecision
}

// ValidConversion reports whether c is a finite factor within single
// precision range. Values are converted in single precision.
func ValidConversion(c float64) bool {
	return !math.IsNaN(c) && !math.IsInf(c, 0) && math.Abs(c) <= math.MaxFloat32
}

// Dataref is a static subscription as written in the config file.
type Dataref struct {
	Name       string   `yaml:"tag"`
	DatarefStr string   `yaml:"dataref"`
	Type       string   `yaml:"type"`
	Precision  *int     `yaml:"precision,omitempty"`
	Conversion *float64 `yaml:"conversion,omitempty"`
}

// TelemetrySource is one registered channel of the outbound telemetry.
type TelemetrySource struct {
	Key              string        `json:"key"`
	Path             string        `json:"dataref"`
	Handle           DatarefHandle `json:"-"`
	Kind             ValueKind     `json:"type"`
	Precision        int           `json:"precision"`
	ConversionFactor float64       `json:"conversion"`
}
