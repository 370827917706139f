package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/wire"
)

const (
	ktToMps    = 0.51444  // knots to meters per second
	radpsToRpm = 9.5493   // rad/sec to rev/min
	fpsToG     = 0.031081 // feet per second² to g
	noConvert  = 1.0
)

// formatFloat renders value*conversion in fixed-point notation. The product
// is taken in single precision so the text matches what the controller has
// always received. A product that is not finite renders as zero.
func formatFloat(value float32, precision int, conversion float64) string {
	precision = max(0, min(precision, models.MaxPrecision))
	v := float64(value * float32(conversion))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 32)
}

// formatDouble multiplies in double precision by the single precision
// factor, then renders the product as a float.
func formatDouble(value float64, precision int, conversion float64) string {
	return formatFloat(float32(value*float64(float32(conversion))), precision, noConvert)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}

func formatBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

// formatFloatArray joins the converted elements with '~'.
//
// With fixedSize > 0 at most fixedSize elements are kept, trailing zeros
// included: a stopped engine still reports 0 rpm. Without it, trailing
// elements that render as zero are trimmed, keeping at least one element.
func formatFloatArray(values []float32, conversion float64, fixedSize int, precision int) string {
	size := len(values)
	if fixedSize > 0 && fixedSize <= size {
		size = fixedSize
	}
	parts := make([]string, size)
	for i := 0; i < size; i++ {
		parts[i] = formatFloat(values[i], precision, conversion)
	}
	if fixedSize <= 0 {
		for len(parts) > 1 && isZeroRendering(parts[len(parts)-1]) {
			parts = parts[:len(parts)-1]
		}
	}
	return strings.Join(parts, wire.ArraySeparator)
}

// isZeroRendering reports whether s is a fixed-point zero such as "0.000"
// or "-0.00".
func isZeroRendering(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	return strings.Trim(s, "0.") == ""
}

// sanitizeValue replaces the wire separators in free text, such as the
// aircraft name, so the value cannot break the frame apart.
func sanitizeValue(s string) string {
	return strings.NewReplacer("=", "_", ";", "_", "~", "_").Replace(s)
}

// cString returns the text of a NUL-terminated byte buffer.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return strings.TrimSpace(string(b))
}
