package wire

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xairline/xa-ffb/models"
)

const (
	DataTypeAxis      = "AXIS"
	DataTypeOverride  = "OVERRIDE"
	DataTypeSubscribe = "SUBSCRIBE"

	// FieldSeparators must never appear inside a telemetry key or value.
	FieldSeparators = "=;~"
	// ArraySeparator joins the elements of an array value.
	ArraySeparator = "~"
)

var (
	ErrFieldSeparator = errors.New("field contains a separator character")
	ErrMalformedFrame = errors.New("malformed frame")
)

// EncodeSnapshot renders a snapshot as `key=value;key=value;...;`. Keys are
// written in lexical order. No escaping is done, see ValidateSnapshot.
func EncodeSnapshot(snap models.Snapshot) []byte {
	var buf bytes.Buffer
	buf.Grow(len(snap) * 16)
	for _, k := range snap.Keys() {
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(snap[k])
		buf.WriteByte(';')
	}
	return buf.Bytes()
}

// ValidateSnapshot checks that no key or value contains '=' or ';', and that
// no key contains '~'. Values may contain '~' only as the array separator,
// so every '~'-delimited element must be non-empty.
func ValidateSnapshot(snap models.Snapshot) error {
	for _, k := range snap.Keys() {
		if k == "" || strings.ContainsAny(k, FieldSeparators) {
			return fmt.Errorf("key %q: %w", k, ErrFieldSeparator)
		}
		v := snap[k]
		if strings.ContainsAny(v, "=;") {
			return fmt.Errorf("value of %s %q: %w", k, v, ErrFieldSeparator)
		}
		if strings.Contains(v, ArraySeparator) {
			for _, element := range strings.Split(v, ArraySeparator) {
				if element == "" {
					return fmt.Errorf("value of %s %q: empty array element: %w", k, v, ErrFieldSeparator)
				}
			}
		}
	}
	return nil
}

// DecodeTelemetry parses a frame produced by EncodeSnapshot.
func DecodeTelemetry(data []byte) (models.Snapshot, error) {
	snap := make(models.Snapshot)
	for _, pair := range strings.Split(string(data), ";") {
		if pair == "" {
			continue
		}
		k, v, found := strings.Cut(pair, "=")
		if !found || k == "" {
			return nil, fmt.Errorf("pair %q: %w", pair, ErrMalformedFrame)
		}
		snap[k] = v
	}
	return snap, nil
}

// DecodeCommand parses an inbound `DATATYPE:payload` datagram. It never
// fails: anything it cannot make sense of comes back as UnknownCommand.
func DecodeCommand(data []byte) models.Command {
	text := string(bytes.TrimRight(data, "\x00"))
	dataType, payload, found := strings.Cut(text, ":")
	if !found {
		return models.UnknownCommand{Reason: "missing data type"}
	}
	dataType = strings.TrimSpace(dataType)
	// the payload ends at the first line break
	if i := strings.IndexAny(payload, "\r\n"); i >= 0 {
		payload = payload[:i]
	}

	switch dataType {
	case DataTypeAxis:
		return decodeAxis(payload)
	case DataTypeOverride:
		return decodeOverride(payload)
	case DataTypeSubscribe:
		return decodeSubscribe(payload)
	}
	return models.UnknownCommand{DataType: dataType, Reason: "unknown data type"}
}

// decodeAxis skips every pair it cannot parse and keeps the rest.
func decodeAxis(payload string) models.Command {
	cmd := models.AxisCommand{Values: make(map[models.Axis]float32)}
	for _, pair := range strings.Split(payload, ",") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		axis, ok := models.ParseAxis(strings.TrimSpace(k))
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lo, hi := axis.Limits()
		cmd.Values[axis] = clamp(float32(f), lo, hi)
	}
	return cmd
}

func decodeOverride(payload string) models.Command {
	keyword, value, found := strings.Cut(payload, "=")
	if !found {
		return models.UnknownCommand{DataType: DataTypeOverride, Reason: "missing '='"}
	}
	group, ok := models.ParseAxisGroup(strings.TrimSpace(keyword))
	if !ok {
		return models.UnknownCommand{DataType: DataTypeOverride, Reason: fmt.Sprintf("unknown keyword %q", keyword)}
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return models.UnknownCommand{DataType: DataTypeOverride, Reason: fmt.Sprintf("invalid boolean %q", value)}
	}
	return models.OverrideCommand{Target: group, Enabled: enabled}
}

func decodeSubscribe(payload string) models.Command {
	params := make(map[string]string)
	for _, pair := range strings.Split(payload, ",") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		params[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	dataref, typ, tag := params["dataref"], params["type"], params["tag"]
	if dataref == "" || typ == "" || tag == "" {
		return models.UnknownCommand{DataType: DataTypeSubscribe, Reason: "missing dataref, type or tag"}
	}
	if strings.ContainsAny(tag, FieldSeparators) {
		return models.UnknownCommand{DataType: DataTypeSubscribe, Reason: fmt.Sprintf("invalid tag %q", tag)}
	}
	kind, ok := models.ParseValueKind(typ)
	if !ok {
		return models.UnknownCommand{DataType: DataTypeSubscribe, Reason: fmt.Sprintf("unsupported type %q", typ)}
	}

	cmd := models.SubscribeCommand{
		Dataref:          dataref,
		Key:              tag,
		Kind:             kind,
		Precision:        models.DefaultPrecision,
		ConversionFactor: models.DefaultConversion,
	}
	// malformed optional fields keep their defaults
	if s, ok := params["precision"]; ok {
		if p, err := strconv.Atoi(s); err == nil && models.ValidPrecision(p) {
			cmd.Precision = p
		}
	}
	if s, ok := params["conversion"]; ok {
		if c, err := strconv.ParseFloat(s, 64); err == nil && models.ValidConversion(c) {
			cmd.ConversionFactor = c
		}
	}
	return cmd
}

// EncodeCommand is the controller side of DecodeCommand.
func EncodeCommand(cmd models.Command) ([]byte, error) {
	switch c := cmd.(type) {
	case models.AxisCommand:
		axes := make([]string, 0, len(c.Values))
		for axis := range c.Values {
			axes = append(axes, string(axis))
		}
		sort.Strings(axes)
		pairs := make([]string, len(axes))
		for i, axis := range axes {
			v := c.Values[models.Axis(axis)]
			pairs[i] = axis + "=" + strconv.FormatFloat(float64(v), 'f', -1, 32)
		}
		return []byte(DataTypeAxis + ":" + strings.Join(pairs, ",")), nil
	case models.OverrideCommand:
		return []byte(fmt.Sprintf("%s:%s=%t", DataTypeOverride, c.Target, c.Enabled)), nil
	case models.SubscribeCommand:
		return []byte(fmt.Sprintf("%s:dataref=%s,type=%s,tag=%s,precision=%d,conversion=%s",
			DataTypeSubscribe, c.Dataref, c.Kind, c.Key, c.Precision,
			strconv.FormatFloat(c.ConversionFactor, 'f', -1, 64))), nil
	}
	return nil, fmt.Errorf("%T: %w", cmd, ErrMalformedFrame)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
