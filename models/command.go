package models

import "fmt"

type AxisGroup int

const (
	GroupJoystick AxisGroup = iota
	GroupPedals
	GroupCollective
	NumAxisGroups
)

func (g AxisGroup) String() string {
	switch g {
	case GroupJoystick:
		return "joystick"
	case GroupPedals:
		return "pedals"
	case GroupCollective:
		return "collective"
	}
	return fmt.Sprintf("AxisGroup(%d)", int(g))
}

func ParseAxisGroup(s string) (AxisGroup, bool) {
	switch s {
	case "joystick":
		return GroupJoystick, true
	case "pedals":
		return GroupPedals, true
	case "collective":
		return GroupCollective, true
	}
	return 0, false
}

type Axis string

const (
	AxisJoystickX  Axis = "jx"
	AxisJoystickY  Axis = "jy"
	AxisPedalsX    Axis = "px"
	AxisCollective Axis = "cy"
)

var Axes = []Axis{AxisJoystickX, AxisJoystickY, AxisPedalsX, AxisCollective}

// Group returns the axis group an axis belongs to.
func (a Axis) Group() AxisGroup {
	switch a {
	case AxisPedalsX:
		return GroupPedals
	case AxisCollective:
		return GroupCollective
	}
	return GroupJoystick
}

// Limits returns the accepted value range. The collective is a ratio, the
// stick and pedals are centred.
func (a Axis) Limits() (float32, float32) {
	if a == AxisCollective {
		return 0, 1
	}
	return -1, 1
}

func ParseAxis(s string) (Axis, bool) {
	for _, a := range Axes {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Command is a decoded inbound frame: one of AxisCommand, OverrideCommand,
// SubscribeCommand or UnknownCommand.
type Command interface {
	isCommand()
}

type AxisCommand struct {
	Values map[Axis]float32
}

type OverrideCommand struct {
	Target  AxisGroup
	Enabled bool
}

type SubscribeCommand struct {
	Dataref          string
	Key              string
	Kind             ValueKind
	Precision        int
	ConversionFactor float64
}

// UnknownCommand is what any frame that fails to decode turns into.
type UnknownCommand struct {
	DataType string
	Reason   string
}

func (AxisCommand) isCommand()      {}
func (OverrideCommand) isCommand()  {}
func (SubscribeCommand) isCommand() {}
func (UnknownCommand) isCommand()   {}
