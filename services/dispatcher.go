package services

import (
	"sync"

	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
)

// OverrideState is a copy of the shared override state.
type OverrideState struct {
	Overridden [models.NumAxisGroups]bool
	Axes       map[models.Axis]float32
}

func (s OverrideState) Joystick() bool   { return s.Overridden[models.GroupJoystick] }
func (s OverrideState) Pedals() bool     { return s.Overridden[models.GroupPedals] }
func (s OverrideState) Collective() bool { return s.Overridden[models.GroupCollective] }

// Dispatcher applies decoded commands to the override state.
//
// Apply runs on the receive goroutine and never touches the simulator:
// claiming or releasing a group and resolving a subscription are queued and
// carried out by Tick on the flight loop, before the axis write-through.
type Dispatcher interface {
	Apply(cmd models.Command)
	State() OverrideState
	Tick()
	// ReleaseAll hands every group back to the simulator immediately. Must be
	// called on the flight loop thread.
	ReleaseAll()
}

type groupChannels struct {
	overrides []string
	axes      map[models.Axis]string
}

var axisGroupChannels = [models.NumAxisGroups]groupChannels{
	models.GroupJoystick: {
		overrides: []string{drRollOvd, drPitchOvd},
		axes:      map[models.Axis]string{models.AxisJoystickX: drRollRatio, models.AxisJoystickY: drPitchRatio},
	},
	models.GroupPedals: {
		overrides: []string{drYawOvd},
		axes:      map[models.Axis]string{models.AxisPedalsX: drYawRatio},
	},
	models.GroupCollective: {
		overrides: []string{drCollectiveOvd},
		axes:      map[models.Axis]string{models.AxisCollective: drCollectiveRatio},
	},
}

type dispatcher struct {
	Logger   logger.Logger
	registry SourceRegistry
	drefs    datarefTable

	mu         sync.Mutex
	overridden [models.NumAxisGroups]bool
	axes       map[models.Axis]float32
	claims     map[models.AxisGroup]bool
	subscribes []models.SubscribeCommand
}

// NewDispatcher resolves the override and axis channels. It has to be called
// on the flight loop thread.
func NewDispatcher(sim Simulator, registry SourceRegistry, logger logger.Logger) Dispatcher {
	var paths []string
	for _, ch := range axisGroupChannels {
		paths = append(paths, ch.overrides...)
		for _, path := range ch.axes {
			paths = append(paths, path)
		}
	}

	axes := make(map[models.Axis]float32, len(models.Axes))
	for _, axis := range models.Axes {
		axes[axis] = 0
	}
	return &dispatcher{
		Logger:   logger,
		registry: registry,
		drefs:    resolveDatarefs(sim, logger, paths...),
		axes:     axes,
		claims:   make(map[models.AxisGroup]bool),
	}
}

func (d *dispatcher) Apply(cmd models.Command) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch c := cmd.(type) {
	case models.AxisCommand:
		for axis, v := range c.Values {
			d.axes[axis] = v
		}
	case models.OverrideCommand:
		if c.Target < 0 || c.Target >= models.NumAxisGroups {
			d.Logger.Warningf("Unknown axis group: %d", int(c.Target))
			return
		}
		d.Logger.Infof("Override %s: %t", c.Target, c.Enabled)
		d.overridden[c.Target] = c.Enabled
		d.claims[c.Target] = c.Enabled
	case models.SubscribeCommand:
		d.subscribes = append(d.subscribes, c)
	case models.UnknownCommand:
		d.Logger.Warningf("Unknown packet (%s): %s", c.DataType, c.Reason)
	}
}

func (d *dispatcher) State() OverrideState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

func (d *dispatcher) stateLocked() OverrideState {
	axes := make(map[models.Axis]float32, len(d.axes))
	for k, v := range d.axes {
		axes[k] = v
	}
	return OverrideState{Overridden: d.overridden, Axes: axes}
}

func (d *dispatcher) Tick() {
	d.mu.Lock()
	// take the queue, Apply keeps writing into a new one while this runs
	claims := d.claims
	d.claims = make(map[models.AxisGroup]bool)
	subscribes := d.subscribes
	d.subscribes = nil
	state := d.stateLocked()
	d.mu.Unlock()

	for group, enabled := range claims {
		d.setGroupOverride(group, enabled)
	}
	for _, s := range subscribes {
		// failures are logged by the registry
		_ = d.registry.Register(s.Dataref, s.Key, s.Kind, WithPrecision(s.Precision), WithConversion(s.ConversionFactor))
	}

	for group, ch := range axisGroupChannels {
		if !state.Overridden[group] {
			continue
		}
		for axis, path := range ch.axes {
			d.drefs.setFloat(path, state.Axes[axis])
		}
	}
}

func (d *dispatcher) ReleaseAll() {
	d.mu.Lock()
	var released []models.AxisGroup
	for group, on := range d.overridden {
		// a queued release has not reached the simulator yet either
		_, pending := d.claims[models.AxisGroup(group)]
		if on || pending {
			released = append(released, models.AxisGroup(group))
		}
		d.overridden[group] = false
	}
	d.claims = make(map[models.AxisGroup]bool)
	d.mu.Unlock()

	for _, group := range released {
		d.Logger.Infof("Releasing %s override", group)
		d.setGroupOverride(group, false)
	}
}

func (d *dispatcher) setGroupOverride(group models.AxisGroup, enabled bool) {
	for _, path := range axisGroupChannels[group].overrides {
		d.drefs.setInt(path, boolToInt(enabled))
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
