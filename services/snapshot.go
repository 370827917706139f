package services

import (
	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"github.com/xairline/xa-ffb/utils/wire"
)

// Frame is the result of one snapshot build.
type Frame struct {
	Snapshot models.Snapshot
	Paused   bool
	Aircraft string
}

type SnapshotBuilder interface {
	// Build reads the simulator and returns a complete snapshot. overrides
	// holds the current state of each axis group for the *Ovrd keys.
	Build(overrides [models.NumAxisGroups]bool) Frame
}

type snapshotBuilder struct {
	Logger   logger.Logger
	sim      Simulator
	registry SourceRegistry
	drefs    datarefTable

	identity    models.DatarefHandle
	hasIdentity bool

	// per-aircraft cache, rebuilt when the aircraft name changes
	aircraft       string
	aircraftLoaded bool
	perAircraft    models.Snapshot
	numEngines     int
	numGear        int
}

// NewSnapshotBuilder resolves the built-in datarefs. It has to be called on
// the flight loop thread.
func NewSnapshotBuilder(sim Simulator, registry SourceRegistry, logger logger.Logger) SnapshotBuilder {
	b := &snapshotBuilder{
		Logger:   logger,
		sim:      sim,
		registry: registry,
		drefs:    resolveDatarefs(sim, logger, builtinDatarefs...),
		numGear:  3,
	}

	identityPath := drAircraftDescrip
	if ref, found := sim.FindDataref(drVersion); found {
		version := sim.GetInt(ref)
		logger.Infof("X-Plane internal version: %d", version)
		if xplaneMajorVersion(version) >= 12 {
			identityPath = drAircraftUIName
		}
	}
	b.identity, b.hasIdentity = sim.FindDataref(identityPath)
	if !b.hasIdentity {
		logger.Warningf("Dataref not found: %s, falling back to aircraft model name", identityPath)
	}
	return b
}

// xplaneMajorVersion maps the internal version number onto the major
// release, e.g. 120400 -> 12, 115501 -> 11.
func xplaneMajorVersion(internal int) int {
	return internal / 10000
}

func (b *snapshotBuilder) Build(overrides [models.NumAxisGroups]bool) Frame {
	name := b.aircraftName()
	if !b.aircraftLoaded || name != b.aircraft {
		b.loadAircraft(name)
	}

	sources := b.registry.Sources()
	snap := make(models.Snapshot, len(b.perAircraft)+len(sources)+48)
	for k, v := range b.perAircraft {
		snap[k] = v
	}
	for _, source := range sources {
		snap[source.Key] = b.formatSource(source)
	}

	d := b.drefs
	paused := d.readInt(drPaused)

	snap["src"] = "XPLANE"
	snap["N"] = name
	snap["STOP"] = formatInt(paused)
	snap["SimPaused"] = formatBool(paused == 1)
	snap["SimOnGround"] = formatInt(d.readInt(drOnGround))

	snap["T"] = formatFloat(b.sim.ElapsedTime(), 3, noConvert)
	snap["G"] = formatFloat(d.readFloat(drGNrml), 3, noConvert)
	snap["Gaxil"] = formatFloat(d.readFloat(drGAxil), 3, noConvert)
	snap["Gside"] = formatFloat(d.readFloat(drGSide), 3, noConvert)

	snap["TAS"] = formatFloat(d.readFloat(drTAS), 3, noConvert)
	snap["IAS"] = formatFloat(d.readFloat(drIAS), 3, ktToMps)
	snap["AirDensity"] = formatFloat(d.readFloat(drAirDensity), 3, noConvert)
	snap["DynPressure"] = formatFloat(d.readFloat(drDynPressure), 3, noConvert)
	snap["AoA"] = formatFloat(d.readFloat(drAoA), 3, noConvert)
	snap["SideSlip"] = formatFloat(d.readFloat(drSlip), 3, noConvert)

	snap["WeightOnWheels"] = formatFloatArray(d.readFloats(drWoW), noConvert, 3, 3)
	snap["EngRPM"] = formatFloatArray(d.readFloats(drEngRPM), radpsToRpm, b.numEngines, 2)
	snap["EngPCT"] = formatFloatArray(d.readFloats(drEngPCT), noConvert, b.numEngines, 3)
	snap["PropRPM"] = formatFloatArray(d.readFloats(drPropRPM), radpsToRpm, b.numEngines, 2)
	snap["PropThrust"] = formatFloatArray(d.readFloats(drPropThrust), noConvert, b.numEngines, 2)
	snap["Afterburner"] = formatFloatArray(d.readFloats(drAfterburner), noConvert, b.numEngines, 2)

	snap["RudderDefl"] = formatFloat(d.readFloat(drRudDeflL), 3, noConvert)
	snap["RudderDefl_l"] = formatFloat(d.readFloat(drRudDeflL), 3, noConvert)
	snap["RudderDefl_r"] = formatFloat(d.readFloat(drRudDeflR), 3, noConvert)

	snap["StickForcePitch"] = formatFloat(d.readFloat(drStickPitch), 3, noConvert)
	snap["StickForceRoll"] = formatFloat(d.readFloat(drStickRoll), 3, noConvert)
	snap["StickForceYaw"] = formatFloat(d.readFloat(drStickYaw), 3, noConvert)

	snap["AccBody"] = formatFloat(d.readFloat(drAccLocalX), 3, fpsToG) + wire.ArraySeparator +
		formatFloat(d.readFloat(drAccLocalY), 3, fpsToG) + wire.ArraySeparator +
		formatFloat(d.readFloat(drAccLocalZ), 3, fpsToG)
	snap["VelAcf"] = formatFloat(d.readFloat(drVelAcfX), 3, noConvert) + wire.ArraySeparator +
		formatFloat(d.readFloat(drVelAcfY), 3, noConvert) + wire.ArraySeparator +
		formatFloat(-d.readFloat(drVelAcfZ), 3, noConvert)
	snap["Flaps"] = formatFloat(d.readFloat(drFlaps), 3, noConvert)
	snap["Gear"] = formatFloatArray(d.readFloats(drGear), noConvert, 3, 3)

	snap["APMode"] = formatInt(d.readInt(drAPMode))
	snap["APServos"] = formatInt(d.readInt(drAPServos))
	snap["APYawServo"] = formatFloat(d.readFloat(drYawServo), 3, noConvert)
	snap["APPitchServo"] = formatFloat(d.readFloat(drPitchServo), 3, noConvert)
	snap["APRollServo"] = formatFloat(d.readFloat(drRollServo), 3, noConvert)
	snap["ElevTrimPct"] = formatFloat(d.readFloat(drElevTrim), 3, noConvert)
	snap["AileronTrimPct"] = formatFloat(d.readFloat(drAileronTrim), 3, noConvert)
	snap["RudderTrimPct"] = formatFloat(d.readFloat(drRudderTrim), 3, noConvert)

	snap["CanopyPos"] = formatFloat(d.readFloat(drCanopyPos), 3, noConvert)
	snap["SpeedbrakePos"] = formatFloat(d.readFloat(drSpeedbrakePos), 3, noConvert)

	snap["cOvrd"] = formatBool(overrides[models.GroupCollective])
	snap["jOvrd"] = formatBool(overrides[models.GroupJoystick])
	snap["pOvrd"] = formatBool(overrides[models.GroupPedals])

	return Frame{Snapshot: snap, Paused: paused == 1, Aircraft: name}
}

func (b *snapshotBuilder) formatSource(source models.TelemetrySource) string {
	switch source.Kind {
	case models.KindInt:
		return formatInt(b.sim.GetInt(source.Handle))
	case models.KindFloat:
		return formatFloat(b.sim.GetFloat(source.Handle), source.Precision, source.ConversionFactor)
	case models.KindDouble:
		return formatDouble(b.sim.GetDouble(source.Handle), source.Precision, source.ConversionFactor)
	}
	// Register only accepts the kinds above.
	b.Logger.Errorf("Unsupported value kind %v for %s", source.Kind, source.Key)
	return "0"
}

func (b *snapshotBuilder) aircraftName() string {
	var name string
	if b.hasIdentity {
		name = cString(b.sim.GetBytes(b.identity))
	}
	if name == "" {
		// the description is blank on some aircraft, use the model file name
		name = b.sim.AircraftModel()
	}
	return sanitizeValue(name)
}

// loadAircraft refreshes the values that only change with the aircraft.
func (b *snapshotBuilder) loadAircraft(name string) {
	b.Logger.Infof("Aircraft changed to: >%s< - getting new aircraft details...", name)
	d := b.drefs

	b.numEngines = d.readInt(drNumEngines)
	b.numGear = gearCount(d.readFloats(drGearXNode), d.readFloats(drGearYNode), d.readFloats(drGearZNode))

	b.perAircraft = models.Snapshot{
		"RetractableGear": formatInt(d.readInt(drRetractable)),
		"NumberEngines":   formatInt(b.numEngines),
		"NumberGear":      formatInt(b.numGear),
		"WarnAlpha":       formatFloat(d.readFloat(drWarnAlpha), 3, noConvert),
		"Vne":             formatFloat(d.readFloat(drVne), 3, ktToMps),
		"Vso":             formatFloat(d.readFloat(drVso), 3, ktToMps),
		"Vfe":             formatFloat(d.readFloat(drVfe), 3, ktToMps),
		"Vle":             formatFloat(d.readFloat(drVle), 3, ktToMps),
		"GearXNode":       formatFloatArray(d.readFloats(drGearXNode), noConvert, b.numGear, 3),
		"GearYNode":       formatFloatArray(d.readFloats(drGearYNode), noConvert, b.numGear, 3),
		"GearZNode":       formatFloatArray(d.readFloats(drGearZNode), noConvert, b.numGear, 3),
	}
	b.aircraft = name
	b.aircraftLoaded = true
	b.Logger.Infof("Aircraft details: %d engines, %d gear", b.numEngines, b.numGear)
}

// gearCount returns one past the highest gear slot that has a non-zero
// coordinate on any axis.
func gearCount(x, y, z []float32) int {
	count := 0
	for i := 0; i < gearTableCapacity; i++ {
		if nonZeroAt(x, i) || nonZeroAt(y, i) || nonZeroAt(z, i) {
			count = i + 1
		}
	}
	return count
}

func nonZeroAt(values []float32, i int) bool {
	return i < len(values) && values[i] != 0
}
