package services

import (
	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
)

// Built-in datarefs read by the snapshot builder. Units in the comments are
// what X-Plane reports, before conversion.
const (
	drPaused        = "sim/time/paused"                       // int
	drOnGround      = "sim/flightmodel/failures/onground_all" // int
	drRetractable   = "sim/aircraft/gear/acf_gear_retract"    // int
	drFlaps         = "sim/cockpit2/controls/flap_system_deploy_ratio"
	drGear          = "sim/flightmodel2/gear/deploy_ratio"          // float[gear]
	drGAxil         = "sim/flightmodel/forces/g_axil"               // g
	drGNrml         = "sim/flightmodel/forces/g_nrml"               // g
	drGSide         = "sim/flightmodel/forces/g_side"               // g
	drAccLocalX     = "sim/flightmodel/position/local_ax"           // m/s²
	drAccLocalY     = "sim/flightmodel/position/local_ay"           // m/s²
	drAccLocalZ     = "sim/flightmodel/position/local_az"           // m/s²
	drVelAcfX       = "sim/flightmodel/forces/vx_acf_axis"          // m/s
	drVelAcfY       = "sim/flightmodel/forces/vy_acf_axis"          // m/s
	drVelAcfZ       = "sim/flightmodel/forces/vz_acf_axis"          // m/s
	drTAS           = "sim/flightmodel/position/true_airspeed"      // m/s
	drIAS           = "sim/flightmodel/position/indicated_airspeed" // kias
	drAirDensity    = "sim/weather/rho"                             // kg/m³
	drDynPressure   = "sim/flightmodel/misc/Qstatic"                // psf
	drPropThrust    = "sim/flightmodel/engine/POINT_thrust"         // N, float[16]
	drAoA           = "sim/flightmodel/position/alpha"              // deg
	drWarnAlpha     = "sim/aircraft/overflow/acf_stall_warn_alpha"  // deg
	drSlip          = "sim/flightmodel/position/beta"               // deg
	drWoW           = "sim/flightmodel2/gear/tire_vertical_deflection_mtr"
	drNumEngines    = "sim/aircraft/engine/acf_num_engines"
	drEngRPM        = "sim/flightmodel/engine/ENGN_tacrad" // rad/s, float[16]
	drEngPCT        = "sim/flightmodel/engine/ENGN_N1_"    // percent, float[16]
	drAfterburner   = "sim/flightmodel2/engines/afterburner_ratio"
	drPropRPM       = "sim/flightmodel/engine/POINT_tacrad" // rad/s, float[16]
	drRudDeflL      = "sim/flightmodel/controls/ldruddef"   // deg
	drRudDeflR      = "sim/flightmodel/controls/rdruddef"   // deg
	drVne           = "sim/aircraft/view/acf_Vne"           // kias
	drVso           = "sim/aircraft/view/acf_Vso"           // kias
	drVfe           = "sim/aircraft/view/acf_Vfe"           // kias
	drVle           = "sim/aircraft/overflow/acf_Vle"       // kias
	drElevTrim      = "sim/flightmodel2/controls/elevator_trim"
	drAileronTrim   = "sim/flightmodel2/controls/aileron_trim"
	drRudderTrim    = "sim/flightmodel2/controls/rudder_trim"
	drAPMode        = "sim/cockpit/autopilot/autopilot_mode"
	drAPServos      = "sim/cockpit2/autopilot/servos_on"
	drYawServo      = "sim/joystick/servo_heading_ratio"
	drPitchServo    = "sim/joystick/servo_pitch_ratio"
	drRollServo     = "sim/joystick/servo_roll_ratio"
	drCanopyPos     = "sim/flightmodel/controls/canopy_ratio"
	drSpeedbrakePos = "sim/flightmodel2/controls/speedbrake_ratio"
	drGearXNode     = "sim/aircraft/parts/acf_gear_xnodef"
	drGearYNode     = "sim/aircraft/parts/acf_gear_ynodef"
	drGearZNode     = "sim/aircraft/parts/acf_gear_znodef"
	drStickPitch    = "sim/flightmodel/misc/act_frc_ptch_lb"
	drStickRoll     = "sim/flightmodel/misc/act_frc_roll_lb"
	drStickYaw      = "sim/flightmodel/misc/act_frc_hdgn_lb"

	drVersion         = "sim/version/xplane_internal_version"
	drAircraftUIName  = "sim/aircraft/view/acf_ui_name" // X-Plane 12+
	drAircraftDescrip = "sim/aircraft/view/acf_descrip" // X-Plane 11 and older

	// Override flags and writable channels of the three axis groups.
	drCollectiveOvd   = "sim/operation/override/override_prop_pitch"
	drRollOvd         = "sim/operation/override/override_joystick_roll"
	drPitchOvd        = "sim/operation/override/override_joystick_pitch"
	drYawOvd          = "sim/operation/override/override_joystick_heading"
	drCollectiveRatio = "sim/cockpit2/engine/actuators/prop_ratio_all"
	drRollRatio       = "sim/joystick/yoke_roll_ratio"
	drPitchRatio      = "sim/joystick/yoke_pitch_ratio"
	drYawRatio        = "sim/joystick/yoke_heading_ratio"
)

// gearTableCapacity is the number of slots scanned in the gear node tables.
const gearTableCapacity = 10

var builtinDatarefs = []string{
	drPaused, drOnGround, drRetractable, drFlaps, drGear,
	drGAxil, drGNrml, drGSide,
	drAccLocalX, drAccLocalY, drAccLocalZ,
	drVelAcfX, drVelAcfY, drVelAcfZ,
	drTAS, drIAS, drAirDensity, drDynPressure, drPropThrust,
	drAoA, drWarnAlpha, drSlip, drWoW,
	drNumEngines, drEngRPM, drEngPCT, drAfterburner, drPropRPM,
	drRudDeflL, drRudDeflR,
	drVne, drVso, drVfe, drVle,
	drElevTrim, drAileronTrim, drRudderTrim,
	drAPMode, drAPServos, drYawServo, drPitchServo, drRollServo,
	drCanopyPos, drSpeedbrakePos,
	drGearXNode, drGearYNode, drGearZNode,
	drStickPitch, drStickRoll, drStickYaw,
}

// datarefTable holds resolved handles by path. A path that did not resolve
// has no entry and reads as zero.
type datarefTable struct {
	sim  Simulator
	refs map[string]models.DatarefHandle
}

func resolveDatarefs(sim Simulator, logger logger.Logger, paths ...string) datarefTable {
	t := datarefTable{sim: sim, refs: make(map[string]models.DatarefHandle, len(paths))}
	for _, path := range paths {
		ref, found := sim.FindDataref(path)
		if !found {
			logger.Warningf("Dataref not found: %s", path)
			continue
		}
		t.refs[path] = ref
	}
	return t
}

func (t datarefTable) ref(path string) (models.DatarefHandle, bool) {
	ref, ok := t.refs[path]
	return ref, ok
}

func (t datarefTable) readInt(path string) int {
	if ref, ok := t.refs[path]; ok {
		return t.sim.GetInt(ref)
	}
	return 0
}

func (t datarefTable) readFloat(path string) float32 {
	if ref, ok := t.refs[path]; ok {
		return t.sim.GetFloat(ref)
	}
	return 0
}

func (t datarefTable) readFloats(path string) []float32 {
	if ref, ok := t.refs[path]; ok {
		return t.sim.GetFloatArray(ref)
	}
	return nil
}

func (t datarefTable) setInt(path string, value int) {
	if ref, ok := t.refs[path]; ok {
		t.sim.SetInt(ref, value)
	}
}

func (t datarefTable) setFloat(path string, value float32) {
	if ref, ok := t.refs[path]; ok {
		t.sim.SetFloat(ref, value)
	}
}
