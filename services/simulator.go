package services

//go:generate mockgen -destination=./__mocks__/simulator.go -package=mocks -source=simulator.go

import "github.com/xairline/xa-ffb/models"

// Simulator is the simulator's data access layer as seen by the bridge. All
// methods must be called from the simulator's flight loop thread.
//
// Reads through an unresolved (nil) handle return zero values and writes are
// dropped, the same way the SDK treats a null dataref.
type Simulator interface {
	FindDataref(path string) (models.DatarefHandle, bool)
	GetInt(ref models.DatarefHandle) int
	GetFloat(ref models.DatarefHandle) float32
	GetDouble(ref models.DatarefHandle) float64
	GetFloatArray(ref models.DatarefHandle) []float32
	GetBytes(ref models.DatarefHandle) []byte
	SetInt(ref models.DatarefHandle, value int)
	SetFloat(ref models.DatarefHandle, value float32)
	// ElapsedTime is the simulator's elapsed time in seconds.
	ElapsedTime() float32
	// AircraftModel is the file name of the user's aircraft model.
	AircraftModel() string
}
