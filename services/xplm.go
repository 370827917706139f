//go:build !test

package services

import (
	"github.com/xairline/goplane/xplm/dataAccess"
	"github.com/xairline/goplane/xplm/planes"
	"github.com/xairline/goplane/xplm/processing"
	"github.com/xairline/xa-ffb/models"
)

// xplmSimulator is the Simulator backed by the X-Plane SDK.
type xplmSimulator struct{}

func NewXplmSimulator() Simulator {
	return xplmSimulator{}
}

func toDataRef(ref models.DatarefHandle) (dataAccess.DataRef, bool) {
	if ref == nil {
		return nil, false
	}
	dr, ok := ref.(dataAccess.DataRef)
	return dr, ok && dr != nil
}

func (xplmSimulator) FindDataref(path string) (models.DatarefHandle, bool) {
	dr, found := dataAccess.FindDataRef(path)
	if !found {
		return nil, false
	}
	return dr, true
}

func (xplmSimulator) GetInt(ref models.DatarefHandle) int {
	if dr, ok := toDataRef(ref); ok {
		return dataAccess.GetIntData(dr)
	}
	return 0
}

func (xplmSimulator) GetFloat(ref models.DatarefHandle) float32 {
	if dr, ok := toDataRef(ref); ok {
		return dataAccess.GetFloatData(dr)
	}
	return 0
}

func (xplmSimulator) GetDouble(ref models.DatarefHandle) float64 {
	if dr, ok := toDataRef(ref); ok {
		return dataAccess.GetDoubleData(dr)
	}
	return 0
}

func (xplmSimulator) GetFloatArray(ref models.DatarefHandle) []float32 {
	if dr, ok := toDataRef(ref); ok {
		return dataAccess.GetFloatArrayData(dr)
	}
	return nil
}

func (xplmSimulator) GetBytes(ref models.DatarefHandle) []byte {
	dr, ok := toDataRef(ref)
	if !ok {
		return nil
	}
	data := dataAccess.GetData(dr)
	res := make([]byte, 0, len(data))
	for _, element := range data {
		if element == 0 {
			break
		}
		res = append(res, byte(element))
	}
	return res
}

func (xplmSimulator) SetInt(ref models.DatarefHandle, value int) {
	if dr, ok := toDataRef(ref); ok {
		dataAccess.SetIntData(dr, value)
	}
}

func (xplmSimulator) SetFloat(ref models.DatarefHandle, value float32) {
	if dr, ok := toDataRef(ref); ok {
		dataAccess.SetFloatData(dr, value)
	}
}

func (xplmSimulator) ElapsedTime() float32 {
	return processing.GetElapsedTime()
}

func (xplmSimulator) AircraftModel() string {
	fileName, _ := planes.GetNthAircraftModel(0)
	return fileName
}
