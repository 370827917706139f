package services

import (
	"errors"
	"log"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/xairline/xa-ffb/models"
)

// MockLogger is a mock type for the Logger type
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Info(msg string) {
	log.Print(msg)
}

func (m *MockLogger) Debugf(format string, a ...interface{}) {
	log.Printf(format, a...)
}

func (m *MockLogger) Debug(msg string) {
	log.Print(msg)
}

func (m *MockLogger) Error(msg string) {
	log.Print(msg)
}

func (m *MockLogger) Warning(msg string) {
	log.Print(msg)
}

// Infof is a mock method for logger Infof
func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.Called(format, args)
}

// Errorf is a mock method for logger Errorf
func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.Called(format, args)
}

// Warningf is a mock method for logger Warningf
func (m *MockLogger) Warningf(format string, args ...interface{}) {
	m.Called(format, args)
}

func newMockLogger() *MockLogger {
	m := new(MockLogger)
	m.On("Infof", mock.Anything, mock.Anything).Return()
	m.On("Errorf", mock.Anything, mock.Anything).Return()
	m.On("Warningf", mock.Anything, mock.Anything).Return()
	return m
}

type fakeDataref struct {
	path   string
	i      int
	f      float32
	d      float64
	floats []float32
	bytes  []byte
}

type fakeWrite struct {
	path  string
	value float64
}

// fakeSimulator is an in-memory dataref store that records writes.
type fakeSimulator struct {
	mu       sync.Mutex
	datarefs map[string]*fakeDataref
	writes   []fakeWrite
	elapsed  float32
	model    string
}

func newFakeSimulator() *fakeSimulator {
	return &fakeSimulator{datarefs: make(map[string]*fakeDataref)}
}

func (s *fakeSimulator) dataref(path string) *fakeDataref {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr, ok := s.datarefs[path]
	if !ok {
		dr = &fakeDataref{path: path}
		s.datarefs[path] = dr
	}
	return dr
}

// define makes every path resolvable.
func (s *fakeSimulator) define(paths ...string) {
	for _, p := range paths {
		s.dataref(p)
	}
}

func (s *fakeSimulator) setInt(path string, v int) {
	dr := s.dataref(path)
	s.mu.Lock()
	dr.i = v
	s.mu.Unlock()
}

func (s *fakeSimulator) setFloat(path string, v float32) {
	dr := s.dataref(path)
	s.mu.Lock()
	dr.f = v
	s.mu.Unlock()
}

func (s *fakeSimulator) setDouble(path string, v float64) {
	dr := s.dataref(path)
	s.mu.Lock()
	dr.d = v
	s.mu.Unlock()
}

func (s *fakeSimulator) setFloats(path string, v ...float32) {
	dr := s.dataref(path)
	s.mu.Lock()
	dr.floats = v
	s.mu.Unlock()
}

func (s *fakeSimulator) setBytes(path string, v string) {
	dr := s.dataref(path)
	s.mu.Lock()
	dr.bytes = append([]byte(v), make([]byte, 8)...)
	s.mu.Unlock()
}

func (s *fakeSimulator) writesTo(path string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []float64
	for _, w := range s.writes {
		if w.path == path {
			res = append(res, w.value)
		}
	}
	return res
}

func (s *fakeSimulator) resetWrites() {
	s.mu.Lock()
	s.writes = nil
	s.mu.Unlock()
}

func (s *fakeSimulator) FindDataref(path string) (models.DatarefHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr, ok := s.datarefs[path]
	if !ok {
		return nil, false
	}
	return dr, true
}

func (s *fakeSimulator) get(ref models.DatarefHandle) *fakeDataref {
	dr, _ := ref.(*fakeDataref)
	return dr
}

func (s *fakeSimulator) GetInt(ref models.DatarefHandle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		return dr.i
	}
	return 0
}

func (s *fakeSimulator) GetFloat(ref models.DatarefHandle) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		return dr.f
	}
	return 0
}

func (s *fakeSimulator) GetDouble(ref models.DatarefHandle) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		return dr.d
	}
	return 0
}

func (s *fakeSimulator) GetFloatArray(ref models.DatarefHandle) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		return append([]float32(nil), dr.floats...)
	}
	return nil
}

func (s *fakeSimulator) GetBytes(ref models.DatarefHandle) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		return append([]byte(nil), dr.bytes...)
	}
	return nil
}

func (s *fakeSimulator) SetInt(ref models.DatarefHandle, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		dr.i = value
		s.writes = append(s.writes, fakeWrite{dr.path, float64(value)})
	}
}

func (s *fakeSimulator) SetFloat(ref models.DatarefHandle, value float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr := s.get(ref); dr != nil {
		dr.f = value
		s.writes = append(s.writes, fakeWrite{dr.path, float64(value)})
	}
}

func (s *fakeSimulator) ElapsedTime() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *fakeSimulator) AircraftModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// newXplaneFake returns a simulator where every dataref the bridge knows
// about resolves.
func newXplaneFake() *fakeSimulator {
	sim := newFakeSimulator()
	sim.define(builtinDatarefs...)
	for _, ch := range axisGroupChannels {
		sim.define(ch.overrides...)
		for _, path := range ch.axes {
			sim.define(path)
		}
	}
	sim.setInt(drVersion, 120400)
	sim.setBytes(drAircraftUIName, "Cessna 172 SP")
	sim.setInt(drNumEngines, 1)
	return sim
}

type fakeSender struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (f *fakeSender) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, append([]byte(nil), payload...))
	return nil
}

func (f *fakeSender) Close() error { return nil }

func (f *fakeSender) sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

var errSendFailed = errors.New("network unreachable")
