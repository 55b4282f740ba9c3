package driver

import "sync"

// PinWrite is one recorded level change on a SimBackend.
type PinWrite struct {
	Pin  Pin
	High bool
}

// SimBackend keeps pin levels and duties in memory. It is used for desktop
// runs and tests.
type SimBackend struct {
	mu      sync.Mutex
	levels  map[Pin]bool
	duties  map[Pin]uint32
	outputs map[Pin]bool
	pwm     map[Pin]int
	writes  []PinWrite
	closed  bool
}

// NewSimBackend returns a backend with every pin low and no PWM configured.
func NewSimBackend() *SimBackend {
	return &SimBackend{
		levels:  make(map[Pin]bool),
		duties:  make(map[Pin]uint32),
		outputs: make(map[Pin]bool),
		pwm:     make(map[Pin]int),
	}
}

func (s *SimBackend) ConfigureOutput(pin Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[pin] = true
	s.levels[pin] = false
}

// ConfigurePWM accepts any pin.
func (s *SimBackend) ConfigurePWM(pin Pin, frequencyHz int, _ uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pwm[pin] = frequencyHz
	s.duties[pin] = 0
	return nil
}

func (s *SimBackend) Write(pin Pin, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[pin] = high
	s.writes = append(s.writes, PinWrite{Pin: pin, High: high})
}

func (s *SimBackend) SetDuty(pin Pin, duty uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duties[pin] = duty
}

func (s *SimBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Level reports the current level of pin.
func (s *SimBackend) Level(pin Pin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin]
}

// Duty reports the current duty of a PWM pin.
func (s *SimBackend) Duty(pin Pin) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duties[pin]
}

// Writes returns a copy of every level write since the last ResetWrites.
func (s *SimBackend) Writes() []PinWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PinWrite, len(s.writes))
	copy(out, s.writes)
	return out
}

// ResetWrites clears the recorded level writes.
func (s *SimBackend) ResetWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
}

// Closed reports whether Close was called.
func (s *SimBackend) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
