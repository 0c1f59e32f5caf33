package led

import (
	"sync"
)

// Burst is one recorded emission.
type Burst struct {
	Pin   string
	Bytes []byte
}

// Recorder keeps every emission in memory; useful for headless runs and
// tests. Err, when set, is returned by Emit and nothing is recorded.
type Recorder struct {
	mu     sync.Mutex
	bursts []Burst
	closed bool
	Err    error
}

func (r *Recorder) Emit(pin string, b []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.closed {
		return errClosed
	}
	r.bursts = append(r.bursts, Burst{Pin: pin, Bytes: append([]byte{}, b...)})
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Bursts returns a copy of everything emitted so far.
func (r *Recorder) Bursts() []Burst {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Burst{}, r.bursts...)
}

// Last returns the most recent burst, if any.
func (r *Recorder) Last() (Burst, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bursts) == 0 {
		return Burst{}, false
	}
	return r.bursts[len(r.bursts)-1], true
}
