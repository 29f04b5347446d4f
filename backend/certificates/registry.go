package certificates

import (
	"sync"
	"time"
)

// SendRegistry tracks which batches have a certificate send in flight.
// State is keyed by batch identifier, never a single scalar, so concurrent
// sends for different batches stay independent.
type SendRegistry struct {
	mu       sync.Mutex
	inFlight map[uint]time.Time
}

func NewSendRegistry() *SendRegistry {
	return &SendRegistry{inFlight: make(map[uint]time.Time)}
}

// Begin marks a send as in flight for the batch. It returns false if one is
// already running for that batch.
func (r *SendRegistry) Begin(batchID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[batchID]; busy {
		return false
	}
	r.inFlight[batchID] = time.Now()
	return true
}

// End clears the in-flight mark for the batch.
func (r *SendRegistry) End(batchID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, batchID)
}

// Sending reports whether a send is in flight for the batch.
func (r *SendRegistry) Sending(batchID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.inFlight[batchID]
	return busy
}
