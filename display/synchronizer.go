package display

import (
	"log"
	"time"

	"github.com/aurora-fx/skyburst/sim"
)

// overflowWarnInterval rate-limits the buffer overflow log line. A sustained
// finale can overflow every frame; one line per interval is enough signal.
const overflowWarnInterval = 5 * time.Second

// Synchronizer packs the live particle population into the byte layout the
// GPU storage buffer expects. The buffer is allocated once for the configured
// capacity and reused every frame; Pack never allocates.
type Synchronizer struct {
	capacity int
	buf      []byte
	record   GPUParticle
	lastWarn time.Time
}

// NewSynchronizer allocates the packing buffer for the given record capacity.
// Capacities below one are clamped to one.
//
// Parameters:
//   - capacity: the maximum number of GPU particle records
//
// Returns:
//   - *Synchronizer: the ready synchronizer
func NewSynchronizer(capacity int) *Synchronizer {
	if capacity < 1 {
		capacity = 1
	}
	return &Synchronizer{
		capacity: capacity,
		buf:      make([]byte, capacity*GPUParticleStride),
	}
}

// Capacity returns the fixed record capacity.
func (s *Synchronizer) Capacity() int {
	return s.capacity
}

// Pack flattens the live particles into the reused byte buffer and returns
// the packed slice plus the record count. Particles pack first, in the
// controller's iteration order, so on overflow the oldest fireworks keep
// their slots and the newest spawns drop. Trail points pack only after every
// live particle has a record. The returned slice aliases the internal buffer
// and is valid until the next Pack.
//
// Parameters:
//   - particles: the live population in controller iteration order
//
// Returns:
//   - []byte: the packed records, count*GPUParticleStride bytes
//   - int: the packed record count
func (s *Synchronizer) Pack(particles []*sim.Particle) ([]byte, int) {
	n := 0

	for _, p := range particles {
		if n == s.capacity {
			s.warnOverflow(len(particles))
			return s.buf[:n*GPUParticleStride], n
		}
		s.record.FromParticle(p)
		s.record.Marshal(s.buf[n*GPUParticleStride:])
		n++
	}

	for _, p := range particles {
		for _, tp := range p.Trail {
			if n == s.capacity {
				s.warnOverflow(len(particles))
				return s.buf[:n*GPUParticleStride], n
			}
			s.record.FromTrailPoint(p, tp)
			s.record.Marshal(s.buf[n*GPUParticleStride:])
			n++
		}
	}

	return s.buf[:n*GPUParticleStride], n
}

func (s *Synchronizer) warnOverflow(live int) {
	if time.Since(s.lastWarn) < overflowWarnInterval {
		return
	}
	s.lastWarn = time.Now()
	log.Printf("display: particle buffer full (%d records), dropping newest of %d live particles and their trails", s.capacity, live)
}
