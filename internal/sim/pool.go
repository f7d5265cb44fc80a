package sim

import (
	"sync"

	"github.com/san-kum/particlesim/internal/particle"
)

// FramePool recycles particle buffer snapshots of a fixed size.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(particles int) *FramePool {
	size := particles * particle.Stride
	return &FramePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *FramePool) Get() []float64 {
	return p.pool.Get().([]float64)
}

func (p *FramePool) Put(buf []float64) {
	if len(buf) == p.size {
		clear(buf)
		p.pool.Put(buf)
	}
}

// Capture copies the current buffer of v into a pooled slice.
func (p *FramePool) Capture(v particle.View) []float64 {
	dst := p.Get()
	copy(dst, v.Raw())
	return dst
}
