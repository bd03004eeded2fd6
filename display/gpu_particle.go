// package display owns everything between the simulation and the GPU: the
// fixed-layout particle records, the synchronizer that packs the live
// population into the storage buffer, and the render stage that drives the
// compute and draw pipelines.
package display

import (
	"encoding/binary"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/sim"
)

// GPUParticleStride is the byte size of one particle record in the storage
// buffer: 12 float32 lanes. The WGSL struct mirrors this layout exactly; the
// color vec4 requires 16-byte alignment, which offset 16 satisfies.
const GPUParticleStride = 48

// GPUParticle is one particle record as the shaders see it. The final lane is
// the layout's natural padding slot, repurposed to carry the sprite atlas
// slot so the stride stays at 48 bytes.
type GPUParticle struct {
	PosX, PosY             float32
	VelX, VelY             float32
	ColR, ColG, ColB, ColA float32
	Size                   float32
	Life                   float32
	MaxLife                float32
	SpriteSlot             float32
}

// FromParticle fills the record from a simulation particle. Hue, saturation
// and brightness resolve to sRGB here so the shaders only ever see RGBA.
// The life lane carries the particle's display alpha scaled into life units,
// so despawn fades and sparkle flicker survive the life/maxLife derivation
// the fragment shader performs.
//
// Parameters:
//   - p: the simulation particle to snapshot
func (g *GPUParticle) FromParticle(p *sim.Particle) {
	c := colorful.Hsv(p.Hue, p.Saturation, p.Brightness)

	maxLife := p.MaxLife
	if maxLife <= 0 {
		maxLife = 1 // rockets have no lifespan; keep the ratio at full alpha
	}

	g.PosX = float32(p.Pos.X)
	g.PosY = float32(p.Pos.Y)
	g.VelX = float32(p.Vel.X)
	g.VelY = float32(p.Vel.Y)
	g.ColR = float32(c.R)
	g.ColG = float32(c.G)
	g.ColB = float32(c.B)
	g.ColA = float32(common.Clamp(p.Alpha, 0, 1))
	g.Size = float32(p.Size)
	g.Life = float32(common.Clamp(p.Alpha, 0, 1) * maxLife)
	g.MaxLife = float32(maxLife)
	g.SpriteSlot = float32(p.SpriteSlot)
}

// FromTrailPoint fills the record from one trail entry of its owner. Trail
// points are static afterglow: no velocity, the plain circle sprite, and a
// unit lifespan carrying the faded alpha directly.
//
// Parameters:
//   - p: the particle owning the trail
//   - tp: the trail entry to snapshot
func (g *GPUParticle) FromTrailPoint(p *sim.Particle, tp sim.TrailPoint) {
	c := colorful.Hsv(p.Hue, p.Saturation, p.Brightness)

	alpha := float32(common.Clamp(tp.Alpha, 0, 1))

	g.PosX = float32(tp.Pos.X)
	g.PosY = float32(tp.Pos.Y)
	g.VelX = 0
	g.VelY = 0
	g.ColR = float32(c.R)
	g.ColG = float32(c.G)
	g.ColB = float32(c.B)
	g.ColA = alpha
	g.Size = float32(tp.Size)
	g.Life = alpha
	g.MaxLife = 1
	g.SpriteSlot = 0
}

// Marshal writes the record's 12 lanes into dst in little-endian order.
// dst must be at least GPUParticleStride bytes.
//
// Parameters:
//   - dst: the destination byte slice
func (g *GPUParticle) Marshal(dst []byte) {
	lanes := [12]float32{
		g.PosX, g.PosY,
		g.VelX, g.VelY,
		g.ColR, g.ColG, g.ColB, g.ColA,
		g.Size,
		g.Life,
		g.MaxLife,
		g.SpriteSlot,
	}
	for i, v := range lanes {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
