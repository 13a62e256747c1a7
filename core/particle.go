package core

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// Simulation volume is the cube [-Bounds, Bounds]^3; particles leaving it
// wrap around to the opposite face.
const Bounds = 10.0

const (
	maxSpeed   = 4.0  // velocity magnitude cap, units/sec
	turbulence = 1.5  // noise field acceleration scale
	noiseScale = 0.15 // world units -> noise field coordinates
)

type Particle struct {
	Pos mgl32.Vec3
	Vel mgl32.Vec3
	Age float32
}

// ParticleInstance is the GPU-visible record: 32 bytes, center+size in the
// first 16, color in the second 16. Must match the instance buffer layout
// declared by the renderer.
type ParticleInstance struct {
	Pos   [3]float32
	Size  float32
	Color [4]float32
}

// ParticleStore holds the fixed-size particle population. Capacity is set at
// creation and never changes; particles are identified by index and mutated
// in place. Stepping is fully deterministic for a given seed and dt sequence:
// randomness is spent only on the initial distribution, and the turbulence
// field is a pure function of position.
type ParticleStore struct {
	particles []Particle
	noise     *perlin.Perlin
	instances []ParticleInstance
}

func NewParticleStore(count int, seed int64) (*ParticleStore, error) {
	if count <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d: %w", count, ErrValidation)
	}

	s := &ParticleStore{
		particles: make([]Particle, count),
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		instances: make([]ParticleInstance, count),
	}

	rng := rand.New(rand.NewSource(seed))
	for i := range s.particles {
		p := &s.particles[i]
		p.Pos = mgl32.Vec3{
			uniform(rng, -1, 1),
			uniform(rng, -1, 1),
			uniform(rng, -1, 1),
		}
		p.Vel = mgl32.Vec3{
			uniform(rng, -0.5, 0.5),
			uniform(rng, -0.5, 0.5),
			uniform(rng, -0.5, 0.5),
		}
	}
	return s, nil
}

func uniform(rng *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*rng.Float32()
}

func (s *ParticleStore) Len() int {
	return len(s.particles)
}

func (s *ParticleStore) At(i int) Particle {
	return s.particles[i]
}

// Step advances every particle by dt seconds: the velocity picks up
// acceleration from the turbulence field and is capped at maxSpeed, the
// position integrates the new velocity and wraps into the simulation volume.
// Non-positive dt is a no-op.
func (s *ParticleStore) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for i := range s.particles {
		p := &s.particles[i]

		v := p.Vel.Add(s.fieldAt(p.Pos).Mul(turbulence * dt))
		if l := v.Len(); l > maxSpeed {
			v = v.Mul(maxSpeed / l)
		}

		pos := p.Pos.Add(v.Mul(dt))
		for k := 0; k < 3; k++ {
			pos[k] = wrap(pos[k])
		}

		p.Vel = v
		p.Pos = pos
		p.Age += dt
	}
}

// fieldAt samples three decorrelated channels of the noise field at a world
// position. The offsets keep the channels independent without extra noise
// instances.
func (s *ParticleStore) fieldAt(pos mgl32.Vec3) mgl32.Vec3 {
	x := float64(pos[0]) * noiseScale
	y := float64(pos[1]) * noiseScale
	z := float64(pos[2]) * noiseScale
	return mgl32.Vec3{
		float32(s.noise.Noise3D(x, y, z)),
		float32(s.noise.Noise3D(x+31.4, y+47.2, z+12.9)),
		float32(s.noise.Noise3D(x-17.8, y+88.1, z+60.3)),
	}
}

func wrap(v float32) float32 {
	const span = 2 * Bounds
	for v > Bounds {
		v -= span
	}
	for v < -Bounds {
		v += span
	}
	return v
}

// Instances packs the population into the GPU record layout: size from the
// particle index, hue from speed, alpha pulsing with age. The backing slice
// is reused across frames; the result is only valid until the next call.
func (s *ParticleStore) Instances() []ParticleInstance {
	for i := range s.particles {
		p := &s.particles[i]
		inst := &s.instances[i]

		inst.Pos = [3]float32{p.Pos[0], p.Pos[1], p.Pos[2]}
		inst.Size = 0.06 + 0.015*float32(i%5)

		// Cool-to-warm ramp on speed.
		t := p.Vel.Len() / maxSpeed
		inst.Color = [4]float32{
			0.2 + 0.8*t,
			0.4 + 0.1*t,
			1.0 - 0.8*t,
			0.9 * agePulse(p.Age, i),
		}
	}
	return s.instances
}

// agePulse is a slow brightness oscillation over a particle's age, phased by
// index so the population shimmers instead of blinking in unison. Stays in
// (0.5, 1].
func agePulse(age float32, i int) float32 {
	return 0.75 + 0.25*float32(math.Sin(2*float64(age)+float64(i)))
}
