package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleStore_CountAndInitialBounds(t *testing.T) {
	for _, count := range []int{1, 7, 200, 1000} {
		s, err := NewParticleStore(count, 42)
		require.NoError(t, err)
		require.Equal(t, count, s.Len())

		for i := 0; i < s.Len(); i++ {
			p := s.At(i)
			for k := 0; k < 3; k++ {
				if math.IsNaN(float64(p.Pos[k])) || math.IsInf(float64(p.Pos[k]), 0) {
					t.Fatalf("particle %d has non-finite position %v", i, p.Pos)
				}
				assert.LessOrEqual(t, p.Pos[k], float32(1))
				assert.GreaterOrEqual(t, p.Pos[k], float32(-1))
				assert.LessOrEqual(t, p.Vel[k], float32(0.5))
				assert.GreaterOrEqual(t, p.Vel[k], float32(-0.5))
			}
		}
	}
}

func TestParticleStore_RejectsNonPositiveCount(t *testing.T) {
	for _, count := range []int{0, -1, -200} {
		_, err := NewParticleStore(count, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation), "want ErrValidation, got %v", err)
	}
}

func TestParticleStore_StepIsDeterministic(t *testing.T) {
	dts := []float32{0.016, 0.016, 0.02, 0.008, 0.016, 0.033, 0.016}

	run := func() *ParticleStore {
		s, err := NewParticleStore(100, 1234)
		require.NoError(t, err)
		for round := 0; round < 10; round++ {
			for _, dt := range dts {
				s.Step(dt)
			}
		}
		return s
	}

	a := run()
	b := run()
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("particle %d diverged: %+v vs %+v", i, a.At(i), b.At(i))
		}
	}
}

func TestParticleStore_SeedChangesOutcome(t *testing.T) {
	a, err := NewParticleStore(10, 1)
	require.NoError(t, err)
	b, err := NewParticleStore(10, 2)
	require.NoError(t, err)

	assert.NotEqual(t, a.At(0).Pos, b.At(0).Pos)
}

func TestParticleStore_ZeroDtIsNoop(t *testing.T) {
	s, err := NewParticleStore(50, 7)
	require.NoError(t, err)
	s.Step(0.016)

	before := make([]Particle, s.Len())
	for i := range before {
		before[i] = s.At(i)
	}

	s.Step(0)
	s.Step(-0.5)

	for i := range before {
		if s.At(i) != before[i] {
			t.Fatalf("particle %d changed on non-positive dt", i)
		}
	}
}

func TestParticleStore_WrapKeepsParticlesInVolume(t *testing.T) {
	s, err := NewParticleStore(200, 99)
	require.NoError(t, err)

	// Large steps push particles across the boundary many times over.
	for i := 0; i < 500; i++ {
		s.Step(0.1)
	}

	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		for k := 0; k < 3; k++ {
			require.LessOrEqual(t, p.Pos[k], float32(Bounds))
			require.GreaterOrEqual(t, p.Pos[k], float32(-Bounds))
			require.False(t, math.IsNaN(float64(p.Vel[k])))
		}
		assert.LessOrEqual(t, p.Vel.Len(), float32(maxSpeed)*1.001)
	}
}

func TestParticleStore_AgeAccumulates(t *testing.T) {
	s, err := NewParticleStore(3, 5)
	require.NoError(t, err)

	s.Step(0.5)
	s.Step(0.25)

	assert.InDelta(t, 0.75, float64(s.At(0).Age), 1e-6)
}

func TestParticleStore_AgeDrivesAlphaPulse(t *testing.T) {
	s, err := NewParticleStore(10, 11)
	require.NoError(t, err)

	fresh := make([]float32, s.Len())
	for i, inst := range s.Instances() {
		fresh[i] = inst.Color[3]
	}

	// Advance well away from any oscillation period boundary.
	for i := 0; i < 30; i++ {
		s.Step(0.03)
	}

	aged := make([]float32, s.Len())
	changed := false
	for i, inst := range s.Instances() {
		aged[i] = inst.Color[3]
		assert.Greater(t, aged[i], float32(0))
		assert.LessOrEqual(t, aged[i], float32(0.9))
		if aged[i] != fresh[i] {
			changed = true
		}
	}
	assert.True(t, changed, "aging must modulate instance alpha")

	// Same age and index always produce the same alpha.
	for i, inst := range s.Instances() {
		require.Equal(t, aged[i], inst.Color[3])
	}
}

func TestParticleStore_InstancesMatchLayoutExpectations(t *testing.T) {
	s, err := NewParticleStore(20, 11)
	require.NoError(t, err)
	s.Step(0.016)

	instances := s.Instances()
	require.Len(t, instances, s.Len())

	for i, inst := range instances {
		p := s.At(i)
		assert.Equal(t, [3]float32{p.Pos[0], p.Pos[1], p.Pos[2]}, inst.Pos)
		assert.Greater(t, inst.Size, float32(0))
		for _, c := range inst.Color {
			assert.GreaterOrEqual(t, c, float32(0))
			assert.LessOrEqual(t, c, float32(1))
		}
	}
}
