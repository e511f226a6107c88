package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIndices(t *testing.T) {
	f := syntheticField(t, 1970, 492)
	ref := testReference(t)

	ix, err := ComputeIndices(f, ref)
	require.NoError(t, err)
	require.NoError(t, ix.Validate())
	require.Equal(t, f.Time, ix.Time)

	t.Run("exact rotation identities", func(t *testing.T) {
		for i := range ix.Time {
			assert.InDelta(t, (ix.PC1[i]-ix.PC2[i])/math.Sqrt2, ix.E[i], 1e-9)
			assert.InDelta(t, (ix.PC1[i]+ix.PC2[i])/math.Sqrt2, ix.C[i], 1e-9)
		}
	})

	t.Run("round trip recovers components", func(t *testing.T) {
		for i := range ix.Time {
			assert.InDelta(t, ix.PC1[i], (ix.E[i]+ix.C[i])/math.Sqrt2, 1e-9)
			assert.InDelta(t, ix.PC2[i], (ix.C[i]-ix.E[i])/math.Sqrt2, 1e-9)
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		again, err := ComputeIndices(f, ref)
		require.NoError(t, err)
		assert.Equal(t, ix.E, again.E)
		assert.Equal(t, ix.C, again.C)
	})
}

func TestComputeIndices_ComputedAt(t *testing.T) {
	frozen := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	f := syntheticField(t, 1970, 492)
	ix, err := ComputeIndices(f, testReference(t))
	require.NoError(t, err)
	assert.Equal(t, frozen, ix.ComputedAt)
}

func TestComputeIndices_ReferenceOutOfRange(t *testing.T) {
	f := syntheticField(t, 2000, 36)
	_, err := ComputeIndices(f, testReference(t))
	require.ErrorIs(t, err, ErrReferenceOutOfRange)
}

func TestIndicesValidate_LengthMismatch(t *testing.T) {
	f := syntheticField(t, 1970, 492)
	ix, err := ComputeIndices(f, testReference(t))
	require.NoError(t, err)

	ix.C = ix.C[:len(ix.C)-1]
	require.ErrorIs(t, ix.Validate(), ErrInvalidField)
}
