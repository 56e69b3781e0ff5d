package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVisibleTo(t *testing.T) {
	release := time.Date(2026, 6, 12, 8, 0, 0, 0, time.UTC)
	def := &SessionDefinition{
		Period: PeriodFinal,
		ClassVisibility: VisibilityMap{
			"class-1": &release,
			"class-2": nil,
		},
	}

	require.False(t, def.VisibleTo("class-1", release.Add(-time.Second)))
	require.True(t, def.VisibleTo("class-1", release))
	require.False(t, def.VisibleTo("class-2", release.Add(time.Hour)), "nil entry means not scheduled")
	require.False(t, def.VisibleTo("class-3", release.Add(time.Hour)), "unknown class is never visible")
}

func TestVisibilityMapScanRoundTrip(t *testing.T) {
	release := time.Date(2026, 6, 12, 8, 0, 0, 0, time.UTC)
	m := VisibilityMap{"class-1": &release, "class-2": nil}

	raw, err := m.Value()
	require.NoError(t, err)

	var decoded VisibilityMap
	require.NoError(t, decoded.Scan(raw))
	require.Len(t, decoded, 2)
	require.Nil(t, decoded["class-2"])
	require.True(t, decoded["class-1"].Equal(release))
}

func TestStepListScanNil(t *testing.T) {
	var steps StepList
	require.NoError(t, steps.Scan(nil))
	require.NotNil(t, steps)
	require.Empty(t, steps)
}
