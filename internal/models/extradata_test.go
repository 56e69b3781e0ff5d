package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtraDataSetLastWriteWins(t *testing.T) {
	var extra ExtraData
	extra.Set("note", "first")
	extra.Set("note", "second")

	v, ok := extra.Get("note")
	require.True(t, ok)
	require.Equal(t, "second", v)
	require.Equal(t, 1, extra.Len())
}

func TestExtraDataGetMissingKey(t *testing.T) {
	var extra ExtraData
	v, ok := extra.Get("absent")
	require.False(t, ok)
	require.Nil(t, v)
}

func TestExtraDataRemoveIdempotent(t *testing.T) {
	extra := ExtraData{"a": 1.0, "b": 2.0}
	extra.Remove("a")
	extra.Remove("a")
	require.Equal(t, 1, extra.Len())

	_, ok := extra.Get("a")
	require.False(t, ok)
}

func TestExtraDataScanNil(t *testing.T) {
	var extra ExtraData
	require.NoError(t, extra.Scan(nil))
	require.NotNil(t, extra)
	require.Equal(t, 0, extra.Len())
}

func TestExtraDataValueScanRoundTrip(t *testing.T) {
	extra := ExtraData{"reason": "deferred", "count": 2.0}
	raw, err := extra.Value()
	require.NoError(t, err)

	var decoded ExtraData
	require.NoError(t, decoded.Scan(raw))
	require.Equal(t, extra, decoded)
}
