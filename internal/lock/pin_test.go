package locking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPinCount_IncDec(t *testing.T) {
	p := NewPinCount()
	require.Equal(t, int32(0), p.Get())

	p.Inc()
	p.Inc()
	require.Equal(t, int32(2), p.Get())

	require.False(t, p.Dec())
	require.Equal(t, int32(1), p.Get())

	require.True(t, p.Dec())
	require.Equal(t, int32(0), p.Get())
}

func TestPinCount_DecBelowZeroPanics(t *testing.T) {
	p := NewPinCount()
	require.Panics(t, func() { p.Dec() })
}
