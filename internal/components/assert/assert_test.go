package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type thing struct{}

func TestNotNil(t *testing.T) {
	var ptr *thing
	var iface any = ptr

	require.Panics(t, func() { NotNil(nil) })
	require.Panics(t, func() { NotNil(iface) })
	require.NotPanics(t, func() { NotNil(&thing{}) })
	require.NotPanics(t, func() { NotNil(thing{}) })
	require.NotPanics(t, func() { NotNil(0) })
}

func TestNotEmptyStr(t *testing.T) {
	require.Panics(t, func() { NotEmptyStr("") })
	require.NotPanics(t, func() { NotEmptyStr("x") })
}
