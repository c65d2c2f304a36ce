package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/vm"
)

func run(t *testing.T, d demo) (string, error) {
	t.Helper()
	machine := vm.NewVirtualMachine()
	state := vm.NewExecutionState(machine, registry.NewRealm())
	result, err := machine.RunProgram(state, d.build())
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func TestOverflowLoopDemo(t *testing.T) {
	d, ok := findDemo("overflow-loop")
	require.True(t, ok)

	out, err := run(t, d)
	require.NoError(t, err)
	assert.Equal(t, "3000000000", out)
}

func TestTryCatchFinallyDemo(t *testing.T) {
	d, ok := findDemo("try-catch-finally")
	require.True(t, ok)

	out, err := run(t, d)
	require.NoError(t, err)
	assert.Equal(t, "11", out)
}

func TestPropertyICDemo(t *testing.T) {
	d, ok := findDemo("property-ic")
	require.True(t, ok)

	out, err := run(t, d)
	require.NoError(t, err)
	assert.Equal(t, "21", out)
}

func TestFindDemo_UnknownNameFails(t *testing.T) {
	_, ok := findDemo("does-not-exist")
	assert.False(t, ok)
}
