package parameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString("model=gat,qnet,simulations=150")
	assert.Equal(t, "gat", params["model"])
	assert.Equal(t, "", params["qnet"])
	assert.Equal(t, "150", params["simulations"])

	assert.Empty(t, NewFromConfigString(""))
}

func TestGetParamOrTypes(t *testing.T) {
	params := NewFromConfigString("n=7,ratio=0.25,verbose,name=alice,off=false")

	n, err := GetParamOr(params, "n", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	ratio, err := GetParamOr(params, "ratio", float64(0))
	require.NoError(t, err)
	assert.Equal(t, 0.25, ratio)

	verbose, err := GetParamOr(params, "verbose", false)
	require.NoError(t, err)
	assert.True(t, verbose, "a bare key reads as true")

	off, err := GetParamOr(params, "off", true)
	require.NoError(t, err)
	assert.False(t, off)

	name, err := GetParamOr(params, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	missing, err := GetParamOr(params, "missing", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, missing)
}

func TestGetParamOrErrors(t *testing.T) {
	params := NewFromConfigString("n=abc")
	_, err := GetParamOr(params, "n", 0)
	assert.Error(t, err)
}

func TestPopParamOrDeletes(t *testing.T) {
	params := NewFromConfigString("model=gnn")
	model, err := PopParamOr(params, "model", "gat")
	require.NoError(t, err)
	assert.Equal(t, "gnn", model)
	assert.NotContains(t, params, "model")
}

func TestCheckExhausted(t *testing.T) {
	params := NewFromConfigString("model=gat,typo=1")
	_, err := PopParamOr(params, "model", "")
	require.NoError(t, err)

	err = params.CheckExhausted()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo")

	_, err = PopParamOr(params, "typo", 0)
	require.NoError(t, err)
	assert.NoError(t, params.CheckExhausted())
}
