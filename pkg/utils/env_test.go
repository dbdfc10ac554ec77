package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("STATUSDIM_TEST_STR", "")
	t.Setenv("STATUSDIM_TEST_INT", "-3")
	t.Setenv("STATUSDIM_TEST_BOOL", "maybe")

	assert.Equal(t, "fallback", Env("STATUSDIM_TEST_STR", "fallback"))
	assert.Equal(t, 30, EnvInt("STATUSDIM_TEST_INT", 30), "non-positive values are ignored")
	assert.True(t, EnvBool("STATUSDIM_TEST_BOOL", true))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STATUSDIM_TEST_STR", "value")
	t.Setenv("STATUSDIM_TEST_INT", "14")
	t.Setenv("STATUSDIM_TEST_BOOL", "Off")

	assert.Equal(t, "value", Env("STATUSDIM_TEST_STR", "fallback"))
	assert.Equal(t, 14, EnvInt("STATUSDIM_TEST_INT", 30))
	assert.False(t, EnvBool("STATUSDIM_TEST_BOOL", true))
}

func TestLookupIntIsStrict(t *testing.T) {
	t.Setenv("STATUSDIM_TEST_INT", "")
	n, err := LookupInt("STATUSDIM_TEST_INT", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	t.Setenv("STATUSDIM_TEST_INT", "0")
	n, err = LookupInt("STATUSDIM_TEST_INT", 30)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	t.Setenv("STATUSDIM_TEST_INT", "3O")
	_, err = LookupInt("STATUSDIM_TEST_INT", 30)
	require.Error(t, err)
}
