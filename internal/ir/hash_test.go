package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioHashDeterminism(t *testing.T) {
	scenario := Object{
		"model": String("register"),
		"width": Int(8),
		"stimulus": Array{
			Object{"input": Int(0xAA), "expect": Int(0xAA)},
		},
	}

	h1, err := ScenarioHash(scenario)
	require.NoError(t, err)
	h2, err := ScenarioHash(scenario)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ScenarioHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestScenarioHashChangesWithContent(t *testing.T) {
	a := MustScenarioHash(Object{"model": String("register"), "width": Int(8)})
	b := MustScenarioHash(Object{"model": String("register"), "width": Int(16)})
	c := MustScenarioHash(Object{"model": String("wire"), "width": Int(8)})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDomainSeparation(t *testing.T) {
	payload := Array{Int(1)}
	checks, err := ChecksDigest(payload)
	require.NoError(t, err)

	canonical, err := Marshal(payload)
	require.NoError(t, err)
	assert.NotEqual(t, hashWithDomain(DomainScenario, canonical), checks,
		"same bytes under different domains must not collide")
}

func TestMustScenarioHashPanicsOnNull(t *testing.T) {
	assert.Panics(t, func() {
		MustScenarioHash(Object{"x": nil})
	})
}
