package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCode(t *testing.T) {
	assert.Equal(t, "KL", StateCode("Kerala"))
	assert.Equal(t, "KL", StateCode("kerala"))
	assert.Equal(t, "UP", StateCode("Uttar Pradesh"))
	// Unknown states get a synthetic code so aggregation never stalls on
	// fixture data.
	assert.Equal(t, "TE", StateCode("Testland"))
}

func TestStatePopulation(t *testing.T) {
	assert.Equal(t, int64(35_800_000), StatePopulation("Kerala"))
	assert.Equal(t, int64(10_000_000), StatePopulation("Testland"))
}

func TestStateNameForCode(t *testing.T) {
	name, ok := StateNameForCode("kl")
	assert.True(t, ok)
	assert.Equal(t, "Kerala", name)

	name, ok = StateNameForCode(" MH ")
	assert.True(t, ok)
	assert.Equal(t, "Maharashtra", name)

	_, ok = StateNameForCode("ZZ")
	assert.False(t, ok)
}

func TestGetCacheKey(t *testing.T) {
	assert.Equal(t, "trends:Kerala:30", GetCacheKey("trends", "Kerala", 30))
	assert.Equal(t, "overview", GetCacheKey("overview"))
}
