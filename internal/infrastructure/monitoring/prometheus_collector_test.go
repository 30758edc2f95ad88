package monitoring

import (
	"testing"

	"playhud/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseSeconds(t *testing.T) {
	assert.Equal(t, 10.0, parseSeconds("10.0s"))
	assert.Equal(t, 0.5, parseSeconds("0.5s"))
	assert.Equal(t, 0.0, parseSeconds("garbage"))
}

func TestParseHeight(t *testing.T) {
	assert.Equal(t, 1080.0, parseHeight("1920x1080"))
	assert.Equal(t, 0.0, parseHeight("0x0"))
	assert.Equal(t, 0.0, parseHeight("malformed"))
}

func TestNetworkTierValue(t *testing.T) {
	assert.Equal(t, 3.0, networkTierValue(domain.NetworkGood))
	assert.Equal(t, 2.0, networkTierValue(domain.NetworkFair))
	assert.Equal(t, 1.0, networkTierValue(domain.NetworkPoor))
	assert.Equal(t, 0.0, networkTierValue(domain.NetworkUnknown))
}
