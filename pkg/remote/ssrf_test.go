package remote

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSRFStrictRejectsLoopback(t *testing.T) {
	g := newSSRFGuard(SSRFStrict)
	err := g.checkHost(context.Background(), "127.0.0.1")
	require.Error(t, err)
}

func TestSSRFStrictRejectsPrivateRange(t *testing.T) {
	g := newSSRFGuard(SSRFStrict)
	err := g.checkHost(context.Background(), "10.0.0.5")
	require.Error(t, err)
}

func TestSSRFModerateAllowsPrivateRangeButRejectsLoopback(t *testing.T) {
	g := newSSRFGuard(SSRFModerate)
	assert.NoError(t, g.checkHost(context.Background(), "192.168.1.10"))
	assert.Error(t, g.checkHost(context.Background(), "127.0.0.1"))
}

func TestSSRFRejectsCloudMetadataRegardlessOfMode(t *testing.T) {
	for _, mode := range []SSRFMode{SSRFStrict, SSRFModerate} {
		g := newSSRFGuard(mode)
		err := g.checkHost(context.Background(), "169.254.169.254")
		require.Error(t, err, "mode %s should reject metadata IP", mode)
	}
}

func TestSSRFOffAllowsEverything(t *testing.T) {
	g := newSSRFGuard(SSRFOff)
	assert.NoError(t, g.checkHost(context.Background(), "127.0.0.1"))
	assert.NoError(t, g.checkHost(context.Background(), "169.254.169.254"))
}

func TestSSRFAllowsPublicAddressInStrictMode(t *testing.T) {
	g := newSSRFGuard(SSRFStrict)
	assert.NoError(t, g.checkHost(context.Background(), "93.184.216.34"))
}

func TestSSRFDialContextRevalidatesAtConnectTime(t *testing.T) {
	g := newSSRFGuard(SSRFStrict)
	dial := g.dialContext(&net.Dialer{})
	_, err := dial(context.Background(), "tcp", "127.0.0.1:80")
	require.Error(t, err)
}
