package redis

import (
	"context"
	"net"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", Config{Host: "cache", Port: 6380}.Addr())
}

func TestClient_StartFailsWhenUnreachable(t *testing.T) {
	// Reserve a port, then free it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c := NewClient(Config{Host: "127.0.0.1", Port: port}, ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {}))
	defer c.Close()

	assert.Equal(t, "redis", c.GetName())
	assert.Empty(t, c.DependsOn())

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
