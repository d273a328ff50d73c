package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		client, err := NewClient("nats://127.0.0.1:1", "test")
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to NATS server")
	})
}

func TestIsConnected(t *testing.T) {
	var nilClient *Client
	assert.False(t, nilClient.IsConnected())
	assert.False(t, (&Client{}).IsConnected())
}

func TestCloseWithoutConnection(t *testing.T) {
	assert.NotPanics(t, func() {
		(&Client{}).Close()
	})
}
