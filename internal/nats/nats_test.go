package nats

import (
	"context"
	"testing"

	natstest "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

// runJetStream starts an embedded JetStream server for the test and returns
// a connected client.
func runJetStream(t *testing.T) *Client {
	t.Helper()

	opts := natstest.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	opts.JetStreamMaxStore = 64 << 30
	opts.JetStreamMaxMemory = 64 << 20

	srv := natstest.RunServer(&opts)
	t.Cleanup(srv.Shutdown)

	client, err := Connect(context.Background(), Config{URL: srv.ClientURL()}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}
