package orderservice

import (
	"io"
	"log/slog"
	"testing"

	"github.com/buyside/procure/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{OrderServiceAddress: "http://example.com", CreateAttempts: 5, ReversalAttempts: 3}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := newClient(clientParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}
