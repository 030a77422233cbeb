package orderservice

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/buyside/procure/internal/config"
)

// Module exposes the order service client implementation to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.OrderServiceAddress, p.Config.CreateAttempts, p.Config.ReversalAttempts, p.Logger)
}
