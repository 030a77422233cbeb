package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/buyside/procure/internal/adapter/orderservice"
	"github.com/buyside/procure/internal/config"
	"github.com/buyside/procure/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newTokenProvider,
	NewNumberResolver,
	newSubmitter,
	NewNegotiation,
	newReversals,
)

type tokenParams struct {
	fx.In

	Credentials repository.CredentialRepository
	Client      orderservice.Client
	Config      *config.Config
	Logger      *slog.Logger
}

func newTokenProvider(p tokenParams) *TokenProvider {
	return NewTokenProvider(p.Credentials, p.Client, p.Config.TokenRefreshLeeway, p.Logger)
}

type submitterParams struct {
	fx.In

	Tokens           *TokenProvider
	Numbers          *NumberResolver
	Client           orderservice.Client
	Orders           repository.OrderRepository
	SupplierProducts repository.SupplierProductRepository
	Reversals        repository.ReversalRepository
	Config           *config.Config
	Logger           *slog.Logger
}

func newSubmitter(p submitterParams) *Submitter {
	return NewSubmitter(p.Tokens, p.Numbers, p.Client, p.Orders, p.SupplierProducts, p.Reversals, p.Config.NumberingAttempts, p.Logger)
}

type reversalsParams struct {
	fx.In

	Tokens *TokenProvider
	Client orderservice.Client
	Queue  repository.ReversalRepository
	Config *config.Config
	Logger *slog.Logger
}

func newReversals(p reversalsParams) *Reversals {
	return NewReversals(p.Tokens, p.Client, p.Queue, p.Config.ReversalAttempts, p.Logger)
}
