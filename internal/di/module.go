package di

import (
	"go.uber.org/fx"

	"github.com/buyside/procure/internal/adapter/orderservice"
	"github.com/buyside/procure/internal/app"
	"github.com/buyside/procure/internal/config"
	"github.com/buyside/procure/internal/logger"
	"github.com/buyside/procure/internal/server/http/handlers"
	"github.com/buyside/procure/internal/server/http/router"
	"github.com/buyside/procure/internal/storage/postgres"
	"github.com/buyside/procure/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		orderservice.Module,
		usecase.Module,
		fx.Provide(func(facade *app.ProcurementFacade) handlers.ProcurementFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
