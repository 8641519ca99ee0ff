package reconciliation

import (
	"github.com/smallbiznis/collecta/internal/reconciliation/repository"
	"github.com/smallbiznis/collecta/internal/reconciliation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconciliation.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
