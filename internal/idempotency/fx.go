package idempotency

import (
	"github.com/smallbiznis/collecta/internal/idempotency/repository"
	"github.com/smallbiznis/collecta/internal/idempotency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("idempotency.gate",
	fx.Provide(
		repository.Provide,
		service.NewGate,
	),
)
