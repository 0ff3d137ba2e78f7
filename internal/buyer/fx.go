package buyer

import (
	"github.com/smallbiznis/quoteflow/internal/buyer/repository"
	"github.com/smallbiznis/quoteflow/internal/buyer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("buyer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
