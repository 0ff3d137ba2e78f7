package seller

import (
	"github.com/smallbiznis/quoteflow/internal/seller/repository"
	"github.com/smallbiznis/quoteflow/internal/seller/service"
	"go.uber.org/fx"
)

var Module = fx.Module("seller.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
