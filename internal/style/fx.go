package style

import (
	"github.com/smallbiznis/quoteflow/internal/style/repository"
	"github.com/smallbiznis/quoteflow/internal/style/service"
	"go.uber.org/fx"
)

var Module = fx.Module("style.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
