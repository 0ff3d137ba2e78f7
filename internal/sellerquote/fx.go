package sellerquote

import (
	"github.com/smallbiznis/quoteflow/internal/sellerquote/repository"
	"github.com/smallbiznis/quoteflow/internal/sellerquote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sellerquote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
