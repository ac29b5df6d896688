package invoice

import (
	"github.com/smallbiznis/opsdesk/internal/invoice/render"
	"github.com/smallbiznis/opsdesk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.New),
)
