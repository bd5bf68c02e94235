package reference

import (
	"github.com/smallbiznis/backoffice/internal/reference/repository"
	"github.com/smallbiznis/backoffice/internal/reference/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reference.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewCategoryService),
	fx.Provide(service.NewUnitService),
)
