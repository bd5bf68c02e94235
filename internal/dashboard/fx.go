package dashboard

import (
	"github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/dashboard/repository"
	"github.com/smallbiznis/backoffice/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(
		func(s *service.Service) domain.Service { return s },
		func(s *service.Service) domain.Invalidator { return s },
	),
)
