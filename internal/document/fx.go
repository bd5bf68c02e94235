package document

import (
	"github.com/smallbiznis/backoffice/internal/document/repository"
	"github.com/smallbiznis/backoffice/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewEngine),
	fx.Provide(service.NewInvoiceService),
	fx.Provide(service.NewQuotationService),
)
