package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/backoffice/internal/auth"
	authdomain "github.com/smallbiznis/backoffice/internal/auth/domain"
	"github.com/smallbiznis/backoffice/internal/cache"
	"github.com/smallbiznis/backoffice/internal/config"
	"github.com/smallbiznis/backoffice/internal/customer"
	customerdomain "github.com/smallbiznis/backoffice/internal/customer/domain"
	"github.com/smallbiznis/backoffice/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/document"
	documentdomain "github.com/smallbiznis/backoffice/internal/document/domain"
	"github.com/smallbiznis/backoffice/internal/inventory"
	inventorydomain "github.com/smallbiznis/backoffice/internal/inventory/domain"
	"github.com/smallbiznis/backoffice/internal/observability"
	obsmiddleware "github.com/smallbiznis/backoffice/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/backoffice/internal/observability/metrics"
	obstracing "github.com/smallbiznis/backoffice/internal/observability/tracing"
	"github.com/smallbiznis/backoffice/internal/product"
	productdomain "github.com/smallbiznis/backoffice/internal/product/domain"
	"github.com/smallbiznis/backoffice/internal/profile"
	profiledomain "github.com/smallbiznis/backoffice/internal/profile/domain"
	"github.com/smallbiznis/backoffice/internal/ratelimit"
	"github.com/smallbiznis/backoffice/internal/reference"
	referencedomain "github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	cache.Module,
	usageguard.Module,
	inventory.Module,
	dashboard.Module,
	customer.Module,
	product.Module,
	reference.Module,
	document.Module,
	profile.Module,
	auth.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	authsvc      authdomain.Service
	customerSvc  customerdomain.Service
	productSvc   productdomain.Service
	categorySvc  referencedomain.CategoryService
	unitSvc      referencedomain.UnitService
	invoiceSvc   documentdomain.InvoiceService
	quotationSvc documentdomain.QuotationService
	inventorySvc inventorydomain.Service
	dashboardSvc dashboarddomain.Service
	profileSvc   profiledomain.Service
	loginLimiter *ratelimit.LoginLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Authsvc      authdomain.Service
	CustomerSvc  customerdomain.Service
	ProductSvc   productdomain.Service
	CategorySvc  referencedomain.CategoryService
	UnitSvc      referencedomain.UnitService
	InvoiceSvc   documentdomain.InvoiceService
	QuotationSvc documentdomain.QuotationService
	InventorySvc inventorydomain.Service
	DashboardSvc dashboarddomain.Service
	ProfileSvc   profiledomain.Service
	LoginLimiter *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		authsvc:      p.Authsvc,
		customerSvc:  p.CustomerSvc,
		productSvc:   p.ProductSvc,
		categorySvc:  p.CategorySvc,
		unitSvc:      p.UnitSvc,
		invoiceSvc:   p.InvoiceSvc,
		quotationSvc: p.QuotationSvc,
		inventorySvc: p.InventorySvc,
		dashboardSvc: p.DashboardSvc,
		profileSvc:   p.ProfileSvc,
		loginLimiter: p.LoginLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Auth --------
	api.POST("/auth/login", s.LoginRateLimit(), s.Login)
	api.POST("/auth/change-password", s.LoginRateLimit(), s.ChangePassword)

	// -------- Invoices --------
	invoices := s.invoiceHandlers()
	api.GET("/invoices", invoices.List)
	api.POST("/invoices", invoices.Create)
	api.GET("/invoices/:id", invoices.Get)
	api.PUT("/invoices/:id", invoices.Update)
	api.DELETE("/invoices/:id", invoices.Delete)
	api.PATCH("/invoices/:id/status", invoices.UpdateStatus)

	// -------- Quotations --------
	quotations := s.quotationHandlers()
	api.GET("/quotations", quotations.List)
	api.POST("/quotations", quotations.Create)
	api.GET("/quotations/:id", quotations.Get)
	api.PUT("/quotations/:id", quotations.Update)
	api.DELETE("/quotations/:id", quotations.Delete)
	api.PATCH("/quotations/:id/status", quotations.UpdateStatus)
	api.POST("/quotations/:id/convert", s.ConvertQuotation)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)
	api.GET("/customers/:id/usage", s.GetCustomerUsage)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PUT("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Categories --------
	api.GET("/categories", s.ListCategories)
	api.POST("/categories", s.CreateCategory)
	api.GET("/categories/:id", s.GetCategoryByID)
	api.PUT("/categories/:id", s.UpdateCategory)
	api.DELETE("/categories/:id", s.DeleteCategory)
	api.GET("/categories/:id/usage", s.GetCategoryUsage)

	// -------- Units --------
	api.GET("/units", s.ListUnits)
	api.POST("/units", s.CreateUnit)
	api.GET("/units/:id", s.GetUnitByID)
	api.PUT("/units/:id", s.UpdateUnit)
	api.DELETE("/units/:id", s.DeleteUnit)
	api.GET("/units/:id/usage", s.GetUnitUsage)

	// -------- Inventory --------
	api.GET("/inventory/transactions", s.ListInventoryTransactions)
	api.POST("/inventory/adjustments", s.CreateAdjustment)

	// -------- Dashboard --------
	api.GET("/dashboard/stats", s.GetDashboardStats)

	// -------- Profile --------
	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.UpdateProfile)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
