package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/opsdesk/internal/auth"
	authdomain "github.com/smallbiznis/opsdesk/internal/auth/domain"
	"github.com/smallbiznis/opsdesk/internal/auth/session"
	"github.com/smallbiznis/opsdesk/internal/billing"
	billingdomain "github.com/smallbiznis/opsdesk/internal/billing/domain"
	"github.com/smallbiznis/opsdesk/internal/catalog"
	catalogdomain "github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/config"
	"github.com/smallbiznis/opsdesk/internal/customer"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/opsdesk/internal/dashboard/domain"
	"github.com/smallbiznis/opsdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/opsdesk/internal/invoice/domain"
	"github.com/smallbiznis/opsdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/opsdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/opsdesk/internal/observability/metrics"
	"github.com/smallbiznis/opsdesk/internal/order"
	orderdomain "github.com/smallbiznis/opsdesk/internal/order/domain"
	"github.com/smallbiznis/opsdesk/internal/providers"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	customer.Module,
	catalog.Module,
	order.Module,
	billing.Module,
	dashboard.Module,
	providers.Module,
	invoice.Module,
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
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
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

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	sessions     *session.Manager
	authsvc      authdomain.Service
	customerSvc  customerdomain.Service
	catalogSvc   catalogdomain.CatalogService
	orderSvc     orderdomain.Service
	billingSvc   billingdomain.Service
	dashboardSvc dashboarddomain.Service
	invoiceSvc   invoicedomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	Sessions     *session.Manager
	Authsvc      authdomain.Service
	CustomerSvc  customerdomain.Service
	CatalogSvc   catalogdomain.CatalogService
	OrderSvc     orderdomain.Service
	BillingSvc   billingdomain.Service
	DashboardSvc dashboarddomain.Service
	InvoiceSvc   invoicedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		sessions:     p.Sessions,
		authsvc:      p.Authsvc,
		customerSvc:  p.CustomerSvc,
		catalogSvc:   p.CatalogSvc,
		orderSvc:     p.OrderSvc,
		billingSvc:   p.BillingSvc,
		dashboardSvc: p.DashboardSvc,
		invoiceSvc:   p.InvoiceSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.AuthRequired())

	users := api.Group("/users", s.RequireAdmin())
	users.POST("", s.CreateUser)
	users.GET("", s.ListUsers)
	users.DELETE("/:id", s.DeleteUser)

	customers := api.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomer)
	customers.PUT("/:id", s.UpdateCustomer)
	customers.DELETE("/:id", s.RequireAdmin(), s.DeleteCustomer)
	customers.POST("/:id/parties", s.CreateParty)
	customers.GET("/:id/parties", s.ListParties)
	customers.DELETE("/:id/parties/:partyID", s.DeleteParty)
	customers.GET("/:id/prices", s.ListCustomerPrices)
	customers.PUT("/:id/prices", s.SetCustomerPrice)
	customers.DELETE("/:id/prices/:serviceID", s.DeleteCustomerPrice)
	customers.GET("/:id/monthly-orders", s.CustomerMonthlyOrders)
	customers.GET("/:id/report", s.CustomerMonthlyReport)
	customers.GET("/:id/statement.pdf", s.CustomerStatementPDF)

	services := api.Group("/services")
	services.POST("", s.CreateService)
	services.GET("", s.ListServices)
	services.GET("/:id", s.GetService)

	orders := api.Group("/orders")
	orders.POST("", s.CreateOrder)
	orders.GET("", s.ListOrders)
	orders.GET("/grouped/customer", s.OrdersByCustomer)
	orders.GET("/grouped/creator", s.OrdersByCreator)
	orders.GET("/grouped/creator-customer", s.OrdersByCreatorCustomer)
	orders.GET("/:id", s.GetOrder)

	billingGroup := api.Group("/billing")
	billingGroup.POST("/generate", s.GenerateMonthlyBills)
	billingGroup.GET("/summary", s.BillingSummary)
	billingGroup.GET("/current", s.CurrentMonthBills)
	billingGroup.GET("/cycles", s.ListCycles)
	billingGroup.POST("/cycles/:id/payments", s.RecordPayment)
	billingGroup.GET("/cycles/:id/payments", s.ListPayments)

	dashboardGroup := api.Group("/dashboard")
	dashboardGroup.GET("/stats", s.DashboardStats)
	dashboardGroup.GET("/chart", s.DashboardChart)

	invoices := api.Group("/invoices")
	invoices.GET("/creator", s.CreatorInvoice)
	invoices.GET("/customer", s.CustomerInvoice)
	invoices.GET("/creator-customer", s.CreatorCustomerInvoice)
}
