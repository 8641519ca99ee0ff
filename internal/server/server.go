package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/collecta/internal/audit"
	auditdomain "github.com/smallbiznis/collecta/internal/audit/domain"
	"github.com/smallbiznis/collecta/internal/config"
	"github.com/smallbiznis/collecta/internal/idempotency"
	"github.com/smallbiznis/collecta/internal/invoice"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"github.com/smallbiznis/collecta/internal/metrics"
	"github.com/smallbiznis/collecta/internal/observability"
	obsmiddleware "github.com/smallbiznis/collecta/internal/observability/logger"
	"github.com/smallbiznis/collecta/internal/payment"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	"github.com/smallbiznis/collecta/internal/reconciliation"
	recondomain "github.com/smallbiznis/collecta/internal/reconciliation/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	idempotency.Module,
	invoice.Module,
	payment.Module,
	reconciliation.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, m *metrics.Metrics, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(metricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, m *metrics.Metrics, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(obsCfg, m, registry)
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
	engine     *gin.Engine
	cfg        config.Config
	auditSvc   auditdomain.Service
	invoiceSvc invoicedomain.Service
	paymentSvc paymentdomain.Service
	reconSvc   recondomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	AuditSvc   auditdomain.Service
	InvoiceSvc invoicedomain.Service
	PaymentSvc paymentdomain.Service
	ReconSvc   recondomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		auditSvc:   p.AuditSvc,
		invoiceSvc: p.InvoiceSvc,
		paymentSvc: p.PaymentSvc,
		reconSvc:   p.ReconSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", OrgContext())

	ar := api.Group("/ar")
	{
		ar.POST("/payments", s.CreatePayment)
		ar.GET("/payments", s.ListPayments)
		ar.GET("/payments/:id", s.GetPaymentByID)
		ar.POST("/payments/:id/apply", s.ApplyPayment)
		ar.GET("/payments/:id/suggest", s.SuggestAllocations)

		ar.GET("/invoices", s.ListInvoices)
		ar.GET("/invoices/:id", s.GetInvoiceByID)
		ar.GET("/summary", s.GetARSummary)
	}

	api.GET("/audit-logs", s.ListAuditLogs)
	api.GET("/audit-logs/trace/:resourceType/:resourceId", s.TraceResource)
}
