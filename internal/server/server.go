package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/quoteflow/internal/buyer"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	"github.com/smallbiznis/quoteflow/internal/catalog"
	catalogdomain "github.com/smallbiznis/quoteflow/internal/catalog/domain"
	"github.com/smallbiznis/quoteflow/internal/config"
	"github.com/smallbiznis/quoteflow/internal/observability"
	obslogger "github.com/smallbiznis/quoteflow/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/quoteflow/internal/observability/metrics"
	obstracing "github.com/smallbiznis/quoteflow/internal/observability/tracing"
	"github.com/smallbiznis/quoteflow/internal/outbound"
	"github.com/smallbiznis/quoteflow/internal/quotation"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/internal/render"
	"github.com/smallbiznis/quoteflow/internal/seller"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	"github.com/smallbiznis/quoteflow/internal/sellerquote"
	sellerquotedomain "github.com/smallbiznis/quoteflow/internal/sellerquote/domain"
	"github.com/smallbiznis/quoteflow/internal/storage"
	"github.com/smallbiznis/quoteflow/internal/style"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	buyer.Module,
	seller.Module,
	style.Module,
	catalog.Module,
	quotation.Module,
	render.Module,
	storage.Module,
	sellerquote.Module,
	outbound.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	buyerSvc       buyerdomain.Service
	sellerSvc      sellerdomain.Service
	styleSvc       styledomain.Service
	catalogSvc     catalogdomain.Service
	quotationSvc   quotationdomain.Service
	sellerQuoteSvc sellerquotedomain.Service
	sharer         *outbound.Sharer
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	BuyerSvc       buyerdomain.Service
	SellerSvc      sellerdomain.Service
	StyleSvc       styledomain.Service
	CatalogSvc     catalogdomain.Service
	QuotationSvc   quotationdomain.Service
	SellerQuoteSvc sellerquotedomain.Service
	Sharer         *outbound.Sharer
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		buyerSvc:       p.BuyerSvc,
		sellerSvc:      p.SellerSvc,
		styleSvc:       p.StyleSvc,
		catalogSvc:     p.CatalogSvc,
		quotationSvc:   p.QuotationSvc,
		sellerQuoteSvc: p.SellerQuoteSvc,
		sharer:         p.Sharer,
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

	// -------- Buyers --------
	api.GET("/buyers", s.ListBuyers)
	api.POST("/buyers", s.CreateBuyer)
	api.GET("/buyers/:id", s.GetBuyerByID)
	api.PUT("/buyers/:id", s.UpdateBuyer)
	api.DELETE("/buyers/:id", s.DeleteBuyer)
	api.GET("/buyers/:id/quotations", s.ListBuyerQuotations)

	// -------- Sellers --------
	api.GET("/sellers", s.ListSellers)
	api.POST("/sellers", s.CreateSeller)
	api.GET("/sellers/:id", s.GetSellerByID)
	api.PUT("/sellers/:id", s.UpdateSeller)
	api.DELETE("/sellers/:id", s.DeleteSeller)

	// -------- Styles --------
	api.GET("/styles", s.ListStyles)

	// -------- Quotations --------
	api.GET("/quotations", s.ListQuotations)
	api.POST("/quotations", s.CreateQuotation)
	api.GET("/quotations/:id", s.GetQuotationByID)
	api.PUT("/quotations/:id", s.ReplaceQuotation)
	api.DELETE("/quotations/:id", s.DeleteQuotation)
	api.POST("/quotations/:id/copy", s.CopyQuotation)

	// -------- Documents --------
	api.POST("/quotations/:id/documents", s.GenerateDocuments)
	api.GET("/quotations/:id/documents", s.ListDocuments)
	api.GET("/quotations/:id/export.xlsx", s.ExportQuotation)
	api.POST("/quotations/:id/share", s.ShareQuotation)

	// -------- Suggestions --------
	api.GET("/suggestions", s.ListSuggestions)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
