package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Fresh-Industries/pantrypal/internal/handler/api"
	"github.com/Fresh-Industries/pantrypal/internal/handler/middleware"
	"github.com/Fresh-Industries/pantrypal/internal/infra/repository"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Catalog   *api.CatalogHandler
	Pickup    *api.PickupHandler
	AgentRun  *api.AgentRunHandler
	CartDraft *api.CartDraftHandler
	Checkout  *api.CheckoutHandler
	Approval  *api.ApprovalHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, requestLogs *repository.RequestLogRepository) {
	setupMiddleware(engine, cfg, requestLogs)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, requestLogs *repository.RequestLogRepository) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.RequestLogMiddleware(requestLogs))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/products", Handler: h.Catalog.ListProducts},
			{Method: http.MethodGet, Path: "/products/:id", Handler: h.Catalog.GetProduct},
			{Method: http.MethodGet, Path: "/stores/:id/pickup-slots", Handler: h.Pickup.ListSlots},
			{Method: http.MethodPost, Path: "/agent-runs", Handler: h.AgentRun.CreateRun},
			{Method: http.MethodPost, Path: "/agent-sessions", Handler: h.AgentRun.CreateSession},
		})

		// Everything past session creation runs under the session token.
		session := apiGroup.Group("")
		session.Use(authMiddleware.OptionalSession())
		{
			addRoutes(session, []route{
				{Method: http.MethodGet, Path: "/agent-runs/:id", Handler: h.AgentRun.GetRun},
				{Method: http.MethodPatch, Path: "/agent-runs/:id", Handler: h.AgentRun.UpdateRun},
				{Method: http.MethodPost, Path: "/agent-run-steps", Handler: h.AgentRun.AppendStep},
				{Method: http.MethodPost, Path: "/cart-drafts", Handler: h.CartDraft.CreateDraft},
				{Method: http.MethodGet, Path: "/cart-drafts/:id", Handler: h.CartDraft.GetDraft},
				{Method: http.MethodPatch, Path: "/cart-drafts/:id", Handler: h.CartDraft.UpdateDraft},
				{Method: http.MethodPost, Path: "/agent-runs/:id/checkout", Handler: h.Checkout.StartCheckout},
				{Method: http.MethodPost, Path: "/checkouts/:id/pickup-slot", Handler: h.Pickup.SelectSlot},
				{Method: http.MethodPost, Path: "/checkouts/:id/complete", Handler: h.Checkout.Complete},
				{Method: http.MethodPost, Path: "/approvals", Handler: h.Approval.Settle},
				{Method: http.MethodGet, Path: "/orders/:id", Handler: h.Checkout.GetOrder},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
