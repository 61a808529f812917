package routes

import (
	"time"

	"github.com/backdrop/placement-market/internal/config"
	"github.com/backdrop/placement-market/internal/handlers"
	"github.com/backdrop/placement-market/internal/metrics"
	"github.com/backdrop/placement-market/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Projects *handlers.ProjectHandler
	Slots    *handlers.SlotHandler
	SKUs     *handlers.SKUHandler
	Bids     *handlers.BidHandler
	Finance  *handlers.FinanceHandler
}

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users middleware.UserResolver,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) {
	app.Use(middleware.Metrics(m))

	// Outside the API prefix: probes, scraping, uploaded files
	app.Get("/healthz", h.Health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Static(cfg.PublicUploadURL, cfg.UploadDir)

	api := app.Group("/api/v1")
	api.Use(perIPLimiter(cfg.APIRateLimit))

	// Protected routes list both handlers so public routes stay token-free
	jwt := middleware.JWTProtected(cfg)
	actor := middleware.CurrentUser(users)

	// Auth, with a stricter limit on the credential endpoints
	credentials := perIPLimiter(cfg.AuthRateLimit)
	auth := api.Group("/auth")
	auth.Post("/signup", credentials, h.Auth.Signup)
	auth.Post("/login", credentials, h.Auth.Login)
	auth.Get("/me", jwt, actor, h.Auth.Me)
	auth.Put("/me", jwt, actor, h.Auth.UpdateMe)
	auth.Get("/users", jwt, actor, h.Auth.ListUsers)
	auth.Get("/users/:id", jwt, actor, h.Auth.GetUser)

	projects := api.Group("/projects", jwt, actor)
	projects.Get("/", h.Projects.List)
	projects.Post("/", h.Projects.Create)
	projects.Get("/:id", h.Projects.Get)
	projects.Put("/:id", h.Projects.Update)
	projects.Delete("/:id", h.Projects.Delete)

	// Slots are browsable without a token
	slots := api.Group("/slots")
	slots.Get("/", h.Slots.List)
	slots.Get("/:id", h.Slots.Get)
	slots.Post("/", jwt, actor, h.Slots.Create)
	slots.Put("/:id", jwt, actor, h.Slots.Update)
	slots.Delete("/:id", jwt, actor, h.Slots.Delete)

	skus := api.Group("/skus", jwt, actor)
	skus.Get("/", h.SKUs.List)
	skus.Post("/", h.SKUs.Create)
	skus.Post("/upload-image", h.SKUs.UploadImage)
	skus.Get("/:id", h.SKUs.Get)
	skus.Put("/:id", h.SKUs.Update)
	skus.Delete("/:id", h.SKUs.Delete)

	bids := api.Group("/bids", jwt, actor)
	bids.Get("/", h.Bids.List)
	bids.Post("/", h.Bids.Create)
	bids.Get("/slot/:slot_id", h.Bids.ListForSlot)
	bids.Get("/:id", h.Bids.Get)
	bids.Put("/:id", h.Bids.Update)
	bids.Delete("/:id", h.Bids.Cancel)
	bids.Post("/:id/accept", h.Bids.Accept)
	bids.Post("/:id/decline", h.Bids.Decline)
	bids.Post("/:id/approve", h.Bids.Approve)
	bids.Post("/:id/comments", h.Bids.AddComment)
	bids.Get("/:id/deal_memo", h.Bids.DealMemo)
	bids.Get("/:id/evidence_pack", h.Bids.EvidencePack)

	finance := api.Group("/finance", jwt, actor)
	finance.Get("/dashboard", h.Finance.Dashboard)
	finance.Get("/operator/overview", h.Finance.OperatorOverview)

	operator := api.Group("/operator", jwt, actor)
	operator.Get("/audit", h.Finance.AuditTrail)
}
