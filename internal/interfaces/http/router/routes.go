package router

import (
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/interfaces/http/handler"
	"github.com/friendaudit/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by Mount
type Handlers struct {
	Entitlements *handler.EntitlementHandler
	Activity     *handler.ActivityHandler
	Billing      *handler.BillingHandler
	Health       *handler.HealthHandler
}

// Mount registers the public routes on the engine and the authenticated
// routes under /api/v1. auth runs before every versioned route except the
// provider webhook, whose signature is its credential.
func Mount(engine *gin.Engine, h Handlers, auth gin.HandlerFunc, checker middleware.FeatureChecker, log *zap.Logger) {
	engine.GET("/health", h.Health.Health)
	engine.POST("/api/v1/billing/webhook", h.Billing.HandleWebhook)

	entitlements := NewDomainGroup("entitlements", "/entitlements")
	entitlements.GET("", h.Entitlements.GetEntitlements)
	entitlements.POST("/refresh", h.Entitlements.Refresh)
	entitlements.GET("/features/:feature", h.Entitlements.GetFeature)

	usage := NewDomainGroup("usage", "/usage")
	usage.GET("", h.Entitlements.GetUsage)

	audits := NewDomainGroup("audits", "/audits")
	audits.POST("", h.Activity.RecordAudit)
	audits.GET("", h.Activity.ListAudits)
	audits.DELETE("/:id", h.Activity.DeleteAudit)

	journal := NewDomainGroup("journal", "/journal")
	journal.POST("", middleware.RequireFeature(entitlement.FeatureJournal, checker, log), h.Activity.RecordJournalNote)
	journal.GET("", h.Activity.ListJournal)
	journal.DELETE("/:id", h.Activity.DeleteJournalEntry)

	history := NewDomainGroup("history", "/history")
	history.GET("", h.Activity.GetHistory)

	plans := NewDomainGroup("plans", "/plans")
	plans.GET("", h.Billing.ListPlans)

	billing := NewDomainGroup("billing", "/billing")
	billing.POST("/checkout", h.Billing.StartCheckout)
	billing.POST("/complete", h.Billing.CompleteCheckout)

	NewRouter(engine, WithAPIVersion("v1"), WithAPIMiddleware(auth)).
		Register(entitlements).
		Register(usage).
		Register(audits).
		Register(journal).
		Register(history).
		Register(plans).
		Register(billing).
		Setup()
}
