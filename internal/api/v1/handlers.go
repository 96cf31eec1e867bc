package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the controllers to keep behavior consistent
	"github.com/ManuelReschke/PlanCard/app/controllers"
	"github.com/ManuelReschke/PlanCard/internal/pkg/middleware"
)

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the v1 endpoints
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetBillingPlans returns both plan cards for the API key's account.
func (s *APIServer) GetBillingPlans(c *fiber.Ctx) error {
	return controllers.HandleGetPlanCards(c)
}

// PostResolveEntitlement evaluates a caller supplied snapshot.
func (s *APIServer) PostResolveEntitlement(c *fiber.Ctx) error {
	return controllers.HandleResolveEntitlement(c)
}

// PostBillingWebhook is authenticated by its payload signature, not an API key.
func (s *APIServer) PostBillingWebhook(c *fiber.Ctx) error {
	return controllers.HandleBillingWebhook(c)
}

// RegisterHandlers mounts the v1 endpoints on router.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Post("/billing/webhook", s.PostBillingWebhook)

	// Per route: a group middleware would also cover ping and the webhook.
	requireAPIKey := middleware.APIKeyAuthMiddleware()
	router.Get("/billing/plans", requireAPIKey, s.GetBillingPlans)
	router.Post("/entitlements/resolve", requireAPIKey, s.PostResolveEntitlement)
}
