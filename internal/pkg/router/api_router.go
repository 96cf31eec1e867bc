package router

import (
	"net"
	"strconv"
	"time"

	apiv1 "github.com/ManuelReschke/PlanCard/internal/api/v1"
	"github.com/ManuelReschke/PlanCard/internal/pkg/cache"
	"github.com/ManuelReschke/PlanCard/internal/pkg/constants"
	"github.com/ManuelReschke/PlanCard/internal/pkg/env"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
)

type ApiRouter struct {
	// Storage holds limiter counters. Nil keeps them in memory.
	Storage fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", 120),
		Expiration: time.Minute,
		Storage:    h.Storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group(constants.APIV1Route)
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter(storage fiber.Storage) *ApiRouter {
	return &ApiRouter{Storage: storage}
}

// NewLimiterStorage keeps limiter counters in Redis so all instances share
// them. Database 2 is used (cache uses DB 0).
func NewLimiterStorage() fiber.Storage {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if h, p, err := net.SplitHostPort(cache.Addr()); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 2,
		Reset:    false,
	})
}
