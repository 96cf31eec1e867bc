package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/PlanCard/app/repository"
	apiv1 "github.com/ManuelReschke/PlanCard/internal/api/v1"
	"github.com/ManuelReschke/PlanCard/internal/pkg/cache"
	"github.com/ManuelReschke/PlanCard/internal/pkg/constants"
	"github.com/ManuelReschke/PlanCard/internal/pkg/database"
	"github.com/ManuelReschke/PlanCard/internal/pkg/env"
	"github.com/ManuelReschke/PlanCard/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	if env.IsDev() {
		fiberlog.SetLevel(fiberlog.LevelDebug)
	} else {
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}

	app := fiber.New(fiber.Config{
		AppName:   "PlanCard",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(apiv1.SwaggerConfig()))

	// ROUTER
	router.InstallRouter(app)

	return app
}
