package apiv1

import (
	_ "embed"

	"github.com/gofiber/contrib/swagger"

	"github.com/ManuelReschke/PlanCard/internal/pkg/constants"
)

// OpenAPIDocument describes the v1 endpoints.
//
//go:embed openapi.yml
var OpenAPIDocument []byte

// SwaggerConfig serves the embedded document and its UI under /docs/api/v1.
func SwaggerConfig() swagger.Config {
	return swagger.Config{
		BasePath:    constants.DocsRoute,
		FileContent: OpenAPIDocument,
		Path:        constants.DocsVersion,
		Title:       "PlanCard API",
	}
}
