package constants

// Route constants
const (
	APIRoute     = "/api"
	APIV1Route   = "/v1"
	DocsRoute    = "/docs/api/"
	DocsVersion  = "v1"
	MetricsRoute = "/metrics"
)
