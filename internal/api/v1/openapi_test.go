package apiv1

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(OpenAPIDocument)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	for _, path := range []string{"/ping", "/billing/plans", "/entitlements/resolve", "/billing/webhook"} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}

	states := doc.Components.Schemas["Decision"].Value.Properties["ui_state"].Value.Enum
	assert.Len(t, states, 9)
}
