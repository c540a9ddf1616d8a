package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestResponseSchema(t *testing.T) {
	schema := responseSchema(dilutionShape)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"explanation", "advice"}, schema.PropertyOrdering)
	assert.Equal(t, []string{"explanation", "advice"}, schema.Required)
	assert.Equal(t, genai.TypeString, schema.Properties["explanation"].Type)

	list := responseSchema(financeShape).Properties["risks"]
	assert.Equal(t, genai.TypeArray, list.Type)
	assert.Equal(t, genai.TypeString, list.Items.Type)
}

func TestNewGenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewGenAIProvider(t.Context(), "", "", 0)
	assert.Error(t, err)
}
