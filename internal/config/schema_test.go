package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	t.Run("accepts saved defaults", func(t *testing.T) {
		assert.NoError(t, ValidateDocument([]byte(DefaultConfig().String())))
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		err := ValidateDocument([]byte(`{"llm": {"profiles": [{"id": "x", "provider": "gemini"}]}}`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "provider")
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		err := ValidateDocument([]byte(`{"agent": {"max_chars": "lots"}}`))
		assert.Error(t, err)
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		assert.Error(t, ValidateDocument([]byte(`{"logging": {"level": "trace"}}`)))
	})
}
