package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Run("brokers required", func(t *testing.T) {
		_, err := New(nil, "audit")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "brokers are required")
	})

	t.Run("topic required", func(t *testing.T) {
		_, err := New([]string{"localhost:9092"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "topic is required")
	})
}
