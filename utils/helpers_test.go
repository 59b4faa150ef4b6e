package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilenameToken(t *testing.T) {
	t.Run("should pass safe tokens through unchanged", func(t *testing.T) {
		assert.Equal(t, "proj-42_v1.0", SanitizeFilenameToken("proj-42_v1.0"))
	})

	t.Run("should replace unsafe characters with hyphens", func(t *testing.T) {
		assert.Equal(t, "a-b-c--d", SanitizeFilenameToken(`a/b c;"d`))
	})
}
