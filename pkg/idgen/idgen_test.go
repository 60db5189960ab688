package idgen

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	for i := 0; i < 100; i++ {
		id, err := Generate()
		require.NoError(t, err)
		assert.Len(t, id, Length)
		assert.Regexp(t, pattern, id)
		assert.Equal(t, id, url.PathEscape(id))
	}
}

func TestGenerateUniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := NanoID{}.NewID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate ID after %d generations: %q", i, id)
		seen[id] = struct{}{}
	}
}
