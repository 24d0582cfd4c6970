package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	k := Key("main text", "other text")

	assert.True(t, strings.HasPrefix(k, keyPrefix))
	assert.Len(t, k, len(keyPrefix)+64+1+64)
	assert.Equal(t, k, Key("main text", "other text"))
	assert.NotEqual(t, k, Key("other text", "main text"))
}
