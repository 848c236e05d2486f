package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsStable(t *testing.T) {
	payload := map[string]interface{}{"courses": []string{"CS101", "MATH201"}}

	first, err := Key(payload, "analysis", "conflicts")
	require.NoError(t, err)
	second, err := Key(payload, "analysis", "conflicts")
	require.NoError(t, err)
	other, err := Key(map[string]interface{}{"courses": []string{"CS101"}}, "analysis", "conflicts")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.True(t, strings.HasPrefix(first, "weekplan:analysis:conflicts:"))
}

func TestKeyRejectsUnmarshalable(t *testing.T) {
	_, err := Key(make(chan int), "analysis")
	assert.Error(t, err)
}

func TestPattern(t *testing.T) {
	assert.Equal(t, "weekplan:analysis:user-1:*", Pattern("analysis", "user-1"))
}
