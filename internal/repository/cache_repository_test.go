package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]int

	err := repo.Get(context.Background(), "weekplan:analysis:x", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	require.NoError(t, repo.Set(context.Background(), "weekplan:analysis:x", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "weekplan:*"))
	require.NoError(t, repo.Close())
}
