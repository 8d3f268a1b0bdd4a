package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/nodegraph/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_ExclusiveUntilUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "doc-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:doc-1"))

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "doc-1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other keys are independent.
	unlockOther, err := locker.Lock(ctx, "doc-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:doc-1"))

	unlock, err = locker.Lock(ctx, "doc-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_UnlockAfterExpiryKeepsNewOwner(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	stale, err := locker.Lock(ctx, "doc", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := locker.Lock(ctx, "doc", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("test:lock:doc"), "an expired holder must not release the new owner's lock")
	require.NoError(t, fresh(ctx))
}
