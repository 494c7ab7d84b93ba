package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperator(t *testing.T) {
	t.Run("unauthenticated context has no operator", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, OperatorID(ctx))
		assert.False(t, HasPermission(ctx, PermissionReprint))
	})

	t.Run("operator permissions are scoped to the context", func(t *testing.T) {
		ctx := WithOperator(context.Background(), "teller-7", PermissionReprint)
		assert.Equal(t, "teller-7", OperatorID(ctx))
		assert.True(t, HasPermission(ctx, PermissionReprint))
		assert.False(t, HasPermission(ctx, PermissionCertified))
	})
}

func TestNow(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := WithTime(context.Background(), fixed)
	assert.Equal(t, fixed, Now(ctx))
	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}
