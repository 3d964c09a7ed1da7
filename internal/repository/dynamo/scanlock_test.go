package dynamo

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymledger/gymledger/internal/domain/scanlock"
	"github.com/gymledger/gymledger/internal/types"
)

// The stored marker must carry the scan_locks table's gym_id hash key and
// key range key under those exact attribute names; the conditional create
// guards on attribute_not_exists(key).
func TestScanLockStoredShape(t *testing.T) {
	ctx := types.SetGymID(context.Background(), "gym_1")
	lock := scanlock.New(ctx, "expiration", "2026-09-01")

	av, err := attributevalue.MarshalMap(toScanLockItem(lock))
	require.NoError(t, err)

	gym, ok := av["gym_id"].(*ddbtypes.AttributeValueMemberS)
	require.True(t, ok, "gym_id must be a string attribute")
	assert.Equal(t, "gym_1", gym.Value)

	key, ok := av["key"].(*ddbtypes.AttributeValueMemberS)
	require.True(t, ok, "key must be a string attribute")
	assert.Equal(t, "expiration:2026-09-01", key.Value)

	for _, name := range []string{"scope", "date", "acquired_at", "status", "created_at", "updated_at"} {
		assert.Contains(t, av, name)
	}

	// Field names must not leak through as attribute names
	assert.NotContains(t, av, "Key")
	assert.NotContains(t, av, "GymID")
}
