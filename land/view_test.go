package land_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govland/land-trade/land"
)

func TestLandViewMergesMetadata(t *testing.T) {
	coordinator, _, _ := newTestCoordinator(t)
	registerUser(t, coordinator, addrA)
	id := registerTestLand(t, coordinator, addrA, "4000")

	view, err := coordinator.Land(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, view.ID)
	assert.Equal(t, "active", view.Status)
	assert.Equal(t, addrA.Hex(), view.Owner)
	assert.True(t, view.MetadataAvailable)
	assert.Equal(t, "GRN 101", view.Metadata.TitleNumber)
	assert.Nil(t, view.Sale, "an unlisted asset carries no sale view")
}

func TestLandViewIncludesSaleTerms(t *testing.T) {
	coordinator, _, _ := newTestCoordinator(t)
	registerUser(t, coordinator, addrA)
	registerUser(t, coordinator, addrB)
	id := registerTestLand(t, coordinator, addrA, "4000")
	require.NoError(t, coordinator.ListForSale(context.Background(), fakeSigner{addrA}, id, "4000"))

	view, err := coordinator.Land(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, view.Sale)
	assert.Equal(t, "1000000000000000000", view.Sale.PriceNative)
	assert.Equal(t, "4000.00", view.Sale.PriceFiat)
	assert.Empty(t, view.Sale.PendingBuyer)

	require.NoError(t, coordinator.RequestBuy(context.Background(), fakeSigner{addrB}, id))

	view, err = coordinator.Land(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, view.Sale)
	assert.Equal(t, addrB.Hex(), view.Sale.PendingBuyer)
}

// One unreachable metadata blob must not fail or shrink the batch: the
// affected record keeps its authoritative fields and gets placeholders.
func TestBatchFetchDegradesPerRecord(t *testing.T) {
	coordinator, ledger, store := newTestCoordinator(t)
	registerUser(t, coordinator, addrA)

	ids := []uint64{
		registerTestLand(t, coordinator, addrA, "4000"),
		registerTestLand(t, coordinator, addrA, "5000"),
		registerTestLand(t, coordinator, addrA, "6000"),
	}

	broken, err := ledger.Asset(context.Background(), ids[1])
	require.NoError(t, err)
	store.unreachable[broken.MetadataCID] = true

	views, err := coordinator.AllLands(context.Background())
	require.NoError(t, err, "a metadata failure must never surface as a batch error")
	require.Len(t, views, len(ids))

	for i, view := range views {
		assert.Equal(t, ids[i], view.ID)
		assert.Equal(t, addrA.Hex(), view.Owner)
	}

	assert.True(t, views[0].MetadataAvailable)
	assert.True(t, views[2].MetadataAvailable)

	assert.False(t, views[1].MetadataAvailable)
	assert.Equal(t, land.Unavailable, views[1].Metadata.TitleNumber)
	assert.Equal(t, land.Unavailable, views[1].Metadata.Username)
}

func TestOwnedLands(t *testing.T) {
	coordinator, _, _ := newTestCoordinator(t)
	registerUser(t, coordinator, addrA)
	registerUser(t, coordinator, addrB)

	registerTestLand(t, coordinator, addrA, "4000")
	mine := registerTestLand(t, coordinator, addrB, "5000")

	views, err := coordinator.OwnedLands(context.Background(), addrB.Hex())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, mine, views[0].ID)

	_, err = coordinator.OwnedLands(context.Background(), "not-an-address")
	assert.Error(t, err)
}

func TestMalformedMetadataDegrades(t *testing.T) {
	coordinator, ledger, store := newTestCoordinator(t)
	registerUser(t, coordinator, addrA)
	id := registerTestLand(t, coordinator, addrA, "4000")

	asset, err := ledger.Asset(context.Background(), id)
	require.NoError(t, err)
	store.blobs[asset.MetadataCID] = []byte("{not json")

	view, err := coordinator.Land(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, view.MetadataAvailable)
	assert.Equal(t, land.Unavailable, view.Metadata.TitleNumber)
}
