package land

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// View merges the authoritative on-chain fields of one asset with its
// best-effort off-chain metadata. When the blob is unreachable the
// authoritative fields are still reported and the descriptive fields carry
// explicit placeholders.
type View struct {
	ID                uint64   `json:"landId"`
	Status            string   `json:"status"`
	Owner             string   `json:"owner"`
	MetadataCID       string   `json:"metadataCid"`
	Metadata          Metadata `json:"metadata"`
	MetadataAvailable bool     `json:"metadataAvailable"`
	Sale              *Sale    `json:"sale,omitempty"`
}

// Sale is the derived sale view, recomputed from the ledger on demand and
// never cached past a single read cycle.
type Sale struct {
	PriceNative  string `json:"priceNative"`
	PriceFiat    string `json:"priceFiat"`
	PendingBuyer string `json:"pendingBuyer,omitempty"`
}

// Land produces the merged view of a single asset. Ledger reads are
// authoritative and their failure fails the call; a metadata fetch failure
// only degrades the descriptive fields.
func (c *Coordinator) Land(ctx context.Context, id uint64) (*View, error) {
	asset, err := c.ledger.Asset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read land %d: %w", id, err)
	}
	return c.view(ctx, asset)
}

// AllLands fans out one merged read per known asset id.
func (c *Coordinator) AllLands(ctx context.Context) ([]*View, error) {
	ids, err := c.ledger.AllAssetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list land ids: %w", err)
	}
	return c.views(ctx, ids)
}

// OwnedLands fans out one merged read per asset owned by the given address.
func (c *Coordinator) OwnedLands(ctx context.Context, owner string) ([]*View, error) {
	addr, err := ParseAddress(owner)
	if err != nil {
		return nil, err
	}
	ids, err := c.ledger.OwnedAssetIDs(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to list lands of %s: %w", owner, err)
	}
	return c.views(ctx, ids)
}

// views builds merged records concurrently, one independent unit of work per
// id, joined positionally. No unit's failure cancels a sibling; only ledger
// read errors propagate, and then only after every unit has finished.
func (c *Coordinator) views(ctx context.Context, ids []uint64) ([]*View, error) {
	results := make([]*View, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			results[i], errs[i] = c.Land(ctx, id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (c *Coordinator) view(ctx context.Context, asset Asset) (*View, error) {
	v := &View{
		ID:          asset.ID,
		Status:      asset.Status.String(),
		Owner:       asset.Owner.Hex(),
		MetadataCID: asset.MetadataCID,
	}

	if asset.Status == StatusForSale || asset.Status == StatusPendingApproval {
		sale, err := c.SaleInfo(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		v.Sale = sale
	}

	blob, err := c.store.Fetch(ctx, asset.MetadataCID)
	if err != nil {
		c.log.WithField("land", asset.ID).Warnf("metadata %s unreachable: %v", asset.MetadataCID, err)
		v.Metadata = placeholderMetadata()
		return v, nil
	}

	var meta Metadata
	if err := json.Unmarshal(blob, &meta); err != nil {
		c.log.WithField("land", asset.ID).Warnf("metadata %s malformed: %v", asset.MetadataCID, err)
		v.Metadata = placeholderMetadata()
		return v, nil
	}

	v.Metadata = meta
	v.MetadataAvailable = true
	return v, nil
}
