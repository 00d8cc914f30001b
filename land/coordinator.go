package land

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Coordinator drives the land lifecycle: registration, listing, buy
// requests, and approved transfers. Every mutating action runs strictly in
// sequence (guard check, optional upload, price conversion, one ledger call,
// await finality). The ledger is the sole serialization point; the local
// guards only avoid spending transactions the ledger would reject anyway.
type Coordinator struct {
	ledger Ledger
	store  ContentStore
	conv   Converter
	log    *logrus.Entry
}

func NewCoordinator(ledger Ledger, store ContentStore, conv Converter) *Coordinator {
	return &Coordinator{
		ledger: ledger,
		store:  store,
		conv:   conv,
		log:    logrus.WithField("pkg", "land"),
	}
}

// Registration carries the caller-supplied fields for a new land record.
// Deed is the raw supporting document, uploaded before the metadata blob.
type Registration struct {
	TitleNumber string `json:"titleNumber"`
	LandType    string `json:"landType"`
	Username    string `json:"username"`
	PriceFiat   string `json:"priceFiat"`
	Area        string `json:"area"`
	Deed        []byte `json:"deed,omitempty"`
	DeedName    string `json:"deedName,omitempty"`
}

// ParseAddress validates and decodes a hex wallet address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func (c *Coordinator) requireSigner(caller Signer) error {
	if caller == nil {
		return ErrNotConnected
	}
	return nil
}

func (c *Coordinator) requireRole(ctx context.Context, addr common.Address, min Role) error {
	role, err := c.ledger.RoleOf(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to read role of %s: %w", addr.Hex(), err)
	}
	if role < min {
		return fmt.Errorf("%w: %s has role %s, need at least %s", ErrRoleViolation, addr.Hex(), role, min)
	}
	return nil
}

func (c *Coordinator) await(ctx context.Context, tx PendingTx, action string) (*Confirmation, error) {
	c.log.WithFields(logrus.Fields{"action": action, "tx": tx.Hash()}).Info("transaction submitted")
	conf, err := tx.Wait(ctx)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"action": action, "tx": conf.TxHash}).Info("transaction confirmed")
	return conf, nil
}

// RegisterAccount upgrades the caller from no role to user. A non-nil
// profile is uploaded first and its hash recorded on-chain.
func (c *Coordinator) RegisterAccount(ctx context.Context, caller Signer, profile *Profile) (string, error) {
	if err := c.requireSigner(caller); err != nil {
		return "", err
	}

	role, err := c.ledger.RoleOf(ctx, caller.Address())
	if err != nil {
		return "", fmt.Errorf("failed to read role of %s: %w", caller.Address().Hex(), err)
	}
	if role != RoleNone {
		return "", fmt.Errorf("%w: %s already registered as %s", ErrRoleViolation, caller.Address().Hex(), role)
	}

	var tx PendingTx
	if profile != nil {
		blob, err := json.Marshal(profile)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrMetadataUpload, err)
		}
		cid, err := c.store.Upload(ctx, "profile.json", blob)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrMetadataUpload, err)
		}
		tx, err = c.ledger.RegisterWithProfile(ctx, caller, cid)
		if err != nil {
			return "", err
		}
	} else {
		tx, err = c.ledger.SelfRegister(ctx, caller)
		if err != nil {
			return "", err
		}
	}

	conf, err := c.await(ctx, tx, "register_account")
	if err != nil {
		return "", err
	}
	return conf.TxHash, nil
}

// RegisterLand creates a new asset owned by the caller. The deed document
// (if any) and the metadata blob are uploaded before the ledger call; an
// upload failure aborts the action with no asset created.
func (c *Coordinator) RegisterLand(ctx context.Context, caller Signer, reg Registration) (uint64, error) {
	if err := c.requireSigner(caller); err != nil {
		return 0, err
	}
	if err := c.requireRole(ctx, caller.Address(), RoleUser); err != nil {
		return 0, err
	}

	price, err := c.conv.ToNative(reg.PriceFiat)
	if err != nil {
		return 0, err
	}

	meta := Metadata{
		TitleNumber: reg.TitleNumber,
		LandType:    reg.LandType,
		Username:    reg.Username,
		PriceFiat:   reg.PriceFiat,
		Area:        reg.Area,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(reg.Deed) > 0 {
		deedCID, err := c.store.Upload(ctx, reg.DeedName, reg.Deed)
		if err != nil {
			return 0, fmt.Errorf("%w: deed: %s", ErrMetadataUpload, err)
		}
		meta.DeedCID = deedCID
		meta.Fingerprint = Fingerprint(reg.Deed)
	}

	cid, err := c.uploadMetadata(ctx, meta)
	if err != nil {
		return 0, err
	}

	tx, err := c.ledger.CreateAsset(ctx, caller, cid, price)
	if err != nil {
		return 0, err
	}
	conf, err := c.await(ctx, tx, "register_land")
	if err != nil {
		return 0, err
	}
	return conf.AssetID, nil
}

// ListForSale puts an active asset on the market at the given fiat price.
func (c *Coordinator) ListForSale(ctx context.Context, caller Signer, id uint64, priceFiat string) error {
	if err := c.requireSigner(caller); err != nil {
		return err
	}

	price, err := c.conv.ToNative(priceFiat)
	if err != nil {
		return err
	}

	asset, err := c.ledger.Asset(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read land %d: %w", id, err)
	}
	if asset.Owner != caller.Address() {
		return fmt.Errorf("%w: %s is not the owner of land %d", ErrRoleViolation, caller.Address().Hex(), id)
	}

	tx, err := c.ledger.ListForSale(ctx, caller, id, price)
	if err != nil {
		return err
	}
	_, err = c.await(ctx, tx, "list_for_sale")
	return err
}

// RequestBuy escrows exactly the listed price with the ledger. The price is
// read fresh from the ledger immediately before submitting; the contract
// re-checks equality and arbitrates concurrent buyers (first writer wins,
// later requests come back rejected).
func (c *Coordinator) RequestBuy(ctx context.Context, caller Signer, id uint64) error {
	if err := c.requireSigner(caller); err != nil {
		return err
	}

	asset, err := c.ledger.Asset(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read land %d: %w", id, err)
	}
	if asset.Owner == caller.Address() {
		return fmt.Errorf("%w: owner cannot buy own land %d", ErrRoleViolation, id)
	}
	if asset.Status != StatusForSale {
		return fmt.Errorf("%w: land %d is not for sale", ErrTransactionRejected, id)
	}

	price, err := c.ledger.ListedPrice(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read listed price of land %d: %w", id, err)
	}

	tx, err := c.ledger.RequestBuy(ctx, caller, id, price)
	if err != nil {
		return err
	}
	_, err = c.await(ctx, tx, "request_buy")
	return err
}

// ApproveTransfer hands the asset to the pending buyer. Ownership changes,
// so a fresh metadata blob is written rather than mutating the old one; the
// old hash stays valid for whoever still holds it.
func (c *Coordinator) ApproveTransfer(ctx context.Context, caller Signer, id uint64, newMeta Metadata) error {
	if err := c.requireSigner(caller); err != nil {
		return err
	}

	asset, err := c.ledger.Asset(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read land %d: %w", id, err)
	}
	if asset.Owner != caller.Address() {
		return fmt.Errorf("%w: %s is not the owner of land %d", ErrRoleViolation, caller.Address().Hex(), id)
	}

	buyer, err := c.ledger.PendingBuyerOf(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read pending buyer of land %d: %w", id, err)
	}
	if buyer == (common.Address{}) {
		return fmt.Errorf("%w: land %d has no pending buyer", ErrTransactionRejected, id)
	}

	if newMeta.Timestamp == "" {
		newMeta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	cid, err := c.uploadMetadata(ctx, newMeta)
	if err != nil {
		return err
	}

	tx, err := c.ledger.ApproveTransfer(ctx, caller, id, buyer, cid)
	if err != nil {
		return err
	}
	_, err = c.await(ctx, tx, "approve_transfer")
	return err
}

// Profile fetches the off-chain profile blob of an account.
func (c *Coordinator) Profile(ctx context.Context, addr common.Address) (*Profile, error) {
	cid, err := c.ledger.ProfileCIDOf(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile hash of %s: %w", addr.Hex(), err)
	}
	if cid == "" {
		return nil, fmt.Errorf("%w: no profile recorded for %s", ErrMetadataFetch, addr.Hex())
	}

	blob, err := c.store.Fetch(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMetadataFetch, err)
	}

	var profile Profile
	if err := json.Unmarshal(blob, &profile); err != nil {
		return nil, fmt.Errorf("%w: malformed profile blob %s", ErrMetadataFetch, cid)
	}
	return &profile, nil
}

// SaleInfo returns the current sale terms of an asset, recomputed from the
// ledger on every call.
func (c *Coordinator) SaleInfo(ctx context.Context, id uint64) (*Sale, error) {
	price, err := c.ledger.ListedPrice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read listed price of land %d: %w", id, err)
	}
	buyer, err := c.ledger.PendingBuyerOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending buyer of land %d: %w", id, err)
	}
	return c.saleFromChain(price, buyer), nil
}

func (c *Coordinator) uploadMetadata(ctx context.Context, meta Metadata) (string, error) {
	blob, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMetadataUpload, err)
	}
	cid, err := c.store.Upload(ctx, "land_metadata.json", blob)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMetadataUpload, err)
	}
	return cid, nil
}

func (c *Coordinator) saleFromChain(price *big.Int, buyer common.Address) *Sale {
	sale := &Sale{
		PriceNative: "0",
		PriceFiat:   c.conv.ToFiat(price),
	}
	if price != nil {
		sale.PriceNative = price.String()
	}
	if buyer != (common.Address{}) {
		sale.PendingBuyer = buyer.Hex()
	}
	return sale
}
