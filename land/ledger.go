package land

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Role mirrors the contract's role enum.
type Role uint8

const (
	RoleNone Role = iota
	RoleUser
	RoleStaff
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleUser:
		return "user"
	case RoleStaff:
		return "staff"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Status mirrors the contract's land status enum. The numeric values follow
// the contract definition; an unrecognized code decodes to StatusUnknown
// instead of being forced into a neighboring state.
type Status uint8

const (
	StatusActive Status = iota
	StatusForSale
	StatusPendingApproval
	StatusSold
	StatusDisputed

	StatusUnknown Status = 255
)

func StatusFromCode(code uint8) Status {
	if code > uint8(StatusDisputed) {
		return StatusUnknown
	}
	return Status(code)
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusForSale:
		return "for_sale"
	case StatusPendingApproval:
		return "pending_approval"
	case StatusSold:
		return "sold"
	case StatusDisputed:
		return "disputed"
	default:
		return "unknown"
	}
}

// Signer signs ledger transactions on behalf of one wallet address.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Asset holds the authoritative on-chain fields of one land record.
type Asset struct {
	ID          uint64
	Status      Status
	Owner       common.Address
	MetadataCID string
}

// Confirmation reports a finalized transaction. AssetID is non-zero only
// when the transaction created a new asset.
type Confirmation struct {
	TxHash  string
	AssetID uint64
}

// PendingTx is a submitted mutating call. The action is not complete until
// Wait reports finality; abandoning the wait does not affect the ledger-side
// outcome.
type PendingTx interface {
	Hash() string
	Wait(ctx context.Context) (*Confirmation, error)
}

// Ledger is the typed remote-call surface of the land registry contract.
// Mutating methods submit exactly one transaction and perform no retries.
type Ledger interface {
	RoleOf(ctx context.Context, addr common.Address) (Role, error)
	SelfRegister(ctx context.Context, caller Signer) (PendingTx, error)
	RegisterWithProfile(ctx context.Context, caller Signer, profileCID string) (PendingTx, error)
	CreateAsset(ctx context.Context, caller Signer, metadataCID string, price *big.Int) (PendingTx, error)
	ListForSale(ctx context.Context, caller Signer, id uint64, price *big.Int) (PendingTx, error)
	RequestBuy(ctx context.Context, caller Signer, id uint64, value *big.Int) (PendingTx, error)
	ApproveTransfer(ctx context.Context, caller Signer, id uint64, buyer common.Address, newMetadataCID string) (PendingTx, error)
	Asset(ctx context.Context, id uint64) (Asset, error)
	OwnedAssetIDs(ctx context.Context, owner common.Address) ([]uint64, error)
	AllAssetIDs(ctx context.Context) ([]uint64, error)
	ListedPrice(ctx context.Context, id uint64) (*big.Int, error)
	PendingBuyerOf(ctx context.Context, id uint64) (common.Address, error)
	ProfileCIDOf(ctx context.Context, addr common.Address) (string, error)
}

// ContentStore uploads opaque blobs and fetches them back by content hash.
// Fetch errors are a degrade signal, not an abort signal, for batch readers.
type ContentStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Fetch(ctx context.Context, cid string) ([]byte, error)
}
