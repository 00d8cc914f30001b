// Package registry is a thin typed wrapper over the LandRegistry contract.
// One method per remote call; mutating methods return a pending handle and
// never retry on their own.
package registry

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/govland/land-trade/land"
)

const landRegistryABI = `[
	{"type":"function","name":"roles","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"selfRegisterUser","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"registerUserWithCID","stateMutability":"nonpayable","inputs":[{"name":"cid","type":"string"}],"outputs":[]},
	{"type":"function","name":"registerLand","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"metadataCID","type":"string"},{"name":"price","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"listLandForSale","stateMutability":"nonpayable","inputs":[{"name":"landId","type":"uint256"},{"name":"price","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"requestToBuy","stateMutability":"payable","inputs":[{"name":"landId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"transferLandOwnership","stateMutability":"nonpayable","inputs":[{"name":"landId","type":"uint256"},{"name":"buyer","type":"address"},{"name":"newMetadataCID","type":"string"}],"outputs":[]},
	{"type":"function","name":"getLand","stateMutability":"view","inputs":[{"name":"landId","type":"uint256"}],"outputs":[{"name":"land","type":"tuple","components":[{"name":"landId","type":"uint256"},{"name":"status","type":"uint8"},{"name":"metadataCID","type":"string"}]},{"name":"owner","type":"address"}]},
	{"type":"function","name":"getOwnedLands","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getAllLandIds","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"landPrices","stateMutability":"view","inputs":[{"name":"landId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pendingBuyer","stateMutability":"view","inputs":[{"name":"landId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"userMetadataCID","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"event","name":"LandRegistered","inputs":[{"name":"landId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"metadataCID","type":"string","indexed":false}],"anonymous":false}
]`

// landRecord matches the contract's Land struct layout.
type landRecord struct {
	LandId      *big.Int
	Status      uint8
	MetadataCID string
}

type Client struct {
	eth      *ethclient.Client
	abi      abi.ABI
	contract *bind.BoundContract
	address  common.Address
	chainID  *big.Int
	log      *logrus.Entry
}

var _ land.Ledger = (*Client)(nil)

// Dial connects to the ledger RPC endpoint and binds the registry contract.
func Dial(ctx context.Context, rpcURL string, contractAddr common.Address) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the ledger at %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(landRegistryABI))
	if err != nil {
		eth.Close()
		return nil, err
	}

	return &Client{
		eth:      eth,
		abi:      parsed,
		contract: bind.NewBoundContract(contractAddr, parsed, eth, eth, eth),
		address:  contractAddr,
		chainID:  chainID,
		log:      logrus.WithField("pkg", "registry"),
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) call(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) transact(ctx context.Context, caller land.Signer, value *big.Int, method string, args ...interface{}) (land.PendingTx, error) {
	if caller == nil {
		return nil, land.ErrNotConnected
	}

	opts := &bind.TransactOpts{
		From: caller.Address(),
		Signer: func(_ common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return caller.SignTx(tx, c.chainID)
		},
		Value:   value,
		Context: ctx,
	}

	tx, err := c.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", land.ErrTransactionRejected, method, err)
	}

	c.log.WithFields(logrus.Fields{"method": method, "tx": tx.Hash().Hex()}).Debug("submitted")
	return &pendingTx{tx: tx, client: c, method: method}, nil
}

func (c *Client) RoleOf(ctx context.Context, addr common.Address) (land.Role, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "roles", addr); err != nil {
		return land.RoleNone, err
	}
	code := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	return land.Role(code), nil
}

func (c *Client) SelfRegister(ctx context.Context, caller land.Signer) (land.PendingTx, error) {
	return c.transact(ctx, caller, nil, "selfRegisterUser")
}

func (c *Client) RegisterWithProfile(ctx context.Context, caller land.Signer, profileCID string) (land.PendingTx, error) {
	return c.transact(ctx, caller, nil, "registerUserWithCID", profileCID)
}

func (c *Client) CreateAsset(ctx context.Context, caller land.Signer, metadataCID string, price *big.Int) (land.PendingTx, error) {
	if caller == nil {
		return nil, land.ErrNotConnected
	}
	return c.transact(ctx, caller, nil, "registerLand", caller.Address(), metadataCID, price)
}

func (c *Client) ListForSale(ctx context.Context, caller land.Signer, id uint64, price *big.Int) (land.PendingTx, error) {
	return c.transact(ctx, caller, nil, "listLandForSale", new(big.Int).SetUint64(id), price)
}

func (c *Client) RequestBuy(ctx context.Context, caller land.Signer, id uint64, value *big.Int) (land.PendingTx, error) {
	return c.transact(ctx, caller, value, "requestToBuy", new(big.Int).SetUint64(id))
}

func (c *Client) ApproveTransfer(ctx context.Context, caller land.Signer, id uint64, buyer common.Address, newMetadataCID string) (land.PendingTx, error) {
	return c.transact(ctx, caller, nil, "transferLandOwnership", new(big.Int).SetUint64(id), buyer, newMetadataCID)
}

func (c *Client) Asset(ctx context.Context, id uint64) (land.Asset, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getLand", new(big.Int).SetUint64(id)); err != nil {
		return land.Asset{}, err
	}

	record := *abi.ConvertType(out[0], new(landRecord)).(*landRecord)
	owner := *abi.ConvertType(out[1], new(common.Address)).(*common.Address)

	return land.Asset{
		ID:          record.LandId.Uint64(),
		Status:      land.StatusFromCode(record.Status),
		Owner:       owner,
		MetadataCID: record.MetadataCID,
	}, nil
}

func (c *Client) OwnedAssetIDs(ctx context.Context, owner common.Address) ([]uint64, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getOwnedLands", owner); err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

func (c *Client) AllAssetIDs(ctx context.Context) ([]uint64, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getAllLandIds"); err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

func (c *Client) ListedPrice(ctx context.Context, id uint64) (*big.Int, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "landPrices", new(big.Int).SetUint64(id)); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *Client) PendingBuyerOf(ctx context.Context, id uint64) (common.Address, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "pendingBuyer", new(big.Int).SetUint64(id)); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *Client) ProfileCIDOf(ctx context.Context, addr common.Address) (string, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "userMetadataCID", addr); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func toUint64s(ids []*big.Int) []uint64 {
	result := make([]uint64, len(ids))
	for i, id := range ids {
		result[i] = id.Uint64()
	}
	return result
}
