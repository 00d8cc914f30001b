package registry

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/govland/land-trade/land"
)

// pendingTx wraps a submitted transaction until finality. The transaction
// lands or reverts independent of whether anyone keeps waiting on it.
type pendingTx struct {
	tx     *types.Transaction
	client *Client
	method string
}

func (p *pendingTx) Hash() string {
	return p.tx.Hash().Hex()
}

// Wait blocks until the transaction is mined. A reverted execution maps to
// land.ErrTransactionRejected; the ledger's arbitration (concurrent buyers,
// double approval) surfaces here, not as a new pending state.
func (p *pendingTx) Wait(ctx context.Context) (*land.Confirmation, error) {
	receipt, err := bind.WaitMined(ctx, p.client.eth, p.tx)
	if err != nil {
		return nil, fmt.Errorf("failed to await %s finality: %w", p.method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s reverted in block %s", land.ErrTransactionRejected, p.method, receipt.BlockNumber)
	}

	conf := &land.Confirmation{TxHash: p.tx.Hash().Hex()}
	if id, ok := assetIDFromLogs(p.client.abi, receipt.Logs); ok {
		conf.AssetID = id
	}
	return conf, nil
}

// assetIDFromLogs recovers the new asset id from the LandRegistered event,
// where the id is the first indexed topic.
func assetIDFromLogs(contractABI abi.ABI, logs []*types.Log) (uint64, bool) {
	event, ok := contractABI.Events["LandRegistered"]
	if !ok {
		return 0, false
	}
	for _, entry := range logs {
		if len(entry.Topics) > 1 && entry.Topics[0] == event.ID {
			return new(big.Int).SetBytes(entry.Topics[1].Bytes()).Uint64(), true
		}
	}
	return 0, false
}
