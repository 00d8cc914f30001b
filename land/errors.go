package land

import "errors"

// Error classes surfaced by the coordinator. Guard failures and upload
// failures abort an action before any ledger call is spent; a ledger
// rejection is terminal for the action and carries the ledger's reason.
var (
	// ErrNotConnected means no usable signer was supplied for a mutating call.
	ErrNotConnected = errors.New("no signer available")

	// ErrRoleViolation means the caller fails a local guard check. The same
	// condition is re-validated by the ledger; this check only avoids
	// spending a transaction the ledger would reject anyway.
	ErrRoleViolation = errors.New("role violation")

	// ErrPriceInvalid means a fiat price was non-positive or unparsable.
	ErrPriceInvalid = errors.New("invalid price")

	// ErrMetadataUpload means the content store write failed. The triggering
	// action is aborted entirely; no partial asset state is created.
	ErrMetadataUpload = errors.New("metadata upload failed")

	// ErrMetadataFetch means a metadata blob could not be read back. In batch
	// reads this is recovered per record and never surfaces.
	ErrMetadataFetch = errors.New("metadata fetch failed")

	// ErrTransactionRejected means the ledger refused the mutating call:
	// double approval, mismatched buy value, concurrent pending buyer, or a
	// guard condition re-checked on-chain.
	ErrTransactionRejected = errors.New("transaction rejected")
)
