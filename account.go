package main

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/boltdb/bolt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a custodial wallet held by this service. It signs ledger
// transactions for one address; keys never leave the local database.
type Account struct {
	key *ecdsa.PrivateKey
}

func (a *Account) Address() common.Address {
	return crypto.PubkeyToAddress(a.key.PublicKey)
}

func (a *Account) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), a.key)
}

func createAccount() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}

	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(accountBucket)
		return b.Put(accountKey(address), crypto.FromECDSA(key))
	})
	if err != nil {
		return "", err
	}

	return address, nil
}

func getAccount(address string) (*Account, error) {
	var val []byte

	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(accountBucket)
		val = b.Get(accountKey(address))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get the account from db: %s", err)
	}

	if val == nil {
		return nil, fmt.Errorf("account %s not registered", address)
	}

	key, err := crypto.ToECDSA(val)
	if err != nil {
		return nil, fmt.Errorf("invalid key material for %s: %s", address, err)
	}

	return &Account{key: key}, nil
}

func accountKey(address string) []byte {
	return []byte(strings.ToLower(address))
}
