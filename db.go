package main

import (
	"fmt"

	"github.com/boltdb/bolt"
)

var accountBucket = []byte("accounts")

func openDB(dbpath string) *bolt.DB {
	db, err := bolt.Open(dbpath, 0660, nil)
	if err != nil {
		panic(fmt.Sprintf("unable to init the database: %v", err))
	}

	db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountBucket)
		if err != nil {
			panic(fmt.Sprintf("unable to init the database: %v", err))
		}

		return nil
	})

	return db
}
