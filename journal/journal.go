package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/umbracle/ethgo"
	bolt "go.etcd.io/bbolt"

	"github.com/streamgold/sgld-deployer/helper/common"
)

/*
Bolt DB schema:

latest/
|--> (chainID+name) -> *Record (json marshalled)

history/
|--> (chainID+sequence) -> *Record (json marshalled)
*/

var (
	latestBucket  = []byte("latest")
	historyBucket = []byte("history")

	ErrNotFound = errors.New("deployment not found in journal")
)

const openTimeout = 2 * time.Second

// Record is a confirmed deployment
type Record struct {
	RunID           string        `json:"run_id"`
	Network         string        `json:"network"`
	ChainID         uint64        `json:"chain_id"`
	Name            string        `json:"name"`
	Address         ethgo.Address `json:"address"`
	TxHash          ethgo.Hash    `json:"tx_hash"`
	BlockNumber     uint64        `json:"block_number"`
	GasUsed         uint64        `json:"gas_used"`
	ConstructorArgs []string      `json:"constructor_args"`
	EncodedArgs     string        `json:"encoded_args,omitempty"`
	DeployedAt      time.Time     `json:"deployed_at"`
}

// NewRunID returns a fresh identifier grouping the records of one command run
func NewRunID() string {
	return uuid.NewString()
}

// Journal is a bolt backed store of deployments
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal database
func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal '%s': %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{latestBucket, historyBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket=%s: %w", string(b), err)
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Put stores the record as the latest deployment of its name and appends it to the history
func (j *Journal) Put(rec *Record) error {
	if rec.Name == "" {
		return errors.New("record name is empty")
	}

	if rec.DeployedAt.IsZero() {
		rec.DeployedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(latestBucket).Put(latestKey(rec.ChainID, rec.Name), raw); err != nil {
			return err
		}

		history := tx.Bucket(historyBucket)

		seq, err := history.NextSequence()
		if err != nil {
			return err
		}

		return history.Put(historyKey(rec.ChainID, seq), raw)
	})
}

// Latest returns the most recent deployment of name on the chain
func (j *Journal) Latest(chainID uint64, name string) (*Record, error) {
	var rec *Record

	err := j.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(latestBucket).Get(latestKey(chainID, name))
		if v == nil {
			return fmt.Errorf("%w: %s on chain %d", ErrNotFound, name, chainID)
		}

		return json.Unmarshal(v, &rec)
	})

	return rec, err
}

// History returns every deployment recorded for the chain, oldest first
func (j *Journal) History(chainID uint64) ([]*Record, error) {
	var records []*Record

	err := j.db.View(func(tx *bolt.Tx) error {
		prefix := common.EncodeUint64ToBytes(chainID)
		c := tx.Bucket(historyBucket).Cursor()

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec *Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			records = append(records, rec)
		}

		return nil
	})

	return records, err
}

// Chains returns the chain ids with at least one deployment
func (j *Journal) Chains() ([]uint64, error) {
	var chains []uint64

	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()

		for k, _ := c.First(); k != nil; {
			chainID := common.EncodeBytesToUint64(k[:8])
			chains = append(chains, chainID)

			// jump to the first key of the next chain
			if chainID == ^uint64(0) {
				break
			}

			k, _ = c.Seek(common.EncodeUint64ToBytes(chainID + 1))
		}

		return nil
	})

	return chains, err
}

func latestKey(chainID uint64, name string) []byte {
	return bytes.Join([][]byte{common.EncodeUint64ToBytes(chainID), []byte(name)}, nil)
}

func historyKey(chainID, seq uint64) []byte {
	return bytes.Join([][]byte{common.EncodeUint64ToBytes(chainID), common.EncodeUint64ToBytes(seq)}, nil)
}
