package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brc20x/indexer/indexlog"
	"github.com/brc20x/indexer/model"

	bolt "go.etcd.io/bbolt"
)

// Bucket names mirror the teacher's one-bucket-per-table layout
// (node/store/db.go's bucketHeaders/bucketBlocks/bucketIndex/...), adapted
// to the indexer's schema (spec.md §6, "Persisted state layout").
var (
	bucketBalances  = []byte("balances")
	bucketDeploys   = []byte("deploys")
	bucketSupplies  = []byte("supplies")
	bucketOpLog     = []byte("op_log")
	bucketProcessed = []byte("processed_blocks")
	bucketMeta      = []byte("meta")
)

var metaKeyNextLogID = []byte("next_log_id")
var metaKeyTipHeight = []byte("tip_height")
var metaKeyHasTip = []byte("has_tip")

// Bolt is a durable Store backed by go.etcd.io/bbolt, grounded in the
// teacher's node/store.DB: one bucket per logical table, JSON-encoded rows
// for anything with optional/variable fields, fixed-width binary keys for
// anything scanned in order.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if absent) a bbolt-backed store at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		indexlog.Store.Error().Str("path", path).Err(err).Msg("failed to open bbolt store")
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBalances, bucketDeploys, bucketSupplies, bucketOpLog, bucketProcessed, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		indexlog.Store.Error().Str("path", path).Err(err).Msg("failed to initialize bbolt buckets")
		return nil, err
	}
	indexlog.Store.Info().Str("path", path).Msg("bbolt store opened")
	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error { return b.db.Close() }

func balanceKeyBytes(k BalanceKey) []byte {
	return []byte(k.Address + "\x00" + string(k.Ticker))
}

func u64Key(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func (b *Bolt) GetBalance(_ context.Context, key BalanceKey) (uint64, error) {
	var out uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBalances).Get(balanceKeyBytes(key))
		if v == nil {
			return nil
		}
		out = binary.BigEndian.Uint64(v)
		return nil
	})
	return out, err
}

func (b *Bolt) GetDeploy(_ context.Context, ticker model.Ticker) (model.Deploy, error) {
	var out model.Deploy
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDeploys).Get([]byte(ticker))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &out)
	})
	return out, err
}

func (b *Bolt) GetSupply(_ context.Context, ticker model.Ticker) (model.SupplyState, error) {
	out := model.SupplyState{Ticker: ticker}
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSupplies).Get([]byte(ticker))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &out)
	})
	return out, err
}

func (b *Bolt) TipHeight(_ context.Context) (uint64, bool, error) {
	var height uint64
	var hasTip bool
	err := b.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(metaKeyHasTip); v != nil && v[0] == 1 {
			hasTip = true
		}
		if v := meta.Get(metaKeyTipHeight); v != nil {
			height = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	return height, hasTip, err
}

func (b *Bolt) ProcessedBlock(_ context.Context, height uint64) (model.ProcessedBlock, error) {
	var out model.ProcessedBlock
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketProcessed).Get(u64Key(height))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &out)
	})
	return out, err
}

// boltTx adapts a live *bolt.Tx to the store.Tx interface for the duration
// of one BeginTx callback.
type boltTx struct{ tx *bolt.Tx }

func (t boltTx) GetBalance(_ context.Context, key BalanceKey) (uint64, error) {
	v := t.tx.Bucket(bucketBalances).Get(balanceKeyBytes(key))
	if v == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}
func (t boltTx) GetDeploy(_ context.Context, ticker model.Ticker) (model.Deploy, error) {
	v := t.tx.Bucket(bucketDeploys).Get([]byte(ticker))
	if v == nil {
		return model.Deploy{}, ErrNotFound
	}
	var out model.Deploy
	return out, json.Unmarshal(v, &out)
}
func (t boltTx) GetSupply(_ context.Context, ticker model.Ticker) (model.SupplyState, error) {
	v := t.tx.Bucket(bucketSupplies).Get([]byte(ticker))
	if v == nil {
		return model.SupplyState{Ticker: ticker}, nil
	}
	out := model.SupplyState{Ticker: ticker}
	return out, json.Unmarshal(v, &out)
}
func (t boltTx) TipHeight(_ context.Context) (uint64, bool, error) {
	meta := t.tx.Bucket(bucketMeta)
	hasTip := false
	if v := meta.Get(metaKeyHasTip); v != nil && v[0] == 1 {
		hasTip = true
	}
	var height uint64
	if v := meta.Get(metaKeyTipHeight); v != nil {
		height = binary.BigEndian.Uint64(v)
	}
	return height, hasTip, nil
}
func (t boltTx) ProcessedBlock(_ context.Context, height uint64) (model.ProcessedBlock, error) {
	v := t.tx.Bucket(bucketProcessed).Get(u64Key(height))
	if v == nil {
		return model.ProcessedBlock{}, ErrNotFound
	}
	var out model.ProcessedBlock
	return out, json.Unmarshal(v, &out)
}
func (t boltTx) PutBalance(_ context.Context, key BalanceKey, amount uint64) error {
	return t.tx.Bucket(bucketBalances).Put(balanceKeyBytes(key), u64Key(amount))
}
func (t boltTx) PutDeploy(_ context.Context, d model.Deploy) error {
	v, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketDeploys).Put([]byte(d.Ticker), v)
}
func (t boltTx) PutSupply(_ context.Context, s model.SupplyState) error {
	v, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketSupplies).Put([]byte(s.Ticker), v)
}
func (t boltTx) AppendLog(_ context.Context, entries []model.OperationLogEntry) error {
	bucket := t.tx.Bucket(bucketOpLog)
	for _, e := range entries {
		v, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := bucket.Put(u64Key(e.ID), v); err != nil {
			return err
		}
	}
	return nil
}
func (t boltTx) PutProcessedBlock(_ context.Context, pb model.ProcessedBlock) error {
	v, err := json.Marshal(pb)
	if err != nil {
		return err
	}
	if err := t.tx.Bucket(bucketProcessed).Put(u64Key(pb.Height), v); err != nil {
		return err
	}
	meta := t.tx.Bucket(bucketMeta)
	curHeight, hasTip, _ := (boltTx{t.tx}).TipHeight(context.Background())
	if !hasTip || pb.Height > curHeight {
		if err := meta.Put(metaKeyTipHeight, u64Key(pb.Height)); err != nil {
			return err
		}
		if err := meta.Put(metaKeyHasTip, []byte{1}); err != nil {
			return err
		}
	}
	return nil
}
func (t boltTx) DeleteDeploy(_ context.Context, ticker model.Ticker) error {
	return t.tx.Bucket(bucketDeploys).Delete([]byte(ticker))
}
func (t boltTx) TruncateLogAbove(_ context.Context, height uint64) error {
	bucket := t.tx.Bucket(bucketOpLog)
	c := bucket.Cursor()
	var toDelete [][]byte
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var e model.OperationLogEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		if e.BlockHeight > height {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
	}
	for _, k := range toDelete {
		if err := bucket.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
func (t boltTx) DeleteProcessedBlock(_ context.Context, height uint64) error {
	if err := t.tx.Bucket(bucketProcessed).Delete(u64Key(height)); err != nil {
		return err
	}
	meta := t.tx.Bucket(bucketMeta)
	curHeight, hasTip, _ := (boltTx{t.tx}).TipHeight(context.Background())
	if hasTip && curHeight == height {
		if height == 0 {
			return meta.Put(metaKeyHasTip, []byte{0})
		}
		return meta.Put(metaKeyTipHeight, u64Key(height-1))
	}
	return nil
}
func (t boltTx) NextLogID(_ context.Context) (uint64, error) {
	meta := t.tx.Bucket(bucketMeta)
	var id uint64 = 1
	if v := meta.Get(metaKeyNextLogID); v != nil {
		id = binary.BigEndian.Uint64(v)
	}
	if err := meta.Put(metaKeyNextLogID, u64Key(id+1)); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *Bolt) BeginTx(_ context.Context, fn func(tx Tx) error) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
	if err != nil {
		indexlog.Store.Warn().Err(err).Msg("bbolt transaction rolled back")
	}
	return err
}

var (
	_ Store = (*Bolt)(nil)
	_ Tx    = boltTx{}
)
