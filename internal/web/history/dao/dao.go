// Package dao contains the data access object for history records.
package dao

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"golang.org/x/sync/errgroup"

	"github.com/ssfz/history-vault/library/db/kv"
)

// KeyPrefix namespaces every history record in the kv store.
const KeyPrefix = "history:"

// fan-out width for bulk value loads
const loadConcurrency = 16

// History dao type
type History struct {
	logger glog.Logger
	db     kv.Interface
}

// New create new dao
func New(logger glog.Logger, db kv.Interface) *History {
	return &History{
		logger: logger,
		db:     db,
	}
}

func (d *History) key(id string) string {
	return KeyPrefix + id
}

// Get returns the raw JSON document of one record.
func (d *History) Get(ctx context.Context, id string) ([]byte, error) {
	return d.db.Get(ctx, d.key(id))
}

// Put writes the raw JSON document of one record.
func (d *History) Put(ctx context.Context, id string, doc []byte) error {
	return d.db.Set(ctx, d.key(id), doc)
}

// Del removes one record, succeeding even when it does not exist.
func (d *History) Del(ctx context.Context, id string) error {
	return d.db.Del(ctx, d.key(id))
}

// Exists reports whether a record is present.
func (d *History) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := d.db.Get(ctx, d.key(id)); err != nil {
		if kv.IsNotFound(err) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}

	return true, nil
}

// LoadAll returns the raw JSON documents of every record. Values are
// fetched concurrently; keys deleted between the listing and the fetch
// are skipped rather than surfaced as errors.
func (d *History) LoadAll(ctx context.Context) ([][]byte, error) {
	keys, err := d.db.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "list history keys")
	}

	docs := make([][]byte, len(keys))
	pool, ctx := errgroup.WithContext(ctx)
	pool.SetLimit(loadConcurrency)
	for i, key := range keys {
		pool.Go(func() error {
			doc, err := d.db.Get(ctx, key)
			if err != nil {
				if kv.IsNotFound(err) {
					return nil
				}
				return errors.Wrapf(err, "load %s", key)
			}

			docs[i] = doc
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}

	loaded := docs[:0]
	for _, doc := range docs {
		if doc != nil {
			loaded = append(loaded, doc)
		}
	}

	return loaded, nil
}
