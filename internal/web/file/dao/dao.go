// Package dao contains the data access objects for file blobs.
package dao

import (
	"context"
	"encoding/base64"
	"encoding/json"

	errors "github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"

	"github.com/ssfz/history-vault/internal/web/file/model"
	"github.com/ssfz/history-vault/library/db/kv"
)

// KeyPrefix namespaces every blob in the kv store. It never collides
// with the history record prefix.
const KeyPrefix = "file:"

// Storage persists blobs. Implementations must preserve payloads
// byte-for-byte and report missing ids with model.ErrNotFound.
type Storage interface {
	Put(ctx context.Context, id string, meta model.Meta, data []byte) error
	Get(ctx context.Context, id string) (model.Meta, []byte, error)
}

var _ Storage = new(KV)

// KV stores blobs as base64-in-JSON documents in the kv store. The
// ~33% size inflation and full buffering are accepted because target
// objects are small attachments, not large media.
type KV struct {
	logger glog.Logger
	db     kv.Interface
}

// NewKV create new kv-backed blob storage
func NewKV(logger glog.Logger, db kv.Interface) *KV {
	return &KV{
		logger: logger,
		db:     db,
	}
}

func (d *KV) Put(ctx context.Context, id string, meta model.Meta, data []byte) error {
	doc, err := json.Marshal(&model.FileBlob{
		Name:           meta.Name,
		Type:           meta.Type,
		Size:           meta.Size,
		Data:           base64.StdEncoding.EncodeToString(data),
		IsDownloadFile: meta.IsDownloadFile,
	})
	if err != nil {
		return errors.Wrap(err, "marshal file blob")
	}

	if err := d.db.Set(ctx, KeyPrefix+id, doc); err != nil {
		return errors.Wrapf(err, "store file %s", id)
	}

	return nil
}

func (d *KV) Get(ctx context.Context, id string) (meta model.Meta, data []byte, err error) {
	doc, err := d.db.Get(ctx, KeyPrefix+id)
	if err != nil {
		if kv.IsNotFound(err) {
			return meta, nil, errors.WithStack(model.ErrNotFound)
		}
		return meta, nil, errors.Wrapf(err, "load file %s", id)
	}

	blob := new(model.FileBlob)
	if err := json.Unmarshal(doc, blob); err != nil {
		return meta, nil, errors.Wrapf(err, "decode file %s", id)
	}

	data, err = base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return meta, nil, errors.Wrapf(err, "decode file payload %s", id)
	}

	meta = model.Meta{
		Name:           blob.Name,
		Type:           blob.Type,
		Size:           blob.Size,
		IsDownloadFile: blob.IsDownloadFile,
	}

	return meta, data, nil
}
