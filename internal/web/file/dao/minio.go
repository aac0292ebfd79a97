package dao

import (
	"bytes"
	"context"
	"io"

	errors "github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/minio/minio-go/v7"

	"github.com/ssfz/history-vault/internal/web/file/model"
)

const (
	metaKeyFilename = "Filename"
	metaKeyDownload = "Download"
)

var _ Storage = new(Minio)

// Minio stores blobs as raw objects in a s3-compatible bucket, with
// the filename and disposition flag carried as object user metadata.
// The retrieve contract is identical to the kv backend.
type Minio struct {
	logger glog.Logger
	cli    *minio.Client
	bucket string
}

// NewMinio create new object-storage-backed blob storage
func NewMinio(logger glog.Logger, cli *minio.Client, bucket string) *Minio {
	return &Minio{
		logger: logger,
		cli:    cli,
		bucket: bucket,
	}
}

func (d *Minio) Put(ctx context.Context, id string, meta model.Meta, data []byte) error {
	download := "false"
	if meta.IsDownloadFile {
		download = "true"
	}

	_, err := d.cli.PutObject(ctx, d.bucket, id,
		bytes.NewReader(data), meta.Size,
		minio.PutObjectOptions{
			ContentType: meta.Type,
			UserMetadata: map[string]string{
				metaKeyFilename: meta.Name,
				metaKeyDownload: download,
			},
		})
	if err != nil {
		return errors.Wrapf(err, "put object %s", id)
	}

	return nil
}

func (d *Minio) Get(ctx context.Context, id string) (meta model.Meta, data []byte, err error) {
	obj, err := d.cli.GetObject(ctx, d.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return meta, nil, errors.Wrapf(err, "get object %s", id)
	}
	defer obj.Close() //nolint:errcheck

	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return meta, nil, errors.WithStack(model.ErrNotFound)
		}
		return meta, nil, errors.Wrapf(err, "stat object %s", id)
	}

	data, err = io.ReadAll(obj)
	if err != nil {
		return meta, nil, errors.Wrapf(err, "read object %s", id)
	}

	meta = model.Meta{
		Name:           info.UserMetadata[metaKeyFilename],
		Type:           info.ContentType,
		Size:           info.Size,
		IsDownloadFile: info.UserMetadata[metaKeyDownload] == "true",
	}

	return meta, data, nil
}
