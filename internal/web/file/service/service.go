// Package service is the service layer of file blobs.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"

	"github.com/ssfz/history-vault/internal/web/file/dao"
	"github.com/ssfz/history-vault/internal/web/file/dto"
	"github.com/ssfz/history-vault/internal/web/file/model"
)

const fallbackContentType = "application/octet-stream"

// Files file blob service
type Files struct {
	logger  glog.Logger
	storage dao.Storage
}

// New new file service
func New(logger glog.Logger, storage dao.Storage) *Files {
	return &Files{
		logger:  logger,
		storage: storage,
	}
}

func newFileID() string {
	return fmt.Sprintf("file_%d_%s",
		time.Now().UnixMilli(),
		strings.ToLower(gutils.RandomStringWithLength(9)))
}

// Store persists an uploaded payload and returns where it can be
// fetched from. Blobs are immutable once written.
func (s *Files) Store(ctx context.Context,
	data []byte, name, mimeType string, isDownload bool,
) (*dto.UploadResult, error) {
	if len(data) == 0 {
		return nil, errors.WithStack(model.ErrNoFile)
	}

	id := newFileID()
	meta := model.Meta{
		Name:           name,
		Type:           mimeType,
		Size:           int64(len(data)),
		IsDownloadFile: isDownload,
	}
	if err := s.storage.Put(ctx, id, meta, data); err != nil {
		return nil, errors.Wrapf(err, "store file %s", id)
	}

	return &dto.UploadResult{
		URL:  "/api/file/" + id,
		ID:   id,
		Name: name,
		Type: mimeType,
		Size: meta.Size,
	}, nil
}

// Retrieve loads a blob and prepares the response headers: stored
// content type with an octet-stream fallback, stored size, and an
// attachment or inline disposition carrying the original filename.
func (s *Files) Retrieve(ctx context.Context, id string) (*dto.FileContent, error) {
	meta, data, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errors.WithStack(err)
		}
		return nil, errors.Wrapf(err, "retrieve file %s", id)
	}

	contentType := meta.Type
	if contentType == "" {
		contentType = fallbackContentType
	}

	disposition := "inline"
	if meta.IsDownloadFile {
		disposition = "attachment"
	}

	return &dto.FileContent{
		Data:        data,
		ContentType: contentType,
		Disposition: fmt.Sprintf("%s; filename=%q", disposition, meta.Name),
		Size:        meta.Size,
	}, nil
}
