// Package controller exposes file upload and retrieval over HTTP.
package controller

import (
	"io"
	"net/http"
	"strconv"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/ssfz/history-vault/internal/web/file/model"
	"github.com/ssfz/history-vault/internal/web/file/service"
	"github.com/ssfz/history-vault/library/auth"
	"github.com/ssfz/history-vault/library/log"
)

// Type file controller
type Type struct {
	svc  *service.Files
	keys auth.Keys
}

// New create new controller
func New(svc *service.Files, keys auth.Keys) *Type {
	return &Type{
		svc:  svc,
		keys: keys,
	}
}

// MountAPI registers the file routes on the router group.
func (t *Type) MountAPI(grp gin.IRouter) {
	grp.POST("/upload", t.upload)
	grp.GET("/file/:id", t.retrieve)
}

func (t *Type) upload(ctx *gin.Context) {
	if !t.keys.ValidUpload(ctx.GetHeader(auth.HeaderUploadKey)) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid upload key"})
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	fp, err := header.Open()
	if err != nil {
		abortServerErr(ctx, errors.Wrap(err, "open uploaded file"))
		return
	}
	defer fp.Close() //nolint:errcheck

	data, err := io.ReadAll(fp)
	if err != nil {
		abortServerErr(ctx, errors.Wrap(err, "read uploaded file"))
		return
	}

	result, err := t.svc.Store(ctx.Request.Context(),
		data,
		header.Filename,
		header.Header.Get("Content-Type"),
		ctx.PostForm("type") == "download",
	)
	if err != nil {
		if errors.Is(err, model.ErrNoFile) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
			return
		}

		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (t *Type) retrieve(ctx *gin.Context) {
	content, err := t.svc.Retrieve(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			return
		}

		abortServerErr(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", content.Disposition)
	ctx.Header("Content-Length", strconv.FormatInt(content.Size, 10))
	ctx.Data(http.StatusOK, content.ContentType, content.Data)
}

func abortServerErr(ctx *gin.Context, err error) {
	log.Logger.Error("handle request",
		zap.String("path", ctx.Request.URL.Path),
		zap.Error(err))
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": err.Error(),
	})
}
