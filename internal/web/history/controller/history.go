// Package controller exposes history record operations over HTTP.
package controller

import (
	"net/http"
	"strconv"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/ssfz/history-vault/internal/web/history/dto"
	"github.com/ssfz/history-vault/internal/web/history/model"
	"github.com/ssfz/history-vault/internal/web/history/service"
	"github.com/ssfz/history-vault/library/auth"
	"github.com/ssfz/history-vault/library/log"
)

// Type history controller
type Type struct {
	svc  *service.History
	keys auth.Keys
}

// New create new controller
func New(svc *service.History, keys auth.Keys) *Type {
	return &Type{
		svc:  svc,
		keys: keys,
	}
}

// MountAPI registers the history routes on the router group.
func (t *Type) MountAPI(grp gin.IRouter) {
	grp.GET("/history", t.listAll)
	grp.GET("/history/batch", t.batch)
	grp.GET("/history/categories", t.categories)
	grp.GET("/history/:id", t.load)
	grp.POST("/history", t.create)
	grp.PUT("/history/:id", t.update)
	grp.DELETE("/history/:id", t.delete)
}

func (t *Type) listAll(ctx *gin.Context) {
	items, err := t.svc.ListAll(ctx.Request.Context())
	if err != nil {
		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (t *Type) load(ctx *gin.Context) {
	item, err := t.svc.Load(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			return
		}

		abortServerErr(ctx, err)
		return
	}

	if ctx.Query("render") == "html" && item.Content != "" {
		item.ContentHTML = service.RenderMarkdown([]byte(item.Content))
	}

	ctx.JSON(http.StatusOK, item)
}

func (t *Type) create(ctx *gin.Context) {
	if !t.keys.ValidUpload(ctx.GetHeader(auth.HeaderUploadKey)) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid upload key"})
		return
	}

	req := new(model.HistoryItem)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid JSON body",
			"message": err.Error(),
		})
		return
	}

	item, err := t.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrTitleRequired) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

func (t *Type) update(ctx *gin.Context) {
	if !t.keys.ValidUpload(ctx.GetHeader(auth.HeaderUploadKey)) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid upload key"})
		return
	}

	patch := map[string]any{}
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid JSON body",
			"message": err.Error(),
		})
		return
	}

	item, err := t.svc.Update(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			return
		}

		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

func (t *Type) delete(ctx *gin.Context) {
	if !t.keys.ValidDelete(ctx.GetHeader(auth.HeaderDeleteKey)) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid delete key"})
		return
	}

	if err := t.svc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (t *Type) batch(ctx *gin.Context) {
	args := dto.QueryArgs{
		Category: ctx.Query("category"),
		Search:   ctx.Query("search"),
	}
	if limit, err := strconv.Atoi(ctx.Query("limit")); err == nil {
		args.Limit = limit
	}
	if offset, err := strconv.Atoi(ctx.Query("offset")); err == nil {
		args.Offset = offset
	}

	result, err := t.svc.Query(ctx.Request.Context(), args)
	if err != nil {
		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (t *Type) categories(ctx *gin.Context) {
	cats, err := t.svc.Categories(ctx.Request.Context())
	if err != nil {
		abortServerErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, cats)
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
