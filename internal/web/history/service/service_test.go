package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssfz/history-vault/internal/web/history/dao"
	"github.com/ssfz/history-vault/internal/web/history/dto"
	"github.com/ssfz/history-vault/internal/web/history/model"
	"github.com/ssfz/history-vault/library/db/kv"
	"github.com/ssfz/history-vault/library/log"
)

func newTestService() *History {
	return New(log.Logger.Named("test"),
		dao.New(log.Logger.Named("test-dao"), kv.NewMemory()))
}

func TestCreateDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	item, err := svc.Create(ctx, &model.HistoryItem{Title: "T", Timestamp: 1000})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(item.ID, "hist_"))
	require.Equal(t, int64(1000), item.Timestamp)
	require.Equal(t, item.CreatedAt, item.UpdatedAt)
	require.Equal(t, "anonymous", item.Author)
	require.NotNil(t, item.Tags)
	require.NotNil(t, item.Attachments)
	require.NotNil(t, item.Files)

	// stable on subsequent loads
	loaded, err := svc.Load(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, item, loaded)
}

func TestCreateRequiresTitle(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	_, err := svc.Create(context.Background(), &model.HistoryItem{Title: "   "})
	require.ErrorIs(t, err, model.ErrTitleRequired)
}

func TestCreateUniqueIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	seen := map[string]bool{}
	for range 50 {
		item, err := svc.Create(ctx, &model.HistoryItem{Title: "T"})
		require.NoError(t, err)
		require.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestEmptyUpdateOnlyTouchesUpdatedAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.Create(ctx, &model.HistoryItem{
		Title:       "T",
		Description: "desc",
		Category:    "a,b",
		Tags:        []string{"x"},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, map[string]any{})
	require.NoError(t, err)
	require.Greater(t, updated.UpdatedAt, created.UpdatedAt)

	updated.UpdatedAt = created.UpdatedAt
	require.Equal(t, created, updated)
}

func TestUpdateMergesAndPinsID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.Create(ctx, &model.HistoryItem{
		Title:       "T",
		Description: "keep me",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, map[string]any{
		"title": "T2",
		"id":    "hist_evil_id",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "T2", updated.Title)
	require.Equal(t, "keep me", updated.Description)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateMissing(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	_, err := svc.Update(context.Background(), "hist_nope", map[string]any{"title": "x"})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.Create(ctx, &model.HistoryItem{Title: "T"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Load(ctx, created.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListAllSortedByTimestampDesc(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	for _, ts := range []int64{300, 100, 200} {
		_, err := svc.Create(ctx, &model.HistoryItem{Title: "T", Timestamp: ts})
		require.NoError(t, err)
	}

	items, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, int64(300), items[0].Timestamp)
	require.Equal(t, int64(200), items[1].Timestamp)
	require.Equal(t, int64(100), items[2].Timestamp)
}

func TestQueryCategoryOrOfOr(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	item, err := svc.Create(ctx, &model.HistoryItem{Title: "T", Category: "a, b"})
	require.NoError(t, err)

	result, err := svc.Query(ctx, dto.QueryArgs{Category: "b,c"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, item.ID, result.Items[0].ID)

	result, err = svc.Query(ctx, dto.QueryArgs{Category: "x,y"})
	require.NoError(t, err)
	require.Equal(t, 0, result.Total)
	require.Empty(t, result.Items)
}

func TestQuerySearchCaseInsensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Create(ctx, &model.HistoryItem{Title: "Hello World"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.HistoryItem{Title: "Other", Content: "say HELLO to markdown"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.HistoryItem{Title: "nope"})
	require.NoError(t, err)

	result, err := svc.Query(ctx, dto.QueryArgs{Search: "hello"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
}

func TestQueryFiltersAreANDed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Create(ctx, &model.HistoryItem{Title: "match", Category: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.HistoryItem{Title: "match", Category: "b"})
	require.NoError(t, err)

	result, err := svc.Query(ctx, dto.QueryArgs{Category: "a", Search: "match"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
}

func TestQueryPaginationTilesListAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	for ts := int64(1); ts <= 10; ts++ {
		_, err := svc.Create(ctx, &model.HistoryItem{Title: "T", Timestamp: ts})
		require.NoError(t, err)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)

	const limit = 3
	var paged []*model.HistoryItem
	for offset := 0; ; offset += limit {
		result, err := svc.Query(ctx, dto.QueryArgs{Limit: limit, Offset: offset})
		require.NoError(t, err)
		require.LessOrEqual(t, len(result.Items), limit)
		require.Equal(t, len(all), result.Total)
		if len(result.Items) == 0 {
			break
		}
		paged = append(paged, result.Items...)
	}

	require.Equal(t, all, paged)
}

func TestQueryDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	result, err := svc.Query(ctx, dto.QueryArgs{})
	require.NoError(t, err)
	require.Equal(t, defaultQueryLimit, result.Limit)
	require.Equal(t, 0, result.Offset)
	require.NotNil(t, result.Items)
}

func TestCategories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Create(ctx, &model.HistoryItem{Title: "T", Category: "b, a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.HistoryItem{Title: "T", Category: "a,c"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.HistoryItem{Title: "T"})
	require.NoError(t, err)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, cats)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	html := RenderMarkdown([]byte("# Title\n\nsome *emphasis*"))
	require.Contains(t, html, "<h1")
	require.Contains(t, html, "<em>emphasis</em>")
}
