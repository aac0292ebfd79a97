// Package service is the service layer of history records.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"

	"github.com/ssfz/history-vault/internal/web/history/dao"
	"github.com/ssfz/history-vault/internal/web/history/dto"
	"github.com/ssfz/history-vault/internal/web/history/model"
	"github.com/ssfz/history-vault/library/db/kv"
)

const defaultQueryLimit = 100

// History history record service
type History struct {
	logger glog.Logger
	dao    *dao.History
}

// New new history service
func New(logger glog.Logger, dao *dao.History) *History {
	return &History{
		logger: logger,
		dao:    dao,
	}
}

func newHistoryID() string {
	return fmt.Sprintf("hist_%d_%s",
		time.Now().UnixMilli(),
		strings.ToLower(gutils.RandomStringWithLength(9)))
}

// Create validates and stores a new record, returning it with the
// generated id and stamped times.
func (s *History) Create(ctx context.Context, req *model.HistoryItem) (*model.HistoryItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.WithStack(model.ErrTitleRequired)
	}

	now := time.Now().UnixMilli()
	item := &model.HistoryItem{
		ID:           newHistoryID(),
		Title:        req.Title,
		URL:          req.URL,
		Description:  req.Description,
		Category:     req.Category,
		Tags:         req.Tags,
		Content:      req.Content,
		Attachments:  req.Attachments,
		Files:        req.Files,
		DownloadFile: req.DownloadFile,
		Timestamp:    req.Timestamp,
		CreatedAt:    now,
		UpdatedAt:    now,
		Author:       req.Author,
	}
	if item.Timestamp == 0 {
		item.Timestamp = now
	}
	if item.Author == "" {
		item.Author = "anonymous"
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Attachments == nil {
		item.Attachments = []string{}
	}
	if item.Files == nil {
		item.Files = []model.FileRef{}
	}

	doc, err := json.Marshal(item)
	if err != nil {
		return nil, errors.Wrap(err, "marshal history item")
	}
	if err := s.dao.Put(ctx, item.ID, doc); err != nil {
		return nil, errors.Wrapf(err, "store history item %s", item.ID)
	}

	return item, nil
}

// Load returns one record by id.
func (s *History) Load(ctx context.Context, id string) (*model.HistoryItem, error) {
	doc, err := s.dao.Get(ctx, id)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}
		return nil, errors.Wrapf(err, "load history item %s", id)
	}

	item := new(model.HistoryItem)
	if err := json.Unmarshal(doc, item); err != nil {
		return nil, errors.Wrapf(err, "decode history item %s", id)
	}

	return item, nil
}

// Update shallow-merges the patch over the stored record. Patched
// fields overwrite, omitted fields are retained; the id can never be
// changed through a patch.
func (s *History) Update(ctx context.Context, id string, patch map[string]any) (*model.HistoryItem, error) {
	doc, err := s.dao.Get(ctx, id)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}
		return nil, errors.Wrapf(err, "load history item %s", id)
	}

	merged := map[string]any{}
	if err := json.Unmarshal(doc, &merged); err != nil {
		return nil, errors.Wrapf(err, "decode history item %s", id)
	}

	var prevUpdatedAt int64
	if v, ok := merged["updated_at"].(float64); ok {
		prevUpdatedAt = int64(v)
	}

	for key, val := range patch {
		merged[key] = val
	}

	// the clock may not tick between two writes of the same record,
	// but updated_at must still strictly increase
	now := time.Now().UnixMilli()
	if now <= prevUpdatedAt {
		now = prevUpdatedAt + 1
	}
	merged["id"] = id
	merged["updated_at"] = now

	updated, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.Wrap(err, "marshal merged item")
	}
	if err := s.dao.Put(ctx, id, updated); err != nil {
		return nil, errors.Wrapf(err, "store history item %s", id)
	}

	item := new(model.HistoryItem)
	if err := json.Unmarshal(updated, item); err != nil {
		return nil, errors.Wrapf(err, "decode merged item %s", id)
	}

	return item, nil
}

// Delete removes a record. Deleting an absent id succeeds, so the
// operation is idempotent.
func (s *History) Delete(ctx context.Context, id string) error {
	if err := s.dao.Del(ctx, id); err != nil {
		return errors.Wrapf(err, "delete history item %s", id)
	}

	return nil
}

// ListAll returns every record sorted by timestamp, newest first.
func (s *History) ListAll(ctx context.Context) ([]*model.HistoryItem, error) {
	docs, err := s.dao.LoadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load history items")
	}

	items := make([]*model.HistoryItem, 0, len(docs))
	for _, doc := range docs {
		item := new(model.HistoryItem)
		if err := json.Unmarshal(doc, item); err != nil {
			return nil, errors.Wrap(err, "decode history item")
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	return items, nil
}

// Query filters and paginates records. Category matching is OR-of-OR
// over comma-split trimmed lists; search is a case-insensitive
// substring match over title, description, and content. Both filters
// are AND-ed. Total counts the filtered set before pagination.
func (s *History) Query(ctx context.Context, args dto.QueryArgs) (*dto.QueryResult, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	filtered := make([]*model.HistoryItem, 0, len(all))
	for _, item := range all {
		if args.Category != "" && !matchCategory(item.Category, args.Category) {
			continue
		}
		if args.Search != "" && !matchSearch(item, args.Search) {
			continue
		}

		filtered = append(filtered, item)
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	offset := args.Offset
	if offset < 0 {
		offset = 0
	}

	page := make([]*model.HistoryItem, 0, limit)
	if offset < len(filtered) {
		end := min(offset+limit, len(filtered))
		page = append(page, filtered[offset:end]...)
	}

	return &dto.QueryResult{
		Items:  page,
		Total:  len(filtered),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Categories returns the distinct trimmed category names over all
// records, sorted alphabetically.
func (s *History) Categories(ctx context.Context) ([]string, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seen := map[string]bool{}
	cats := []string{}
	for _, item := range all {
		for _, cat := range splitCategories(item.Category) {
			if !seen[cat] {
				seen[cat] = true
				cats = append(cats, cat)
			}
		}
	}
	sort.Strings(cats)

	return cats, nil
}

func splitCategories(joined string) (cats []string) {
	for cat := range strings.SplitSeq(joined, ",") {
		if cat = strings.TrimSpace(cat); cat != "" {
			cats = append(cats, cat)
		}
	}

	return cats
}

func matchCategory(itemCats, filterCats string) bool {
	have := map[string]bool{}
	for _, cat := range splitCategories(itemCats) {
		have[cat] = true
	}

	for _, want := range splitCategories(filterCats) {
		if have[want] {
			return true
		}
	}

	return false
}

func matchSearch(item *model.HistoryItem, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(item.Title), search) ||
		strings.Contains(strings.ToLower(item.Description), search) ||
		strings.Contains(strings.ToLower(item.Content), search)
}
