// Package dto provides data transfer object.
package dto

import "github.com/ssfz/history-vault/internal/web/history/model"

// QueryArgs filter and pagination arguments for a batch query.
type QueryArgs struct {
	Limit, Offset    int
	Category, Search string
}

// QueryResult one page of records plus the pre-pagination total.
type QueryResult struct {
	Items  []*model.HistoryItem `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}
