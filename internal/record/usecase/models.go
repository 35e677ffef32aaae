package usecase

import (
	"slices"
	"strings"
)

type AddBatchResult struct {
	RecordCount  int
	BatchID      string
	TotalRecords int
}

type DeleteRecordResult struct {
	RecordID       string
	RemainingCount int
}

type DeleteBatchResult struct {
	BatchID        string
	DeletedCount   int
	RemainingCount int
}

// LastBatchResult holds the last-batch pointer; an empty BatchID means none.
type LastBatchResult struct {
	BatchID string
}

type ImportResult struct {
	AddBatchResult
	Filename string
}

type Alias struct {
	Header string
	Field  string
}

func sortAliases(aliases []Alias) {
	slices.SortFunc(aliases, func(a, b Alias) int {
		return strings.Compare(a.Header, b.Header)
	})
}
