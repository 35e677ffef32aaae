package usecase

import (
	"slices"
	"strings"
	"time"

	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

// DeriveBatches groups records by batchId, newest upload first. A batch takes
// the uploadDate of the first record seen for it, or now when that record has
// none. Records without a batchId are ignored.
func DeriveBatches(records []entity.Record, now time.Time) []entity.Batch {
	index := make(map[string]int)
	batches := make([]entity.Batch, 0)

	for _, rec := range records {
		batchID := rec.BatchID()
		if batchID == "" {
			continue
		}

		i, ok := index[batchID]
		if !ok {
			uploadDate := rec.UploadDate()
			if uploadDate == "" {
				uploadDate = entity.FormatTime(now)
			}
			i = len(batches)
			index[batchID] = i
			batches = append(batches, entity.Batch{BatchID: batchID, UploadDate: uploadDate})
		}
		batches[i].RecordCount++
	}

	slices.SortStableFunc(batches, func(a, b entity.Batch) int {
		if c := parseUploadDate(b.UploadDate).Compare(parseUploadDate(a.UploadDate)); c != 0 {
			return c
		}
		return strings.Compare(a.BatchID, b.BatchID)
	})

	return batches
}

// FindNewestBatchID returns the batch holding the most recent uploadDate among
// records, or "" when no record carries both a batchId and an uploadDate.
func FindNewestBatchID(records []entity.Record) string {
	var newestID string
	var newest time.Time

	for _, rec := range records {
		batchID, uploadDate := rec.BatchID(), rec.UploadDate()
		if batchID == "" || uploadDate == "" {
			continue
		}

		at := parseUploadDate(uploadDate)
		switch {
		case newestID == "":
		case at.After(newest):
		case at.Equal(newest) && batchID < newestID:
		default:
			continue
		}
		newestID, newest = batchID, at
	}

	return newestID
}

// parseUploadDate returns the zero time for values that are not RFC 3339,
// which sorts them after every valid date.
func parseUploadDate(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
