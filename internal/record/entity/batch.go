package entity

// Batch is derived from the records sharing a batchId; it is never stored.
type Batch struct {
	BatchID     string
	UploadDate  string
	RecordCount int
}
