package entity

type EventKind string

const (
	EventBatchAdded    EventKind = "BATCH_ADDED"
	EventBatchDeleted  EventKind = "BATCH_DELETED"
	EventRecordDeleted EventKind = "RECORD_DELETED"
)
