package entity

// MutationEvent describes one committed change to the record collection.
type MutationEvent struct {
	EventID   string
	Kind      EventKind
	BatchID   string
	RecordID  string
	Count     int
	Remaining int
	At        int64
}
