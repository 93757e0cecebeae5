package models

// Index names a secondary index of the keyed table.
type Index string

const (
	// IndexParent groups children under their parent (gsi1).
	IndexParent Index = "gsi1"
	// IndexRole groups accounts by role (gsi2).
	IndexRole Index = "gsi2"
)

// EntryQuery selects ledger entries from one partition.
type EntryQuery struct {
	PK         string
	AfterSK    string // exclusive start; empty starts at the beginning
	Descending bool
	Limit      int
}

// IndexQuery selects profiles from one partition of a secondary index, ordered by index sort key.
type IndexQuery struct {
	Index   Index
	PK      string
	AfterSK string
	Limit   int
}

// ScanQuery walks every profile item ordered by partition key.
type ScanQuery struct {
	AfterPK string
	Limit   int
}
