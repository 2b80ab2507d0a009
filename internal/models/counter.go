package models

// Counter is a named monotonic sequence row. One document per sequence,
// incremented atomically by the storage engine.
type Counter struct {
	ID  string `json:"id" bson:"_id"` // sequence name, e.g. "serviceRequest"
	Seq int64  `json:"seq" bson:"seq"`
}
