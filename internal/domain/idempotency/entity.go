package idempotency

import "time"

// Record maps a client-supplied idempotency key to the object a previous
// invocation of the same endpoint already produced. Rows are written once
// and never updated; replays return the stored object id instead of
// re-executing the write.
type Record struct {
	Key       string
	ActorID   string
	Endpoint  string
	ObjectID  string
	CreatedAt time.Time
}
