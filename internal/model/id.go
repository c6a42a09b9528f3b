package model

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// NewRequestID generates a ULID string used to correlate diagnostics
// emitted while handling a single register or execute request.
func NewRequestID() string {
	return ulid.Make().String()
}

// RemoteObjectID addresses a value that may live on any worker in the
// execution group. PrefixID and LocalID together form the cluster-unique
// handle scoped to the owning context; Device names the compute target
// holding the value. Two ids are equal iff all three fields match, so the
// struct is comparable and used directly as a map key.
type RemoteObjectID struct {
	PrefixID uint64 `json:"prefix_id"`
	LocalID  uint64 `json:"local_id"`
	Device   string `json:"device"`
}

func (id RemoteObjectID) String() string {
	return fmt.Sprintf("%d:%d@%s", id.PrefixID, id.LocalID, id.Device)
}
