// Package syncengine implements the offline-first batch sync protocol of
// spec §4.7: versioned object apply with optimistic concurrency, a delta
// feed keyed by a monotonic version cursor, and manual conflict
// resolution.
package syncengine

// OpKind is the operation requested for a single object in a batch.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// OpStatus is the per-operation outcome reported back to the client.
type OpStatus string

const (
	StatusSuccess  OpStatus = "success"
	StatusConflict OpStatus = "conflict"
	StatusError    OpStatus = "error"
)

// Op is a single mutation within a BatchRequest (spec §4.7.1).
type Op struct {
	ObjectID         string         `json:"object_id"`
	ObjectType       string         `json:"object_type"`
	Operation        OpKind         `json:"operation"`
	Data             map[string]any `json:"data,omitempty"`
	IfMatchVersion   *int64         `json:"if_match_version,omitempty"`
}

// BatchRequest is the wire payload for a client's offline mutation batch.
type BatchRequest struct {
	ClientID   string `json:"client_id"`
	Operations []Op   `json:"operations"`
}

// OpResult is returned once per Op, in order, and never aborts the batch
// (spec §4.7.1 "per-op errors never abort the batch").
type OpResult struct {
	ObjectID     string         `json:"object_id"`
	Status       OpStatus       `json:"status"`
	NewVersion   int64          `json:"new_version,omitempty"`
	ServerData   map[string]any `json:"server_data,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Object is a stored SyncVersionedObject (spec §3.1 abstract type): every
// sync-eligible domain type (goal, task, project, assistant profile,
// onboarding state, preferences) is represented this way. ObjectType is an
// open string set, not a closed enum, so new kinds (assistant profiles,
// onboarding state) ride the same protocol without a schema change
// (SPEC_FULL.md §10).
type Object struct {
	ID         string         `json:"object_id"`
	Type       string         `json:"object_type"`
	OwnerID    string         `json:"owner_id"`
	Data       map[string]any `json:"data"`
	Version    int64          `json:"version"`
	Deleted    bool           `json:"deleted,omitempty"`
}

// DeltaResponse is returned by the delta feed (spec §4.7.2).
type DeltaResponse struct {
	Changes         []Object `json:"changes"`
	CurrentTimestamp int64   `json:"current_timestamp"`
	HasMore         bool     `json:"has_more"`
}

// ResolveResult is returned by resolve_conflict (spec §4.7.3).
type ResolveResult struct {
	Status     string `json:"status"`
	NewVersion int64  `json:"new_version"`
}

// TypeStatus is a single entry of status()'s per-type counts (spec §4.7.4).
type TypeStatus struct {
	ObjectType    string `json:"object_type"`
	TotalObjects  int    `json:"total_objects"`
	RecentChanges int    `json:"recent_changes"`
}
