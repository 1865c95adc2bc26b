package syncengine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// DeltaPageLimit bounds a single delta() response (spec §4.7.2 "truncated
// to a page limit").
const DeltaPageLimit = 500

// RecentWindow is the lookback used by status()'s recent_changes count
// (spec §4.7.4 "e.g. last 24h").
const RecentWindow = 24 * time.Hour

// Engine implements spec §4.7's batch apply, delta feed, conflict
// resolution and status operations.
type Engine struct {
	store  Store
	access AccessChecker
	log    zerolog.Logger
	now    func() time.Time

	mu           sync.Mutex
	lastVersion  map[objectKey]int64
}

func New(store Store, access AccessChecker, log zerolog.Logger) *Engine {
	return &Engine{
		store:       store,
		access:      access,
		log:         log.With().Str("component", "syncengine").Logger(),
		now:         time.Now,
		lastVersion: map[objectKey]int64{},
	}
}

// nextVersion returns a version for (objectType, id) strictly greater than
// whatever was last issued for it, bumping by 1 when the wall clock has not
// advanced or has regressed (spec §4.7.1).
func (e *Engine) nextVersion(objectType, id string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := objectKey{objectType, id}
	candidate := e.now().UnixMilli()
	if candidate <= e.lastVersion[key] {
		candidate = e.lastVersion[key] + 1
	}
	e.lastVersion[key] = candidate
	return candidate
}

// ApplyBatch implements spec §4.7.1. Per-op errors never abort the batch:
// every op yields exactly one OpResult.
func (e *Engine) ApplyBatch(ctx context.Context, ownerID string, batch BatchRequest) []OpResult {
	results := make([]OpResult, 0, len(batch.Operations))
	for _, op := range batch.Operations {
		results = append(results, e.applyOne(ctx, ownerID, op))
	}
	return results
}

func (e *Engine) applyOne(ctx context.Context, ownerID string, op Op) OpResult {
	if op.ObjectType == "" {
		return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: "Unknown object type"}
	}

	switch op.Operation {
	case OpCreate:
		objectID := op.ObjectID
		if objectID == "" {
			// Store auto-generates the id when the client didn't supply
			// one (spec §4.7.1 "if the store auto-generates, the
			// generated id is returned").
			objectID = xid.New().String()
		}
		version := e.nextVersion(op.ObjectType, objectID)
		obj := Object{ID: objectID, Type: op.ObjectType, OwnerID: ownerID, Data: op.Data, Version: version}
		if err := e.store.Put(ctx, obj); err != nil {
			return OpResult{ObjectID: objectID, Status: StatusError, ErrorMessage: err.Error()}
		}
		return OpResult{ObjectID: objectID, Status: StatusSuccess, NewVersion: version}

	case OpUpdate:
		current, ok, err := e.store.Get(ctx, op.ObjectType, op.ObjectID)
		if err != nil {
			return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: err.Error()}
		}
		if !ok {
			return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: "object not found"}
		}
		if op.IfMatchVersion != nil && *op.IfMatchVersion != current.Version {
			return OpResult{ObjectID: op.ObjectID, Status: StatusConflict, NewVersion: current.Version, ServerData: current.Data}
		}
		version := e.nextVersion(op.ObjectType, op.ObjectID)
		current.Data = op.Data
		current.Version = version
		if err := e.store.Put(ctx, current); err != nil {
			return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: err.Error()}
		}
		return OpResult{ObjectID: op.ObjectID, Status: StatusSuccess, NewVersion: version}

	case OpDelete:
		current, ok, err := e.store.Get(ctx, op.ObjectType, op.ObjectID)
		if err != nil {
			return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: err.Error()}
		}
		if !ok {
			return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: "object not found"}
		}
		if op.IfMatchVersion != nil && *op.IfMatchVersion != current.Version {
			return OpResult{ObjectID: op.ObjectID, Status: StatusConflict, NewVersion: current.Version, ServerData: current.Data}
		}
		if err := e.store.Delete(ctx, op.ObjectType, op.ObjectID); err != nil {
			return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: err.Error()}
		}
		return OpResult{ObjectID: op.ObjectID, Status: StatusSuccess}

	default:
		return OpResult{ObjectID: op.ObjectID, Status: StatusError, ErrorMessage: "Unknown operation"}
	}
}

// Delta implements spec §4.7.2.
func (e *Engine) Delta(ctx context.Context, callerID string, sinceTimestamp int64, objectTypes []string) (DeltaResponse, error) {
	all, err := e.store.ListSince(ctx, sinceTimestamp, objectTypes)
	if err != nil {
		return DeltaResponse{}, err
	}

	var visible []Object
	for _, obj := range all {
		ok, err := e.access.CanAccess(ctx, callerID, obj.OwnerID, obj.Type, obj.ID)
		if err != nil {
			return DeltaResponse{}, err
		}
		if ok {
			visible = append(visible, obj)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].Version < visible[j].Version })

	hasMore := false
	if len(visible) > DeltaPageLimit {
		visible = visible[:DeltaPageLimit]
		hasMore = true
	}

	current := sinceTimestamp
	for _, obj := range visible {
		if obj.Version > current {
			current = obj.Version
		}
	}
	return DeltaResponse{Changes: visible, CurrentTimestamp: current, HasMore: hasMore}, nil
}

// ResolveConflict implements spec §4.7.3: unconditional overwrite.
func (e *Engine) ResolveConflict(ctx context.Context, ownerID, objectType, objectID string, data map[string]any) (ResolveResult, error) {
	version := e.nextVersion(objectType, objectID)
	obj := Object{ID: objectID, Type: objectType, OwnerID: ownerID, Data: data, Version: version}
	if existing, ok, _ := e.store.Get(ctx, objectType, objectID); ok {
		obj.OwnerID = existing.OwnerID
	}
	if err := e.store.Put(ctx, obj); err != nil {
		return ResolveResult{}, err
	}
	return ResolveResult{Status: "resolved", NewVersion: version}, nil
}

// Status implements spec §4.7.4.
func (e *Engine) Status(ctx context.Context, objectTypes []string) ([]TypeStatus, error) {
	cutoff := e.now().Add(-RecentWindow).UnixMilli()
	results := make([]TypeStatus, 0, len(objectTypes))
	for _, t := range objectTypes {
		objs, err := e.store.ListAll(ctx, t)
		if err != nil {
			return nil, err
		}
		recent := 0
		for _, obj := range objs {
			if obj.Version > cutoff {
				recent++
			}
		}
		results = append(results, TypeStatus{ObjectType: t, TotalObjects: len(objs), RecentChanges: recent})
	}
	return results, nil
}
