package store

import "context"

// ChildEventType mirrors the store's child-level change notifications.
type ChildEventType int

const (
	ChildAdded ChildEventType = iota
	ChildChanged
	ChildRemoved
)

// ChildEvent reports that a direct child of a watched path changed.
type ChildEvent struct {
	Type ChildEventType
	Key  string
}

// Store is the document store contract. Paths are slash-separated
// ("users/abc/chatUser/xyz"). Get into a pointer target leaves it nil when
// the path is absent; deleting is writing nil. UpdateMulti applies every
// listed path in one atomic call; atomicity is never provided across calls.
//
// Watches live until ctx is cancelled. A broken subscription is logged by
// the implementation and not re-established; there is no retry anywhere.
type Store interface {
	Get(ctx context.Context, path string, dest interface{}) error
	Set(ctx context.Context, path string, value interface{}) error
	Update(ctx context.Context, path string, values map[string]interface{}) error
	UpdateMulti(ctx context.Context, values map[string]interface{}) error
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)

	// WatchValue invokes fn after any change at or below path. The event
	// payload is deliberately not delivered; observers re-read what they
	// need.
	WatchValue(ctx context.Context, path string, fn func()) error

	// WatchChildren invokes fn for child-level changes directly under path.
	// Children existing at subscription time are reported as ChildAdded.
	WatchChildren(ctx context.Context, path string, fn func(ChildEvent)) error
}
