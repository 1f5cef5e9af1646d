package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store with the same path and watch semantics
// as the remote database. It backs local runs (store.backend: memory) and
// every test in this repository.
type MemoryStore struct {
	mu   sync.Mutex
	root map[string]interface{}

	valueWatchers []*valueWatcher
	childWatchers []*childWatcher
}

type valueWatcher struct {
	ctx  context.Context
	path []string
	fn   func()
}

type childWatcher struct {
	ctx  context.Context
	path []string
	fn   func(ChildEvent)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: make(map[string]interface{})}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// normalize runs a value through JSON so the tree only ever holds
// map[string]interface{}, []interface{} and scalars, exactly like the
// wire representation.
func normalize(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, path string, dest interface{}) error {
	s.mu.Lock()
	node, _ := s.lookup(splitPath(path))
	raw, err := json.Marshal(node)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *MemoryStore) Set(ctx context.Context, path string, value interface{}) error {
	norm, err := normalize(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	events := s.apply(map[string]interface{}{path: norm})
	s.mu.Unlock()
	s.fire(events)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, values map[string]interface{}) error {
	prefixed := make(map[string]interface{}, len(values))
	for k, v := range values {
		p := k
		if path != "" {
			p = path + "/" + k
		}
		prefixed[p] = v
	}
	return s.UpdateMulti(ctx, prefixed)
}

func (s *MemoryStore) UpdateMulti(ctx context.Context, values map[string]interface{}) error {
	norm := make(map[string]interface{}, len(values))
	for k, v := range values {
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		norm[k] = nv
	}
	s.mu.Lock()
	events := s.apply(norm)
	s.mu.Unlock()
	s.fire(events)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *MemoryStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookup(splitPath(path))
	return ok, nil
}

func (s *MemoryStore) WatchValue(ctx context.Context, path string, fn func()) error {
	s.mu.Lock()
	s.valueWatchers = append(s.valueWatchers, &valueWatcher{ctx: ctx, path: splitPath(path), fn: fn})
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) WatchChildren(ctx context.Context, path string, fn func(ChildEvent)) error {
	segs := splitPath(path)
	s.mu.Lock()
	s.childWatchers = append(s.childWatchers, &childWatcher{ctx: ctx, path: segs, fn: fn})
	var existing []string
	if node, ok := s.lookup(segs); ok {
		if m, ok := node.(map[string]interface{}); ok {
			for k := range m {
				existing = append(existing, k)
			}
		}
	}
	s.mu.Unlock()
	// children present at subscription time are reported as added
	for _, k := range existing {
		if ctx.Err() == nil {
			fn(ChildEvent{Type: ChildAdded, Key: k})
		}
	}
	return nil
}

// lookup resolves segs against the tree. Caller holds the lock.
func (s *MemoryStore) lookup(segs []string) (interface{}, bool) {
	var node interface{} = s.root
	for _, seg := range segs {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	if node == nil {
		return nil, false
	}
	if m, ok := node.(map[string]interface{}); ok && len(m) == 0 {
		return nil, false
	}
	return node, true
}

type firing struct {
	value []func()
	child []func()
}

// apply mutates all paths under one lock hold and collects the watcher
// callbacks to invoke. Caller holds the lock; callbacks run after release.
func (s *MemoryStore) apply(values map[string]interface{}) firing {
	var out firing
	seenChild := make(map[*childWatcher]map[string]bool)
	seenValue := make(map[*valueWatcher]bool)

	for path, value := range values {
		segs := splitPath(path)

		for _, cw := range s.childWatchers {
			if cw.ctx.Err() != nil {
				continue
			}
			if len(segs) <= len(cw.path) || !hasPrefix(segs, cw.path) {
				continue
			}
			key := segs[len(cw.path)]
			if seenChild[cw] == nil {
				seenChild[cw] = make(map[string]bool)
			}
			if seenChild[cw][key] {
				continue
			}
			seenChild[cw][key] = true
			childSegs := append(append([]string{}, cw.path...), key)
			_, existedBefore := s.lookup(childSegs)
			watcher, childKey := cw, key
			out.child = append(out.child, func() {
				_, existsNow := s.snapshotExists(childSegs)
				typ := ChildChanged
				switch {
				case !existsNow:
					typ = ChildRemoved
				case !existedBefore:
					typ = ChildAdded
				}
				if watcher.ctx.Err() == nil {
					watcher.fn(ChildEvent{Type: typ, Key: childKey})
				}
			})
		}

		for _, vw := range s.valueWatchers {
			if vw.ctx.Err() != nil || seenValue[vw] {
				continue
			}
			if hasPrefix(segs, vw.path) || hasPrefix(vw.path, segs) {
				seenValue[vw] = true
				watcher := vw
				out.value = append(out.value, func() {
					if watcher.ctx.Err() == nil {
						watcher.fn()
					}
				})
			}
		}

		s.setAt(segs, value)
	}
	return out
}

func (s *MemoryStore) fire(f firing) {
	for _, fn := range f.child {
		fn()
	}
	for _, fn := range f.value {
		fn()
	}
}

func (s *MemoryStore) snapshotExists(segs []string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(segs)
}

func hasPrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if segs[i] != p {
			return false
		}
	}
	return true
}

// setAt writes value at segs, creating intermediate maps and pruning empty
// branches on delete. Caller holds the lock.
func (s *MemoryStore) setAt(segs []string, value interface{}) {
	if len(segs) == 0 {
		if m, ok := value.(map[string]interface{}); ok {
			s.root = m
		} else {
			s.root = make(map[string]interface{})
		}
		return
	}
	parents := make([]map[string]interface{}, 0, len(segs))
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		parents = append(parents, node)
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			if value == nil {
				return // nothing to delete
			}
			child = make(map[string]interface{})
			node[seg] = child
		}
		node = child
	}
	parents = append(parents, node)
	last := segs[len(segs)-1]
	if value == nil {
		delete(node, last)
	} else {
		node[last] = value
	}
	// prune now-empty intermediate maps
	for i := len(segs) - 1; i > 0; i-- {
		if len(parents[i]) == 0 {
			delete(parents[i-1], segs[i-1])
		}
	}
}

var _ Store = (*MemoryStore)(nil)

// ErrStore wraps a transport failure from the remote implementation so
// callers can surface the provider message verbatim.
func ErrStore(op, path string, err error) error {
	return fmt.Errorf("store: %s %s: %w", op, path, err)
}
