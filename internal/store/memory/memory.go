// Package memory is an in-process document store. It backs unit tests and
// single-node deployments where no Postgres/Redis pair is configured.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/BST1120/mapper2/internal/store"
)

type subscriber struct {
	collection string
	fn         func([]store.Snapshot)
}

type DocStore struct {
	mu      sync.Mutex
	docs    map[string]store.Document
	subs    map[int64]subscriber
	nextSub int64
}

func New() *DocStore {
	return &DocStore{
		docs: map[string]store.Document{},
		subs: map[int64]subscriber{},
	}
}

func (s *DocStore) Get(_ context.Context, path string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(doc), nil
}

func (s *DocStore) Set(_ context.Context, path string, fields store.Document, merge bool) error {
	s.mu.Lock()
	existing, ok := s.docs[path]
	if merge && ok {
		next := clone(existing)
		for k, v := range fields {
			next[k] = v
		}
		s.docs[path] = clone(next)
	} else {
		s.docs[path] = clone(fields)
	}
	collection, _ := store.SplitPath(path)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *DocStore) Update(_ context.Context, path string, fields store.Document) error {
	s.mu.Lock()
	existing, ok := s.docs[path]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	next := clone(existing)
	for k, v := range fields {
		next[k] = v
	}
	s.docs[path] = next
	collection, _ := store.SplitPath(path)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *DocStore) Append(_ context.Context, collection string, fields store.Document) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.docs[collection+"/"+id] = clone(fields)
	s.mu.Unlock()

	s.notify(collection)
	return id, nil
}

func (s *DocStore) GetAll(_ context.Context, collection string) ([]store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection), nil
}

// RunTransaction serializes all transactions behind one mutex; reads inside
// the function see committed state, writes are buffered and applied only when
// the function returns nil.
func (s *DocStore) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	tx := &memTx{store: s, writes: map[string]store.Document{}}
	err := fn(tx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	touched := map[string]struct{}{}
	for path, doc := range tx.writes {
		s.docs[path] = doc
		collection, _ := store.SplitPath(path)
		touched[collection] = struct{}{}
	}
	s.mu.Unlock()

	for collection := range touched {
		s.notify(collection)
	}
	return nil
}

func (s *DocStore) Subscribe(collection string, fn func([]store.Snapshot)) (func(), error) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = subscriber{collection: collection, fn: fn}
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	fn(snap)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

func (s *DocStore) notify(collection string) {
	s.mu.Lock()
	var fns []func([]store.Snapshot)
	for _, sub := range s.subs {
		if sub.collection == collection {
			fns = append(fns, sub.fn)
		}
	}
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *DocStore) snapshotLocked(collection string) []store.Snapshot {
	var out []store.Snapshot
	for path, doc := range s.docs {
		col, id := store.SplitPath(path)
		if col != collection {
			continue
		}
		out = append(out, store.Snapshot{ID: id, Path: path, Data: clone(doc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memTx struct {
	store  *DocStore
	writes map[string]store.Document
}

func (t *memTx) Get(_ context.Context, path string) (store.Document, error) {
	if doc, ok := t.writes[path]; ok {
		return clone(doc), nil
	}
	doc, ok := t.store.docs[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(doc), nil
}

func (t *memTx) Set(path string, data store.Document) {
	t.writes[path] = clone(data)
}

func (t *memTx) Merge(_ context.Context, path string, fields store.Document) {
	base, ok := t.writes[path]
	if !ok {
		if committed, exists := t.store.docs[path]; exists {
			base = clone(committed)
		} else {
			base = store.Document{}
		}
	}
	for k, v := range fields {
		base[k] = v
	}
	t.writes[path] = base
}

// clone round-trips through JSON so stored documents never alias caller maps
// and always look like decoded wire data.
func clone(doc store.Document) store.Document {
	if doc == nil {
		return store.Document{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		out := store.Document{}
		for k, v := range doc {
			out[k] = v
		}
		return out
	}
	var out store.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		out = store.Document{}
		for k, v := range doc {
			out[k] = v
		}
	}
	return out
}
