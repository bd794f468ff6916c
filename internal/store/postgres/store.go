// Package postgres adapts the document-store contract onto a single JSONB
// documents table. Cross-instance change notification rides Redis pub/sub so
// subscribers on every node re-read a collection after any write to it.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BST1120/mapper2/internal/db"
	"github.com/BST1120/mapper2/internal/store"
)

type DocStore struct {
	DB     *db.Postgres
	Redis  *redis.Client
	Logger *slog.Logger
}

func New(pg *db.Postgres, rdb *redis.Client, logger *slog.Logger) *DocStore {
	return &DocStore{DB: pg, Redis: rdb, Logger: logger}
}

// EnsureSchema creates the documents table when missing.
func (s *DocStore) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			path       text PRIMARY KEY,
			collection text NOT NULL,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	_, err = s.DB.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection)
	`)
	if err != nil {
		return fmt.Errorf("create collection index: %w", err)
	}
	return nil
}

func (s *DocStore) Get(ctx context.Context, path string) (store.Document, error) {
	var raw []byte
	err := s.DB.Pool.QueryRow(ctx, `
		SELECT data FROM documents WHERE path = $1
	`, path).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(raw)
}

func (s *DocStore) Set(ctx context.Context, path string, fields store.Document, merge bool) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	collection, _ := store.SplitPath(path)
	if merge {
		_, err = s.DB.Pool.Exec(ctx, `
			INSERT INTO documents (path, collection, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (path)
			DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = now()
		`, path, collection, raw)
	} else {
		_, err = s.DB.Pool.Exec(ctx, `
			INSERT INTO documents (path, collection, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (path)
			DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		`, path, collection, raw)
	}
	if err != nil {
		return err
	}
	s.publish(ctx, collection)
	return nil
}

func (s *DocStore) Update(ctx context.Context, path string, fields store.Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	tag, err := s.DB.Pool.Exec(ctx, `
		UPDATE documents SET data = data || $2, updated_at = now() WHERE path = $1
	`, path, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	collection, _ := store.SplitPath(path)
	s.publish(ctx, collection)
	return nil
}

func (s *DocStore) Append(ctx context.Context, collection string, fields store.Document) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	_, err = s.DB.Pool.Exec(ctx, `
		INSERT INTO documents (path, collection, data, updated_at)
		VALUES ($1, $2, $3, now())
	`, collection+"/"+id, collection, raw)
	if err != nil {
		return "", err
	}
	s.publish(ctx, collection)
	return id, nil
}

func (s *DocStore) GetAll(ctx context.Context, collection string) ([]store.Snapshot, error) {
	rows, err := s.DB.Pool.Query(ctx, `
		SELECT path, data FROM documents WHERE collection = $1 ORDER BY path
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Snapshot
	for rows.Next() {
		var path string
		var raw []byte
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		_, id := store.SplitPath(path)
		out = append(out, store.Snapshot{ID: id, Path: path, Data: doc})
	}
	return out, rows.Err()
}

// RunTransaction serializes conflicting writers per document: every read
// inside the function takes a row lock, so a competing transaction blocks
// until this one commits and then sees the advanced version.
func (s *DocStore) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	pgtx, err := s.DB.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	t := &docTx{tx: pgtx, writes: map[string]store.Document{}, order: nil}
	if err := fn(t); err != nil {
		return err
	}

	touched := map[string]struct{}{}
	for _, path := range t.order {
		raw, err := json.Marshal(t.writes[path])
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		collection, _ := store.SplitPath(path)
		_, err = pgtx.Exec(ctx, `
			INSERT INTO documents (path, collection, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (path)
			DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		`, path, collection, raw)
		if err != nil {
			return err
		}
		touched[collection] = struct{}{}
	}
	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	for collection := range touched {
		s.publish(ctx, collection)
	}
	return nil
}

func (s *DocStore) Subscribe(collection string, fn func([]store.Snapshot)) (func(), error) {
	ctx := context.Background()
	snap, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	fn(snap)

	if s.Redis == nil {
		s.Logger.Warn("doc store subscribe without redis: live updates disabled", "collection", collection)
		return func() {}, nil
	}

	ps := s.Redis.Subscribe(ctx, channelFor(collection))
	go func() {
		for range ps.Channel() {
			next, err := s.GetAll(context.Background(), collection)
			if err != nil {
				s.Logger.Warn("doc store refresh failed", "collection", collection, "err", err)
				continue
			}
			fn(next)
		}
	}()
	return func() { _ = ps.Close() }, nil
}

func (s *DocStore) publish(ctx context.Context, collection string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Publish(ctx, channelFor(collection), collection).Err(); err != nil {
		s.Logger.Warn("doc store publish failed", "collection", collection, "err", err)
	}
}

func channelFor(collection string) string {
	return "docstore:" + collection
}

type docTx struct {
	tx     pgx.Tx
	writes map[string]store.Document
	order  []string
}

func (t *docTx) Get(ctx context.Context, path string) (store.Document, error) {
	if doc, ok := t.writes[path]; ok {
		return doc, nil
	}
	var raw []byte
	err := t.tx.QueryRow(ctx, `
		SELECT data FROM documents WHERE path = $1 FOR UPDATE
	`, path).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(raw)
}

func (t *docTx) Set(path string, data store.Document) {
	if _, ok := t.writes[path]; !ok {
		t.order = append(t.order, path)
	}
	t.writes[path] = data
}

func (t *docTx) Merge(ctx context.Context, path string, fields store.Document) {
	base, ok := t.writes[path]
	if !ok {
		if existing, err := t.Get(ctx, path); err == nil {
			base = existing
		} else {
			base = store.Document{}
		}
		t.order = append(t.order, path)
	}
	for k, v := range fields {
		base[k] = v
	}
	t.writes[path] = base
}

func decodeDoc(raw []byte) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
