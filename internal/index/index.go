// Package index records scanned resources in PostgreSQL.
package index

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/pgscan/internal/db"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pgscan_resource (
	id         bigserial PRIMARY KEY,
	package    text        NOT NULL,
	name       text        NOT NULL,
	location   text        NOT NULL,
	scanned_at timestamptz NOT NULL DEFAULT now(),
	UNIQUE (package, location)
)`

const upsertSQL = `
INSERT INTO pgscan_resource (package, name, location, scanned_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (package, location) DO UPDATE
SET name = EXCLUDED.name, scanned_at = EXCLUDED.scanned_at
RETURNING id`

// Entry is one stored resource.
type Entry struct {
	ID        int64     `db:"id"`
	Package   string    `db:"package"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	ScannedAt time.Time `db:"scanned_at"`
}

// Resource returns the scanned resource the entry records.
func (e Entry) Resource() pgscan.Resource {
	return pgscan.Resource{Location: e.Location, Name: e.Name}
}

// Store persists resources per package through a db.Template.
type Store struct {
	tmpl *db.Template
	now  func() time.Time
}

// NewStore creates a store over tmpl.
// Panics if tmpl is nil.
func NewStore(tmpl *db.Template) *Store {
	if tmpl == nil {
		panic("tmpl cannot be nil")
	}
	return &Store{tmpl: tmpl, now: time.Now}
}

// EnsureSchema creates the resource table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.tmpl.Update(ctx, schemaSQL)
	return err
}

// Upsert records resources under pkg, refreshing entries that already
// exist, and returns their ids in input order.
func (s *Store) Upsert(ctx context.Context, pkg string, resources []pgscan.Resource) ([]int64, error) {
	scannedAt := s.now()
	ids := make([]int64, 0, len(resources))
	err := s.tmpl.InTransaction(ctx, func(ctx context.Context) error {
		for _, r := range resources {
			id, err := s.tmpl.UpdateAndReturnGeneratedKey(ctx, upsertSQL, pkg, r.Name, r.Location, scannedAt)
			if err != nil {
				return fmt.Errorf("index %s: %w", r.Location, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Replace makes resources the complete set stored for pkg, removing every
// other entry of the package, atomically. It returns the number of entries
// removed.
func (s *Store) Replace(ctx context.Context, pkg string, resources []pgscan.Resource) (int64, error) {
	var removed int64
	err := s.tmpl.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		if removed, err = s.tmpl.Update(ctx, "DELETE FROM pgscan_resource WHERE package = $1", pkg); err != nil {
			return err
		}
		_, err = s.Upsert(ctx, pkg, resources)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of entries stored for pkg.
func (s *Store) Count(ctx context.Context, pkg string) (int64, error) {
	return s.tmpl.QueryForNumber(ctx, "SELECT count(*) FROM pgscan_resource WHERE package = $1", pkg)
}

// List returns the entries of pkg ordered by name, then location.
func (s *Store) List(ctx context.Context, pkg string) ([]Entry, error) {
	return db.QueryForList(ctx, s.tmpl,
		`SELECT id, package, name, location, scanned_at
		 FROM pgscan_resource WHERE package = $1
		 ORDER BY name, location`,
		db.StructMapper[Entry](), pkg)
}

// Get returns the entry stored at location for pkg, or an error wrapping
// pgscan.ErrEmptyResult.
func (s *Store) Get(ctx context.Context, pkg, location string) (Entry, error) {
	return db.QueryForObject(ctx, s.tmpl,
		`SELECT id, package, name, location, scanned_at
		 FROM pgscan_resource WHERE package = $1 AND location = $2`,
		db.StructMapper[Entry](), pkg, location)
}
