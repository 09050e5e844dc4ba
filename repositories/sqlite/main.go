package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"importer/models"
	"importer/models/indexes"
	"importer/repositories"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS assemblies (
	genome_ref TEXT PRIMARY KEY,
	contigs    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS variations (
	id         TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	doc        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reports (
	name       TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	doc        TEXT NOT NULL
);
`

// Store keeps assemblies, variations and reports in a single SQLite file, for offline use.
type Store struct {
	conn   *sql.DB
	logger *log.Logger
}

func Open(path string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between concurrent imports
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &Store{conn: conn, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return &models.StoreError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *Store) ContigsFor(ctx context.Context, genomeRef string) (models.ContigSet, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx, "SELECT contigs FROM assemblies WHERE genome_ref = ?", genomeRef).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.AssemblyLookupError{GenomeRef: genomeRef, NotFound: true, Err: models.ErrObjectNotFound}
	}
	if err != nil {
		return nil, &models.AssemblyLookupError{GenomeRef: genomeRef, Err: err}
	}

	var contigs []string
	if err := json.Unmarshal([]byte(raw), &contigs); err != nil {
		return nil, &models.AssemblyLookupError{GenomeRef: genomeRef, Err: err}
	}
	return models.NewContigSet(contigs...), nil
}

func (s *Store) PutAssembly(ctx context.Context, genomeRef string, contigs []string) error {
	raw, err := json.Marshal(contigs)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO assemblies (genome_ref, contigs, created_at) VALUES (?, ?, ?)
		ON CONFLICT(genome_ref) DO UPDATE SET contigs = excluded.contigs, created_at = excluded.created_at`,
		genomeRef, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &models.StoreError{Op: "put assembly " + genomeRef, Err: err}
	}
	s.logger.Infof("Registered assembly %s with %d contigs", genomeRef, len(contigs))
	return nil
}

func (s *Store) SaveVariation(ctx context.Context, variation *indexes.Variation) (string, error) {
	if variation.Id == "" {
		variation.Id = uuid.NewString()
	}
	if variation.CreatedAt == "" {
		variation.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	version, err := s.upsert(ctx, "variations", "id", variation.Id, variation)
	if err != nil {
		return "", &models.StoreError{Op: "save variation " + variation.Name, Err: err}
	}
	return fmt.Sprintf("%s/%s/%d", indexes.VariationsIndex, variation.Id, version), nil
}

func (s *Store) GetVariation(ctx context.Context, id string) (*indexes.Variation, error) {
	var variation indexes.Variation
	if err := s.get(ctx, "variations", "id", id, &variation); err != nil {
		return nil, &models.StoreError{Op: "get variation " + id, Err: err}
	}
	return &variation, nil
}

func (s *Store) PublishReport(ctx context.Context, report *indexes.Report) (string, error) {
	if report.CreatedAt == "" {
		report.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	version, err := s.upsert(ctx, "reports", "name", report.Name, report)
	if err != nil {
		return "", &models.StoreError{Op: "publish report " + report.Name, Err: err}
	}
	return fmt.Sprintf("%s/%s/%d", indexes.ReportsIndex, report.Name, version), nil
}

func (s *Store) GetReport(ctx context.Context, name string) (*indexes.Report, error) {
	var report indexes.Report
	if err := s.get(ctx, "reports", "name", name, &report); err != nil {
		return nil, &models.StoreError{Op: "get report " + name, Err: err}
	}
	return &report, nil
}

// upsert stores doc under key and returns its new version, starting at 1.
func (s *Store) upsert(ctx context.Context, table string, keyColumn string, key string, doc interface{}) (int, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, version, doc) VALUES (?, 1, ?)
		ON CONFLICT(%[2]s) DO UPDATE SET version = %[1]s.version + 1, doc = excluded.doc`, table, keyColumn),
		key, string(raw))
	if err != nil {
		return 0, err
	}

	var version int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT version FROM %s WHERE %s = ?", table, keyColumn), key).Scan(&version); err != nil {
		return 0, err
	}
	return version, tx.Commit()
}

func (s *Store) get(ctx context.Context, table string, keyColumn string, key string, out interface{}) error {
	var raw string
	err := s.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %s WHERE %s = ?", table, keyColumn), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s/%s: %w", table, key, models.ErrObjectNotFound)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

var _ repositories.Store = (*Store)(nil)
