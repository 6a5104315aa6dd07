package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is the layout of the runs table. Bump it whenever schema.sql
// changes; an older ledger is refused rather than migrated, since the history
// only describes past runs and can be started afresh.
const ledgerVersion = 1

// ErrSchemaMismatch means the ledger file was written by a different version
// of the runs table.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ensureLedger creates the runs table in a fresh database or checks the
// version of an existing one.
func (s *Store) ensureLedger(ctx context.Context) error {
	var initialized int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&initialized)
	if err != nil {
		return fmt.Errorf("inspect run ledger: %w", err)
	}
	if initialized == 0 {
		return s.createLedger(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read run ledger version: %w", err)
	}
	if version != ledgerVersion {
		return fmt.Errorf("%w: run ledger %s has version %d, this build writes %d (remove the file or set [history] enabled = false)",
			ErrSchemaMismatch, s.path, version, ledgerVersion)
	}
	return nil
}

func (s *Store) createLedger(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run ledger setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", ledgerVersion); err != nil {
		return fmt.Errorf("record run ledger version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run ledger setup: %w", err)
	}
	return nil
}
