package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/ecs"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// GraveRow is one deceased worm in the lineage archive.
type GraveRow struct {
	WormID     ecs.ID
	Generation int
	ParentID   ecs.ID
	Name       string
	Age        float64
	Lifespan   float64
	Cause      string
	DiedAt     time.Time
}

// Archive is an append-mostly sqlite ledger of every worm that died. It is
// a history for display only; the save files remain the source of truth.
type Archive struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenArchive opens (creating if needed) the archive at path and migrates it.
func OpenArchive(ctx context.Context, path string, log *zap.Logger) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Archive{db: db, log: log}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

// RecordDeath stores a dead worm. Recording the same worm twice keeps the
// latest row.
func (a *Archive) RecordDeath(ctx context.Context, w component.Worm, cause string, at time.Time) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO graveyard (worm_id, generation, parent_id, name, age, lifespan, cause, died_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(w.ID), w.Generation, int64(w.ParentID), w.Name, w.Age, w.Lifespan, cause, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record death %d: %w", w.ID, err)
	}
	return nil
}

// Lineage returns every archived worm, oldest generation first.
func (a *Archive) Lineage(ctx context.Context) ([]GraveRow, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT worm_id, generation, parent_id, name, age, lifespan, cause, died_at
		 FROM graveyard ORDER BY generation, worm_id`)
	if err != nil {
		return nil, fmt.Errorf("query lineage: %w", err)
	}
	defer rows.Close()

	var out []GraveRow
	for rows.Next() {
		var (
			r              GraveRow
			id, parent, at int64
		)
		if err := rows.Scan(&id, &r.Generation, &parent, &r.Name, &r.Age, &r.Lifespan, &r.Cause, &at); err != nil {
			return nil, fmt.Errorf("scan lineage: %w", err)
		}
		r.WormID, r.ParentID, r.DiedAt = ecs.ID(id), ecs.ID(parent), time.Unix(at, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
