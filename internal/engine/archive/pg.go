package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"canvas-transcriber/internal/engine/pipeline"
)

// Package-level mirror instance, set from main.go when DATABASE_URL is
// configured. Nil means sqlite-only mode.
var mirror *MirrorDB

// SetMirror sets the package-level Postgres mirror (may be nil).
func SetMirror(db *MirrorDB) { mirror = db }

// GetMirror returns the package-level Postgres mirror (may be nil).
func GetMirror() *MirrorDB { return mirror }

// MirrorDB replicates archived batches to a shared PostgreSQL instance.
type MirrorDB struct {
	pool *pgxpool.Pool
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS transcript_batches (
	id                TEXT PRIMARY KEY,
	course_url        TEXT NOT NULL,
	total_videos      INTEGER NOT NULL,
	transcripts_found INTEGER NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS transcript_outcomes (
	id               BIGSERIAL PRIMARY KEY,
	batch_id         TEXT NOT NULL REFERENCES transcript_batches(id),
	title            TEXT NOT NULL,
	source_url       TEXT NOT NULL,
	provider         TEXT,
	module_name      TEXT,
	found            BOOLEAN NOT NULL,
	source_type      TEXT,
	rejection_reason TEXT,
	transcript_path  TEXT,
	error_count      INTEGER NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_transcript_outcomes_batch ON transcript_outcomes(batch_id)`

// ConnectMirror creates a pgx pool and ensures the archive schema exists.
func ConnectMirror(ctx context.Context, databaseURL string) (*MirrorDB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	slog.Info("archive postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &MirrorDB{pool: pool}, nil
}

func (db *MirrorDB) Close() {
	db.pool.Close()
}

// SaveBatch mirrors a completed run under the same batch id as the local
// sqlite archive.
func (db *MirrorDB) SaveBatch(ctx context.Context, batchID, courseURL string, summary *pipeline.Summary) error {
	if summary == nil {
		return errors.New("archive: nil summary")
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("archive pg: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO transcript_batches (id, course_url, total_videos, transcripts_found)
		 VALUES ($1, $2, $3, $4)`,
		batchID, courseURL, summary.TotalVideos, summary.TranscriptsFound,
	); err != nil {
		return fmt.Errorf("archive pg: insert batch: %w", err)
	}

	for i := range summary.Videos {
		v := &summary.Videos[i]
		if _, err := tx.Exec(ctx,
			`INSERT INTO transcript_outcomes (batch_id, title, source_url, provider, module_name,
			                                  found, source_type, rejection_reason, transcript_path, error_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			batchID, v.Title, v.SourceURL, v.Provider, v.ModuleName,
			v.TranscriptFound, v.TranscriptSourceType, v.RejectionReason,
			v.TranscriptPath, len(v.Errors),
		); err != nil {
			return fmt.Errorf("archive pg: insert outcome: %w", err)
		}
	}

	return tx.Commit(ctx)
}
