// Package archive keeps a local history of extraction runs in SQLite,
// with an optional PostgreSQL mirror for shared deployments.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"canvas-transcriber/internal/engine/pipeline"
)

// Batch is one recorded extraction run.
type Batch struct {
	ID               string `json:"id"`
	CourseURL        string `json:"course_url"`
	TotalVideos      int    `json:"total_videos"`
	TranscriptsFound int    `json:"transcripts_found"`
	CreatedAt        string `json:"created_at"`
}

// Record is one archived video outcome within a batch.
type Record struct {
	BatchID         string `json:"batch_id"`
	Title           string `json:"title"`
	SourceURL       string `json:"source_url"`
	Provider        string `json:"provider"`
	ModuleName      string `json:"module_name,omitempty"`
	Found           bool   `json:"transcript_found"`
	SourceType      string `json:"transcript_source_type,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	TranscriptPath  string `json:"transcript_path,omitempty"`
	ErrorCount      int    `json:"error_count"`
	CreatedAt       string `json:"created_at"`
}

var (
	archiveDB   *sql.DB
	archiveOnce sync.Once
	archiveErr  error
	archiveDir  string
)

// SetDir overrides the archive directory. Must be called before first use.
func SetDir(dir string) { archiveDir = dir }

func openDB() (*sql.DB, error) {
	archiveOnce.Do(func() {
		dir := archiveDir
		if dir == "" {
			dir = filepath.Join(os.Getenv("HOME"), ".canvas-transcriber")
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			archiveErr = fmt.Errorf("archive: mkdir %s: %w", dir, err)
			return
		}
		dbPath := filepath.Join(dir, "archive.db")
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			archiveErr = fmt.Errorf("archive: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initSchema(db); err != nil {
			archiveErr = fmt.Errorf("archive: init schema: %w", err)
			return
		}
		archiveDB = db
	})
	return archiveDB, archiveErr
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS batches (
			id                TEXT PRIMARY KEY,
			course_url        TEXT NOT NULL,
			total_videos      INTEGER NOT NULL,
			transcripts_found INTEGER NOT NULL,
			created_at        TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS outcomes (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id         TEXT NOT NULL REFERENCES batches(id),
			title            TEXT NOT NULL,
			source_url       TEXT NOT NULL,
			provider         TEXT,
			module_name      TEXT,
			found            INTEGER NOT NULL,
			source_type      TEXT,
			rejection_reason TEXT,
			transcript_path  TEXT,
			error_count      INTEGER NOT NULL,
			created_at       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outcomes_batch ON outcomes(batch_id);
		CREATE INDEX IF NOT EXISTS idx_outcomes_url ON outcomes(source_url)`)
	return err
}

// SaveBatch archives a completed run and returns the batch id.
func SaveBatch(ctx context.Context, courseURL string, summary *pipeline.Summary) (string, error) {
	if summary == nil {
		return "", errors.New("archive: nil summary")
	}
	db, err := openDB()
	if err != nil {
		return "", err
	}

	batchID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, course_url, total_videos, transcripts_found, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		batchID, courseURL, summary.TotalVideos, summary.TranscriptsFound, now,
	); err != nil {
		return "", fmt.Errorf("archive: insert batch: %w", err)
	}

	for i := range summary.Videos {
		v := &summary.Videos[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (batch_id, title, source_url, provider, module_name,
			                       found, source_type, rejection_reason, transcript_path,
			                       error_count, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, v.Title, v.SourceURL, v.Provider, v.ModuleName,
			boolInt(v.TranscriptFound), v.TranscriptSourceType, v.RejectionReason,
			v.TranscriptPath, len(v.Errors), now,
		); err != nil {
			return "", fmt.Errorf("archive: insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("archive: commit: %w", err)
	}
	return batchID, nil
}

// ListBatches returns recent runs, newest first.
func ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, course_url, total_videos, transcripts_found, created_at
		 FROM batches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: list batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.CourseURL, &b.TotalVideos, &b.TranscriptsFound, &b.CreatedAt); err != nil {
			continue
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// BatchRecords returns the archived outcomes of one batch.
func BatchRecords(ctx context.Context, batchID string) ([]Record, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT batch_id, title, source_url, provider, module_name,
		        found, source_type, rejection_reason, transcript_path,
		        error_count, created_at
		 FROM outcomes WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("archive: batch records: %w", err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var r Record
		var provider, module, srcType, reason, path sql.NullString
		var found int
		if err := rows.Scan(&r.BatchID, &r.Title, &r.SourceURL, &provider, &module,
			&found, &srcType, &reason, &path, &r.ErrorCount, &r.CreatedAt); err != nil {
			continue
		}
		r.Provider = provider.String
		r.ModuleName = module.String
		r.SourceType = srcType.String
		r.RejectionReason = reason.String
		r.TranscriptPath = path.String
		r.Found = found != 0
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// FailedSince returns source URLs that never produced a transcript in any
// recorded batch. Used by retry mode to skip already-solved videos.
func FailedSince(ctx context.Context, courseURL string) ([]string, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT o.source_url FROM outcomes o
		 JOIN batches b ON b.id = o.batch_id
		 WHERE b.course_url = ?
		 GROUP BY o.source_url
		 HAVING MAX(o.found) = 0`, courseURL)
	if err != nil {
		return nil, fmt.Errorf("archive: failed query: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			continue
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
