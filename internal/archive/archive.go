// Package archive records completed derivations in SQLite for later
// inspection.
//
// The archive is write-ahead for the user, not for the pipeline: it is
// never consulted before computing, so it does not act as a persistent
// cache. Cache state remains process-lifetime only.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/series"
)

//go:embed schema.sql
var schemaSQL string

// Archive is a SQLite-backed derivation log.
type Archive struct {
	db *sql.DB
}

// Entry is one archived derivation.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Request   params.SimulationRequest
	PeakTimes []series.PeakPoint
}

// Open creates or opens the archive database at path. WAL mode allows
// concurrent reads while a derivation is being recorded. Idempotent.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled
	// connection avoids SQLITE_BUSY under concurrent derivations.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Record inserts one completed derivation and returns its id.
func (a *Archive) Record(ctx context.Context, req params.SimulationRequest, peaks []series.PeakPoint) (string, error) {
	peaksJSON, err := json.Marshal(peaks)
	if err != nil {
		return "", fmt.Errorf("record derivation: %w", err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO derivations
		(id, created_at, species, current_density, beam_energy, dr_fwhm, breed_time, continuous_injection, peak_times)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		time.Now().UTC().Format(time.RFC3339Nano),
		req.Species,
		req.CurrentDensity,
		req.BeamEnergy,
		req.DRFwhm,
		req.BreedTime,
		boolToInt(req.ContinuousInjection),
		string(peaksJSON),
	)
	if err != nil {
		return "", fmt.Errorf("record derivation: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, species, current_density, beam_energy, dr_fwhm, breed_time, continuous_injection, peak_times
		FROM derivations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list derivations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt string
			cni       int
			peaksJSON string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Request.Species, &e.Request.CurrentDensity,
			&e.Request.BeamEnergy, &e.Request.DRFwhm, &e.Request.BreedTime, &cni, &peaksJSON); err != nil {
			return nil, fmt.Errorf("scan derivation: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		e.Request.ContinuousInjection = cni != 0
		if err := json.Unmarshal([]byte(peaksJSON), &e.PeakTimes); err != nil {
			return nil, fmt.Errorf("parse peak_times for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
