package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"stock-signal-bot/internal/types"
)

// History records pipeline runs, the signals they produced, and auto-tuner
// threshold updates. The tuned threshold triple is the one artifact that
// survives restarts.
type History struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	ran_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS signals (
	run_id        INTEGER NOT NULL REFERENCES runs(id),
	ticker        TEXT NOT NULL,
	signal        TEXT NOT NULL,
	score         REAL NOT NULL,
	confidence    REAL NOT NULL,
	article_count INTEGER NOT NULL,
	top_headline  TEXT NOT NULL,
	display_name  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS threshold_updates (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	updated_at     TEXT NOT NULL,
	buy_threshold  REAL NOT NULL,
	sell_threshold REAL NOT NULL,
	min_articles   INTEGER NOT NULL,
	old_accuracy   REAL NOT NULL,
	new_accuracy   REAL NOT NULL
);
`

// OpenHistory opens (creating if needed) the run-history database.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// modernc sqlite is single-writer; the pipeline is too.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// RecordRun stores one pipeline run and its per-asset signals.
func (h *History) RecordRun(ranAt time.Time, signals map[string]types.AssetSignal) (int64, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs (ran_at) VALUES (?)`, ranAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO signals
		(run_id, ticker, signal, score, confidence, article_count, top_headline, display_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for ticker, s := range signals {
		if _, err := stmt.Exec(runID, ticker, s.Signal, s.Score, s.Confidence,
			s.ArticleCount, s.TopHeadline, s.DisplayName); err != nil {
			return 0, fmt.Errorf("insert signal for %s: %w", ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// RecordThresholdUpdate stores an auto-tuner decision to adopt new thresholds.
func (h *History) RecordThresholdUpdate(updatedAt time.Time, cfg types.ThresholdConfig, oldAccuracy, newAccuracy float64) error {
	_, err := h.db.Exec(`INSERT INTO threshold_updates
		(updated_at, buy_threshold, sell_threshold, min_articles, old_accuracy, new_accuracy)
		VALUES (?, ?, ?, ?, ?, ?)`,
		updatedAt.UTC().Format(time.RFC3339),
		cfg.BuyThreshold, cfg.SellThreshold, cfg.MinArticles, oldAccuracy, newAccuracy)
	return err
}

// LatestThresholds returns the most recently adopted threshold triple, or
// ok=false if the tuner has never updated anything.
func (h *History) LatestThresholds() (types.ThresholdConfig, bool, error) {
	var cfg types.ThresholdConfig
	err := h.db.QueryRow(`SELECT buy_threshold, sell_threshold, min_articles
		FROM threshold_updates ORDER BY id DESC LIMIT 1`).
		Scan(&cfg.BuyThreshold, &cfg.SellThreshold, &cfg.MinArticles)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ThresholdConfig{}, false, nil
	}
	if err != nil {
		return types.ThresholdConfig{}, false, err
	}
	return cfg, true, nil
}

// LatestRun returns the signals from the most recent pipeline run, or
// ok=false if no run has been recorded.
func (h *History) LatestRun() (time.Time, map[string]types.AssetSignal, bool, error) {
	var runID int64
	var ranAtStr string
	err := h.db.QueryRow(`SELECT id, ran_at FROM runs ORDER BY id DESC LIMIT 1`).
		Scan(&runID, &ranAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil, false, nil
	}
	if err != nil {
		return time.Time{}, nil, false, err
	}
	ranAt, err := time.Parse(time.RFC3339, ranAtStr)
	if err != nil {
		return time.Time{}, nil, false, fmt.Errorf("bad ran_at %q: %w", ranAtStr, err)
	}

	rows, err := h.db.Query(`SELECT ticker, signal, score, confidence, article_count, top_headline, display_name
		FROM signals WHERE run_id = ?`, runID)
	if err != nil {
		return time.Time{}, nil, false, err
	}
	defer rows.Close()

	signals := make(map[string]types.AssetSignal)
	for rows.Next() {
		var ticker string
		var s types.AssetSignal
		if err := rows.Scan(&ticker, &s.Signal, &s.Score, &s.Confidence,
			&s.ArticleCount, &s.TopHeadline, &s.DisplayName); err != nil {
			return time.Time{}, nil, false, err
		}
		signals[ticker] = s
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, nil, false, err
	}
	return ranAt, signals, true, nil
}
