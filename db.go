package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"hist/internal/stats"
)

func buildDSNFromEnv() (string, error) {
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")
	dbname := os.Getenv("POSTGRES_DB")
	if dbname == "" {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			return url, nil
		}
		return "", errors.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "5432"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, pass, dbname)
	return dsn, nil
}

func openDB() (*sql.DB, error) {
	dsn, err := buildDSNFromEnv()
	if err != nil {
		return nil, errors.Wrap(err, "database config")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database not reachable")
	}
	return db, nil
}

// nullable maps an undefined statistic to NULL.
func nullable(v stats.Value) sql.NullFloat64 {
	f, ok := v.Get()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

func insertResult(db *sql.DB, runID int64, s stats.Summary, durationSeconds float64, memoryBytes float64) error {
	const q = `
INSERT INTO histogram_results
  (run_id, count, min, max, median, mode, mean, geometric_mean, harmonic_mean, duration, memory, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
`
	mode := s.Mode
	if mode == nil {
		mode = []int64{}
	}
	_, err := db.Exec(q,
		runID,
		int64(s.Count),
		nullable(s.Min), nullable(s.Max), nullable(s.Median),
		pq.Array(mode),
		nullable(s.Mean), nullable(s.GeometricMean), nullable(s.HarmonicMean),
		durationSeconds, memoryBytes,
	)
	return errors.Wrapf(err, "insert histogram_results run=%d", runID)
}
