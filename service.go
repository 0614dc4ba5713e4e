package main

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hist/internal/render"
	"hist/internal/stats"
	"hist/internal/tally"
)

// maxFillSpan bounds the number of rows gap filling may create.
const maxFillSpan = 1 << 24

const (
	brpopTimeout   = 5
	reconnectDelay = 2 * time.Second
	restartDelay   = 1 * time.Second
)

// analyze computes the statistics of t, measuring time and peak memory.
func analyze(t *tally.Tally, percentiles []float64) (stats.Summary, float64, float64, error) {
	var err error
	summary, duration, memBytes := measurePeakResidentMemory(func() (stats.Summary, float64) {
		start := time.Now()
		s, e := stats.Summarize(t, percentiles)
		err = e
		return s, time.Since(start).Seconds()
	})
	return summary, duration, memBytes, err
}

func fillGaps(t *tally.Tally) (*tally.Tally, error) {
	if span := t.Span(); span > maxFillSpan {
		return nil, errors.Errorf("value range of %d is too wide to fill gaps (limit %d)", span, maxFillSpan)
	}
	return t.FillGaps(), nil
}

// processInput renders the statistics and histogram of t to w and, when db
// is set, stores the statistics.
func processInput(db *sql.DB, t *tally.Tally, opts options, w io.Writer) error {
	var err error
	if opts.render.FillGaps {
		if t, err = fillGaps(t); err != nil {
			return err
		}
	}

	var percentiles []float64
	if opts.percentiles {
		percentiles = stats.DefaultPercentiles
	}
	summary, duration, memBytes, err := analyze(t, percentiles)
	if err != nil {
		return errors.Wrap(err, "statistics")
	}
	log.WithFields(log.Fields{
		"keys":         t.Len(),
		"observations": summary.Count,
		"duration":     duration,
		"memory_bytes": memBytes,
	}).Debug("statistics computed")

	cfg := opts.render
	if opts.fit {
		cfg = fitToTerminal(t, cfg)
	}
	r, err := render.New(w, cfg)
	if err != nil {
		return err
	}
	if opts.stats {
		if err := r.Statistics(summary); err != nil {
			return err
		}
	}
	if err := r.Histogram(t); err != nil {
		return err
	}

	if db != nil {
		if err := insertResult(db, opts.runID, summary, duration, memBytes); err != nil {
			return err
		}
		log.WithField("run_id", opts.runID).Info("stored histogram result")
	}
	return nil
}

func fitToTerminal(t *tally.Tally, cfg render.Config) render.Config {
	columns, err := terminalWidth()
	if err != nil || columns <= 0 {
		log.WithError(err).Debug("terminal width unknown, bars are not scaled")
		cfg.MaxWidth = 0
		cfg.Pad = false
		return cfg
	}
	cfg.MaxWidth = render.FitWidth(t, cfg, columns)
	return cfg
}

// runService pops histogram jobs from the Redis queue until ctx is done,
// reconnecting after failures.
func runService(ctx context.Context, db *sql.DB, opts options) error {
	queue := "queue:" + opts.queue
	log.WithFields(log.Fields{"queue": queue, "redis": redactURL(opts.redisURL)}).Info("worker started")

	for ctx.Err() == nil {
		conn, err := dialRedis(opts.redisURL)
		if err != nil {
			log.WithError(err).Warnf("redis connect failed; retrying in %s", reconnectDelay)
			sleep(ctx, reconnectDelay)
			continue
		}
		if err := serveQueue(ctx, conn, db, queue); err != nil {
			log.WithError(err).Warn("redis connection lost")
		}
		conn.Close()
		sleep(ctx, restartDelay)
	}
	log.Info("worker stopped")
	return nil
}

// serveQueue handles jobs on conn until ctx is done or the connection fails.
// Bad jobs are logged and skipped.
func serveQueue(ctx context.Context, conn redis.Conn, db *sql.DB, queue string) error {
	for ctx.Err() == nil {
		payload, ok, err := popJob(conn, queue, brpopTimeout)
		if err != nil {
			return err
		}
		if !ok {
			continue // timeout
		}
		job, err := parseJob(payload)
		if err != nil {
			log.WithError(err).WithField("payload", payload).Warn("skipping job")
			continue
		}
		if err := processJob(conn, db, job); err != nil {
			log.WithError(err).WithField("run_id", job.RunID).Error("process error")
		}
	}
	return nil
}

func processJob(conn redis.Conn, db *sql.DB, job histogramJob) error {
	values, err := readList(conn, job.Key)
	if err != nil {
		return err
	}
	t := tally.FromLines(values)
	summary, duration, memBytes, err := analyze(t, nil)
	if err != nil {
		return err
	}
	if err := insertResult(db, job.RunID, summary, duration, memBytes); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"run_id":       job.RunID,
		"observations": summary.Count,
		"duration":     duration,
		"memory_bytes": memBytes,
	}).Info("processed histogram job")
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
