package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/microblog/user-api/internal/api/metrics"
	"github.com/microblog/user-api/internal/core/domain"
)

// BatchWriter is the slice of the durable store the flusher needs.
type BatchWriter interface {
	InsertBatch(ctx context.Context, batch []domain.PendingUser) ([]domain.BatchResult, error)
}

const (
	defaultInterval   = time.Second
	defaultMaxBackoff = 30 * time.Second
	defaultTimeout    = 5 * time.Second
)

// Config tunes the flush loop. Zero values fall back to defaults.
type Config struct {
	// Interval between drain cycles while storage is healthy. Also the maximum
	// expected visibility lag for an accepted signup.
	Interval time.Duration
	// MaxBackoff caps the delay between retries while storage is unavailable.
	MaxBackoff time.Duration
	// Timeout bounds a single batch-insert attempt so a hung connection
	// degrades to an unavailable outcome instead of stalling the loop.
	Timeout time.Duration
}

// Flusher periodically drains the pending store and commits the snapshot to
// durable storage as one transactional batch.
//
// Per cycle: drain; if empty, go back to sleep without touching storage.
// Otherwise insert the batch and classify each record: committed records are
// done, duplicate-email records are dropped and counted (the client already
// got a success response, so the loss must be visible in metrics and logs),
// and if the store itself is unavailable the whole snapshot is re-queued and
// the next cycle is delayed with exponential backoff. Records are therefore
// delivered at least once, in drain order within a batch.
type Flusher struct {
	store      *PendingStore
	writer     BatchWriter
	interval   time.Duration
	maxBackoff time.Duration
	timeout    time.Duration
	log        zerolog.Logger
}

func NewFlusher(store *PendingStore, writer BatchWriter, cfg Config, log zerolog.Logger) *Flusher {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Flusher{
		store:      store,
		writer:     writer,
		interval:   cfg.Interval,
		maxBackoff: cfg.MaxBackoff,
		timeout:    cfg.Timeout,
		log:        log,
	}
}

// Run drives the flush loop until ctx is cancelled, then performs one final
// best-effort drain so records accepted before shutdown still reach storage.
// Start it in its own goroutine; it returns only after the final drain.
func (f *Flusher) Run(ctx context.Context) {
	delay := f.interval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			f.finalDrain()
			return
		case <-timer.C:
			if err := f.Flush(ctx); err != nil {
				delay = f.nextDelay(delay)
				f.log.Warn().Err(err).Dur("retry_in", delay).Msg("flush failed, backing off")
			} else {
				delay = f.interval
			}
			timer.Reset(delay)
		}
	}
}

// Flush executes a single drain-and-commit cycle synchronously. Exposed so
// tests and shutdown can force a flush without waiting for the ticker.
func (f *Flusher) Flush(ctx context.Context) error {
	batch := f.store.DrainAll()
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	insertCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	results, err := f.writer.InsertBatch(insertCtx, batch)
	if err != nil {
		f.store.Requeue(batch)
		metrics.FlushFailuresTotal.Inc()
		metrics.QueueDepth.Set(float64(f.store.Len()))
		return err
	}

	committed := 0
	for _, res := range results {
		switch res.Status {
		case domain.BatchCommitted:
			committed++
			metrics.UsersCommittedTotal.Inc()
		case domain.BatchDuplicateEmail:
			metrics.UsersDroppedTotal.WithLabelValues("duplicate_email").Inc()
			f.log.Error().
				Str("user_id", res.UserID).
				Str("email", res.Email).
				Msg("accepted signup dropped: email committed by a concurrent request")
		}
	}

	metrics.FlushDuration.Observe(time.Since(start).Seconds())
	metrics.QueueDepth.Set(float64(f.store.Len()))
	f.log.Debug().Int("batch_size", len(batch)).Int("committed", committed).Msg("batch flushed")
	return nil
}

// nextDelay doubles the current delay, capped at maxBackoff.
func (f *Flusher) nextDelay(cur time.Duration) time.Duration {
	next := cur * 2
	if next > f.maxBackoff {
		next = f.maxBackoff
	}
	return next
}

// finalDrain runs one last flush on a fresh context; the loop's context is
// already cancelled by the time this is called.
func (f *Flusher) finalDrain() {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.Flush(ctx); err != nil {
		f.log.Error().Err(err).Int("pending", f.store.Len()).
			Msg("final drain failed, pending signups will be lost")
		return
	}
	f.log.Info().Msg("final drain complete")
}
