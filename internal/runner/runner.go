// Package runner assembles evaluation runs: for every gold question it
// retrieves context, calls the answer source, and emits one run record.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rageval/internal/domain"
	"rageval/internal/index"
)

// Options controls run assembly.
type Options struct {
	TopK            int
	MaxContextChars int
	AnswerTimeout   time.Duration
}

// Runner executes the retrieve → build context → answer pipeline per gold
// question. Questions are processed independently in gold-set order; a
// failure on one question is recorded on its run record and never aborts
// the batch.
type Runner struct {
	index   *index.Index
	source  domain.AnswerSource
	options Options
	log     *slog.Logger
}

// New creates a runner over a built corpus index and an answer source.
func New(idx *index.Index, source domain.AnswerSource, opts Options, log *slog.Logger) *Runner {
	if opts.TopK < 1 {
		opts.TopK = 3
	}
	if opts.AnswerTimeout <= 0 {
		opts.AnswerTimeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{index: idx, source: source, options: opts, log: log}
}

// Run produces exactly one run record per gold item, in input order.
func (r *Runner) Run(ctx context.Context, gold []domain.GoldItem) []domain.RunRecord {
	records := make([]domain.RunRecord, 0, len(gold))
	for _, item := range gold {
		rec := r.runOne(ctx, item)
		if rec.Failed {
			r.log.Warn("question failed", "id", rec.ID, "kind", rec.ErrorKind, "error", rec.Error)
		} else {
			r.log.Debug("question answered", "id", rec.ID, "retrieved", len(rec.Retrieved), "total_ms", rec.Latency.TotalMs)
		}
		records = append(records, rec)
	}
	return records
}

func (r *Runner) runOne(ctx context.Context, item domain.GoldItem) domain.RunRecord {
	start := time.Now()

	t0 := time.Now()
	hits := r.index.Retrieve(item.Question, r.options.TopK)
	retrievalMs := msSince(t0)

	docs := make([]domain.Document, 0, len(hits))
	for _, h := range hits {
		if d, ok := r.index.Doc(h.DocID); ok {
			docs = append(docs, d)
		}
	}
	contextText := BuildContext(docs, r.options.MaxContextChars)

	rec := domain.RunRecord{
		ID:        item.ID,
		Question:  item.Question,
		Retrieved: hits,
		Context:   contextText,
	}

	actx, cancel := context.WithTimeout(ctx, r.options.AnswerTimeout)
	t1 := time.Now()
	answerText, err := r.source.Answer(actx, item.Question, contextText)
	generationMs := msSince(t1)
	cancel()

	rec.Latency = domain.Latency{
		RetrievalMs:  retrievalMs,
		GenerationMs: generationMs,
		TotalMs:      msSince(start),
	}
	if err != nil {
		rec.Failed = true
		rec.Error = err.Error()
		rec.ErrorKind = errorKind(err)
		return rec
	}
	rec.Answer = answerText
	return rec
}

func errorKind(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorKindAnswerTimeout
	}
	return domain.ErrorKindAnswerSource
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
