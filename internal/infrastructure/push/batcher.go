// Package push delivers reminder notifications to the mobile push service.
package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hisworks-api/internal/domain"
	"golang.org/x/time/rate"
)

// MaxBatchSize is the push service's documented per-request ceiling.
const MaxBatchSize = 100

// Batcher splits messages into transport-sized chunks and submits them one after another.
type Batcher struct {
	transport Transport
	size      int
	limiter   *rate.Limiter
	log       *slog.Logger
}

// NewBatcher returns a Batcher sending at most size messages per call (clamped to
// [1, MaxBatchSize]) and at most chunksPerSecond calls per second (<= 0 disables pacing).
func NewBatcher(transport Transport, size int, chunksPerSecond float64, log *slog.Logger) *Batcher {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}
	if log == nil {
		log = slog.Default()
	}
	limit := rate.Inf
	if chunksPerSecond > 0 {
		limit = rate.Limit(chunksPerSecond)
	}
	return &Batcher{
		transport: transport,
		size:      size,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

// Deliver drops messages with malformed addresses, then submits the rest in order.
// The returned tickets line up with the submitted (valid) messages. A failing chunk stops
// delivery and returns the error; chunks already accepted stay sent.
func (b *Batcher) Deliver(ctx context.Context, messages []domain.PushMessage) ([]domain.Ticket, error) {
	valid := make([]domain.PushMessage, 0, len(messages))
	for _, m := range messages {
		if ValidToken(m.To) {
			valid = append(valid, m)
		}
	}
	if dropped := len(messages) - len(valid); dropped > 0 {
		b.log.Debug("dropped messages with invalid push token", "count", dropped)
	}

	tickets := make([]domain.Ticket, 0, len(valid))
	for i, chunk := range Chunk(valid, b.size) {
		if err := b.limiter.Wait(ctx); err != nil {
			return tickets, fmt.Errorf("chunk %d: %w", i, err)
		}
		got, err := b.transport.Send(ctx, chunk)
		if err != nil {
			return tickets, fmt.Errorf("chunk %d of %d messages: %w", i, len(chunk), err)
		}
		tickets = append(tickets, got...)
		b.log.Debug("push chunk accepted", "chunk", i, "size", len(chunk))
	}
	return tickets, nil
}

// Chunk partitions items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
