package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport acknowledges every message with a ticket whose ID is the message body.
type recordingTransport struct {
	calls  [][]domain.PushMessage
	failAt int // 1-based call index that fails; 0 never fails
}

func (r *recordingTransport) Send(_ context.Context, msgs []domain.PushMessage) ([]domain.Ticket, error) {
	r.calls = append(r.calls, msgs)
	if r.failAt == len(r.calls) {
		return nil, errors.New("upstream unavailable")
	}
	tickets := make([]domain.Ticket, len(msgs))
	for i, m := range msgs {
		tickets[i] = domain.Ticket{Status: domain.TicketStatusOK, ID: m.Body}
	}
	return tickets, nil
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func messages(n int) []domain.PushMessage {
	out := make([]domain.PushMessage, n)
	for i := range out {
		out[i] = domain.PushMessage{
			To:    fmt.Sprintf("ExponentPushToken[%d]", i),
			Sound: "default",
			Body:  fmt.Sprintf("m%d", i),
		}
	}
	return out
}

func TestDeliver_ChunksOf100InOrder(t *testing.T) {
	tr := &recordingTransport{}
	b := NewBatcher(tr, MaxBatchSize, 0, discardLogger())

	tickets, err := b.Deliver(context.Background(), messages(250))
	require.NoError(t, err)

	require.Len(t, tr.calls, 3)
	assert.Len(t, tr.calls[0], 100)
	assert.Len(t, tr.calls[1], 100)
	assert.Len(t, tr.calls[2], 50)
	require.Len(t, tickets, 250)
	for i, tk := range tickets {
		assert.Equal(t, fmt.Sprintf("m%d", i), tk.ID)
	}
}

func TestDeliver_CeilCallCount(t *testing.T) {
	for _, n := range []int{1, 99, 100, 101, 200, 201, 1000} {
		tr := &recordingTransport{}
		b := NewBatcher(tr, MaxBatchSize, 0, discardLogger())
		_, err := b.Deliver(context.Background(), messages(n))
		require.NoError(t, err)
		assert.Equal(t, (n+99)/100, len(tr.calls), "n=%d", n)
	}
}

func TestDeliver_DropsInvalidTokens(t *testing.T) {
	msgs := messages(5)
	msgs[1].To = "not-a-token"
	msgs[3].To = ""

	tr := &recordingTransport{}
	b := NewBatcher(tr, MaxBatchSize, 0, discardLogger())
	tickets, err := b.Deliver(context.Background(), msgs)
	require.NoError(t, err)

	require.Len(t, tickets, 3)
	assert.Equal(t, []string{"m0", "m2", "m4"}, []string{tickets[0].ID, tickets[1].ID, tickets[2].ID})
}

func TestDeliver_EmptyInputMakesNoCalls(t *testing.T) {
	tr := &recordingTransport{}
	b := NewBatcher(tr, MaxBatchSize, 0, discardLogger())
	tickets, err := b.Deliver(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Empty(t, tr.calls)
}

func TestDeliver_FailedChunkAbortsRemaining(t *testing.T) {
	tr := &recordingTransport{failAt: 2}
	b := NewBatcher(tr, MaxBatchSize, 0, discardLogger())

	tickets, err := b.Deliver(context.Background(), messages(250))
	require.Error(t, err)
	assert.Len(t, tr.calls, 2, "third chunk must not be attempted")
	assert.Len(t, tickets, 100, "first chunk stays delivered")
}

func TestDeliver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &recordingTransport{}
	b := NewBatcher(tr, MaxBatchSize, 10, discardLogger())
	_, err := b.Deliver(ctx, messages(3))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tr.calls)
}

func TestNewBatcher_ClampsSize(t *testing.T) {
	assert.Equal(t, MaxBatchSize, NewBatcher(nil, 500, 0, discardLogger()).size)
	assert.Equal(t, MaxBatchSize, NewBatcher(nil, 0, 0, discardLogger()).size)
	assert.Equal(t, 25, NewBatcher(nil, 25, 0, discardLogger()).size)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Empty(t, Chunk([]int{}, 3))
}
