package coach

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcoach/internal/models"
	"dcoach/internal/resilience"
)

type flakyAnalyzer struct {
	failures int
	calls    int
	err      error
}

func (f *flakyAnalyzer) Name() string { return "flaky" }

func (f *flakyAnalyzer) Analyze(ctx context.Context, trade models.Trade, history []models.Trade, learned []string) (*models.TradeAnalysis, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &models.TradeAnalysis{TradeID: trade.TransactionID, ConceptID: "risk_management"}, nil
}

func testGuardConfig(retries, threshold int) GuardConfig {
	return GuardConfig{
		MaxRetries:    retries,
		RetryInterval: time.Millisecond,
		Breaker:       resilience.BreakerConfig{FailureThreshold: threshold, Cooldown: time.Hour},
	}
}

func TestGuardedAnalyzer_RetriesTransientFailures(t *testing.T) {
	inner := &flakyAnalyzer{failures: 2, err: errors.New("timeout")}
	g := NewGuardedAnalyzer(inner, testGuardConfig(3, 5), zerolog.Nop())

	got, err := g.Analyze(context.Background(), models.Trade{TransactionID: "t1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.TradeID)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, resilience.CircuitClosed, g.Breaker().State())
	assert.Equal(t, "flaky", g.Name())
}

func TestGuardedAnalyzer_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: errors.New("unavailable")}
	g := NewGuardedAnalyzer(inner, testGuardConfig(1, 5), zerolog.Nop())

	_, err := g.Analyze(context.Background(), models.Trade{TransactionID: "t1"}, nil, nil)
	assert.EqualError(t, err, "unavailable")
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedAnalyzer_OpensCircuit(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: errors.New("unavailable")}
	g := NewGuardedAnalyzer(inner, testGuardConfig(0, 2), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Analyze(ctx, models.Trade{TransactionID: "t1"}, nil, nil)
		require.Error(t, err)
	}
	_, err := g.Analyze(ctx, models.Trade{TransactionID: "t1"}, nil, nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedAnalyzer_DoesNotRetryCancellation(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: context.Canceled}
	g := NewGuardedAnalyzer(inner, testGuardConfig(3, 5), zerolog.Nop())

	_, err := g.Analyze(context.Background(), models.Trade{TransactionID: "t1"}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestGuardedAnalyzer_SessionKeepsStateOnFailure(t *testing.T) {
	ctx := context.Background()
	ds := newTestStore(t)
	seedTrades(t, ds)

	inner := &flakyAnalyzer{failures: 10, err: errors.New("unavailable")}
	sess, err := NewSession(ctx, ds, NewGuardedAnalyzer(inner, testGuardConfig(1, 5), zerolog.Nop()), nil, Options{Name: "alice"}, zerolog.Nop())
	require.NoError(t, err)
	before := sess.State()

	_, err = sess.Analyze(ctx, "t1")
	require.Error(t, err)
	assert.Equal(t, before, sess.State())
}

func TestGuardedAnalyzer_CancellationKeepsCircuitClosed(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: context.Canceled}
	g := NewGuardedAnalyzer(inner, testGuardConfig(3, 1), zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := g.Analyze(context.Background(), models.Trade{TransactionID: "t1"}, nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, resilience.CircuitClosed, g.Breaker().State())
	assert.Equal(t, int64(0), g.Breaker().Stats().TotalFailures)
	assert.Equal(t, 3, inner.calls)
}

type cancellingAnalyzer struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingAnalyzer) Name() string { return "cancelling" }

func (c *cancellingAnalyzer) Analyze(ctx context.Context, trade models.Trade, history []models.Trade, learned []string) (*models.TradeAnalysis, error) {
	c.calls++
	c.cancel()
	return nil, errors.New("timeout")
}

func TestGuardedAnalyzer_CallerCancelsDuringRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inner := &cancellingAnalyzer{cancel: cancel}
	g := NewGuardedAnalyzer(inner, testGuardConfig(3, 1), zerolog.Nop())

	_, err := g.Analyze(ctx, models.Trade{TransactionID: "t1"}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, resilience.CircuitClosed, g.Breaker().State())
	assert.NoError(t, g.Breaker().Allow())
}
