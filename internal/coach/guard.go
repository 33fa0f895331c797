package coach

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"dcoach/internal/models"
	"dcoach/internal/resilience"
)

// GuardConfig controls retries, rate limiting, and circuit breaking around
// an analysis provider.
type GuardConfig struct {
	MaxRetries    int
	RetryInterval time.Duration
	RatePerMinute int // 0 disables rate limiting
	Breaker       resilience.BreakerConfig
}

// DefaultGuardConfig returns the default guard configuration.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxRetries:    2,
		RetryInterval: 500 * time.Millisecond,
		RatePerMinute: 30,
		Breaker:       resilience.DefaultBreakerConfig(),
	}
}

// GuardedAnalyzer wraps an Analyzer with a rate limiter, exponential
// backoff retries, and a circuit breaker.
type GuardedAnalyzer struct {
	inner   Analyzer
	config  GuardConfig
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  zerolog.Logger
}

// NewGuardedAnalyzer creates a GuardedAnalyzer around inner.
func NewGuardedAnalyzer(inner Analyzer, config GuardConfig, logger zerolog.Logger) *GuardedAnalyzer {
	g := &GuardedAnalyzer{
		inner:   inner,
		config:  config,
		breaker: resilience.NewBreaker(inner.Name(), config.Breaker),
		logger:  logger.With().Str("provider", inner.Name()).Logger(),
	}
	if config.RatePerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RatePerMinute)), 1)
	}
	return g
}

// Name returns the wrapped provider's name.
func (g *GuardedAnalyzer) Name() string {
	return g.inner.Name()
}

// Breaker returns the circuit breaker guarding the provider.
func (g *GuardedAnalyzer) Breaker() *resilience.Breaker {
	return g.breaker
}

// Analyze implements Analyzer.
func (g *GuardedAnalyzer) Analyze(ctx context.Context, trade models.Trade, history []models.Trade, learned []string) (*models.TradeAnalysis, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := g.breaker.Allow(); err != nil {
		return nil, err
	}

	var result *models.TradeAnalysis
	operation := func() error {
		r, err := g.inner.Analyze(ctx, trade, history, learned)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			return err
		}
		if r == nil {
			return backoff.Permanent(errors.New("provider returned no analysis"))
		}
		result = r
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = g.config.RetryInterval
	strategy.MaxElapsedTime = 30 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(strategy, uint64(g.config.MaxRetries)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		g.logger.Warn().Err(err).Dur("retry_in", wait).Str("trade_id", trade.TransactionID).Msg("Analysis attempt failed, retrying")
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			g.breaker.Cancel()
		} else {
			g.breaker.Failure()
		}
		return nil, err
	}

	g.breaker.Success()
	return result, nil
}
