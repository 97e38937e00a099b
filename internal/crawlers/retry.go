package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/rs/zerolog"
)

// Retrier 线性退避重试: 第n次失败后等待 Backoff*n
type Retrier struct {
	MaxAttempts int
	Backoff     time.Duration
	// Sleep 可替换,测试中用来记录等待时长
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger zerolog.Logger
}

// NewRetrier 默认3次,退避5秒
func NewRetrier(maxAttempts int, backoff time.Duration, logger zerolog.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	if backoff < 0 {
		backoff = 5 * time.Second
	}
	return &Retrier{MaxAttempts: maxAttempts, Backoff: backoff, Sleep: SleepContext, Logger: logger}
}

// Do 执行fn直到成功、遇到不可重试错误或次数耗尽
// 耗尽时返回的错误同时包装 ErrMaxRetriesReached 和最后一次的错误
func (r *Retrier) Do(ctx context.Context, fn func(attempt int) error) error {
	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (上次错误: %v)", err, lastErr)
			}
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if !models.IsRetryable(lastErr) {
			r.Logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("不可重试的错误,放弃")
			return lastErr
		}

		r.Logger.Warn().Err(lastErr).Int("attempt", attempt).Int("max_attempts", maxAttempts).Msg("尝试失败")
		if attempt < maxAttempts {
			wait := r.Backoff * time.Duration(attempt)
			r.Logger.Info().Dur("wait", wait).Msg("等待后重试")
			if err := sleep(ctx, wait); err != nil {
				return fmt.Errorf("%w (上次错误: %v)", err, lastErr)
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrMaxRetriesReached, lastErr)
}
