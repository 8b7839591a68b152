package gopool

// Frok https://github.com/avast/retry-go

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Function signature of retryable function
type RetryableFunc func() error

// Function signature of retryable function with data
type RetryableFuncWithData[T any] func() (T, error)

func Retry(retryableFunc RetryableFunc, opts ...RetryOption) error {
	retryableFuncWithData := func() (any, error) {
		return nil, retryableFunc()
	}

	_, err := RetryWithData(retryableFuncWithData, opts...)
	return err
}

// RetryWithData calls retryableFunc until it succeeds, the attempts run out,
// RetryIf rejects an error or the context ends. Attempts are counted from
// zero in OnRetry.
func RetryWithData[T any](retryableFunc RetryableFuncWithData[T], opts ...RetryOption) (T, error) {
	var n uint
	var emptyT T

	config := newDefaultRetryConfig()
	for _, opt := range opts {
		opt(config)
	}

	if err := config.context.Err(); err != nil {
		return emptyT, err
	}

	errorLog := RetryError{}
	for {
		t, err := retryableFunc()
		if err == nil {
			return t, nil
		}

		errorLog = append(errorLog, unpackUnrecoverableRetry(err))

		if !config.retryIf(err) {
			break
		}

		config.onRetry(n, err)

		// if this is last attempt - don't wait
		if config.attempts > 0 && n == config.attempts-1 {
			break
		}

		if err := config.wait(n, err); err != nil {
			if config.lastErrorOnly {
				return emptyT, err
			}
			return emptyT, append(errorLog, err)
		}
		n++
	}

	if config.lastErrorOnly {
		return emptyT, errorLog.Unwrap()
	}
	return emptyT, errorLog
}

// wait sleeps for the next delay. A zero delay only checks the context.
func (c *RetryConfig) wait(n uint, err error) error {
	d := c.delayType(n, err, c)
	if c.maxDelay > 0 && d > c.maxDelay {
		d = c.maxDelay
	}
	if d <= 0 {
		return c.context.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-c.context.Done():
		return c.context.Err()
	}
}

func newDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		attempts:  uint(10),
		delay:     100 * time.Millisecond,
		onRetry:   func(n uint, err error) {},
		retryIf:   IsRecoverableRetry,
		delayType: BackOffDelay,
		context:   context.Background(),
	}
}

// Error type represents list of errors in retry
type RetryError []error

// Error method return string representation of Error
// It is an implementation of error interface
func (e RetryError) Error() string {
	logWithNumber := make([]string, len(e))
	for i, l := range e {
		if l != nil {
			logWithNumber[i] = fmt.Sprintf("#%d: %s", i+1, l.Error())
		}
	}

	return fmt.Sprintf("All attempts fail:\n%s", strings.Join(logWithNumber, "\n"))
}

func (e RetryError) Is(target error) bool {
	for _, v := range e {
		if errors.Is(v, target) {
			return true
		}
	}
	return false
}

// Unwrap the last error for compatibility with `errors.Unwrap()`.
func (e RetryError) Unwrap() error {
	if len(e) == 0 {
		return nil
	}
	return e[len(e)-1]
}

type unrecoverableRetryError struct {
	error
}

func (e unrecoverableRetryError) Error() string {
	if e.error == nil {
		return "unrecoverable error"
	}
	return e.error.Error()
}

func (e unrecoverableRetryError) Unwrap() error {
	return e.error
}

// Unrecoverable wraps an error in `unrecoverableError` struct
func UnrecoverableRetry(err error) error {
	return unrecoverableRetryError{err}
}

// IsRecoverable checks if error is an instance of `unrecoverableError`
func IsRecoverableRetry(err error) bool {
	var u unrecoverableRetryError
	return !errors.As(err, &u)
}

func unpackUnrecoverableRetry(err error) error {
	if unrecoverable, isUnrecoverable := err.(unrecoverableRetryError); isUnrecoverable {
		return unrecoverable.error
	}

	return err
}

// ========================
//
// ========================

// Function signature of retry if function
type RetryIfFunc func(error) bool

// Function signature of OnRetry function
// n = count of attempts
type OnRetryFunc func(n uint, err error)

// DelayTypeFunc is called to return the next delay to wait after the retriable function fails on `err` after `n` attempts.
type DelayTypeFunc func(n uint, err error, config *RetryConfig) time.Duration

type RetryConfig struct {
	attempts      uint
	delay         time.Duration
	maxDelay      time.Duration
	onRetry       OnRetryFunc
	retryIf       RetryIfFunc
	delayType     DelayTypeFunc
	lastErrorOnly bool
	context       context.Context

	maxBackOffN uint
}

// Option represents an option for retry.
type RetryOption func(*RetryConfig)

func emptyRetryOption(c *RetryConfig) {}

// return the direct last error that came from the retried function
// default is false (return wrapped errors with everything)
func LastErrorOnly(lastErrorOnly bool) RetryOption {
	return func(c *RetryConfig) {
		c.lastErrorOnly = lastErrorOnly
	}
}

// Attempts set count of retry. Setting to 0 will retry until the retried function succeeds.
// default is 10
func RetryAttempts(attempts uint) RetryOption {
	return func(c *RetryConfig) {
		c.attempts = attempts
	}
}

// Delay set delay between retry
// default is 100ms
func RetryDelay(delay time.Duration) RetryOption {
	return func(c *RetryConfig) {
		c.delay = delay
	}
}

// MaxDelay set maximum delay between retry
// does not apply by default
func RetryMaxDelay(maxDelay time.Duration) RetryOption {
	return func(c *RetryConfig) {
		c.maxDelay = maxDelay
	}
}

// DelayType set type of the delay between retries
// default is BackOff
func RetryDelayType(delayType DelayTypeFunc) RetryOption {
	if delayType == nil {
		return emptyRetryOption
	}
	return func(c *RetryConfig) {
		c.delayType = delayType
	}
}

// BackOffDelay is a DelayType which increases delay between consecutive retries
func BackOffDelay(n uint, _ error, config *RetryConfig) time.Duration {
	// 1 << 63 would overflow signed int64 (time.Duration), thus 62.
	const max uint = 62

	if config.delay <= 0 {
		return 0
	}
	if config.maxBackOffN == 0 {
		config.maxBackOffN = max - uint(math.Floor(math.Log2(float64(config.delay))))
	}

	if n > config.maxBackOffN {
		n = config.maxBackOffN
	}

	return config.delay << n
}

// FixedDelay is a DelayType which keeps delay the same through all iterations
func FixedDelay(_ uint, _ error, config *RetryConfig) time.Duration {
	return config.delay
}

// OnRetry function callback are called each retry
func OnRetry(onRetry OnRetryFunc) RetryOption {
	if onRetry == nil {
		return emptyRetryOption
	}
	return func(c *RetryConfig) {
		c.onRetry = onRetry
	}
}

// RetryIf controls whether a retry should be attempted after an error
// (assuming there are any retry attempts remaining)
//
// By default RetryIf stops execution if the error is wrapped using `UnrecoverableRetry`.
func RetryIf(retryIf RetryIfFunc) RetryOption {
	if retryIf == nil {
		return emptyRetryOption
	}
	return func(c *RetryConfig) {
		c.retryIf = retryIf
	}
}

// Context allow to set context of retry
// default are Background context
func RetryContext(ctx context.Context) RetryOption {
	return func(c *RetryConfig) {
		c.context = ctx
	}
}
