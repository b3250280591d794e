package schedule

import (
	"fmt"
	"time"

	"github.com/hashicorp/cronexpr"
)

// NextRunAfter returns the first time a cron expression fires after the
// given time, in UTC. The zero time is returned when the expression never
// fires again.
func NextRunAfter(cron string, after time.Time) (time.Time, error) {
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return expr.Next(after.UTC()), nil
}

// NextRunsAfter returns the next N times a cron expression fires after the
// given time. It returns an error if the expression is invalid or n is less
// than 1.
func NextRunsAfter(cron string, after time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be greater than 0")
	}
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return expr.NextN(after.UTC(), uint(n)), nil
}

func ValidateCron(cron string) error {
	_, err := cronexpr.Parse(cron)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
