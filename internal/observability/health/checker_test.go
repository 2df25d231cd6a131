package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerAllHealthy(t *testing.T) {
	c := NewChecker(nil)
	c.Register("b", 0, func(ctx context.Context) error { return nil })
	c.Register("a", 0, func(ctx context.Context) error { return nil })

	report := c.Run(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "a", report.Checks[0].Name)
	assert.Equal(t, "OK", report.Checks[1].Message)
}

func TestCheckerFailureMakesReportUnhealthy(t *testing.T) {
	c := NewChecker(nil)
	c.Register("ok", 0, func(ctx context.Context) error { return nil })
	c.Register("broken", 0, func(ctx context.Context) error { return errors.New("boom") })

	report := c.Run(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, "boom", report.Checks[0].Message)
	assert.Equal(t, StatusHealthy, report.Checks[1].Status)
}

func TestCheckerTimeoutAndPanic(t *testing.T) {
	c := NewChecker(nil)
	c.Register("slow", 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	c.Register("panics", 0, func(ctx context.Context) error { panic("bad") })

	report := c.Run(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Contains(t, report.Checks[0].Message, "panicked")
	assert.Contains(t, report.Checks[1].Message, "timed out")
}
