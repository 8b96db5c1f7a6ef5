package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestPer(t *testing.T) {
	assert.Equal(t, rate.Every(50*time.Millisecond), Per(2, 100*time.Millisecond))
	assert.Equal(t, rate.Every(time.Second), Per(10, 10*time.Second))
	assert.Equal(t, rate.Inf, Per(0, time.Second))
	assert.Equal(t, rate.Inf, Per(-1, time.Second))
}

func TestMultiEmpty(t *testing.T) {
	m := Multi()
	assert.Equal(t, rate.Inf, m.Limit())
	assert.NoError(t, m.Wait(context.Background()))
}

func TestMultiWaitsOnAll(t *testing.T) {
	slow := rate.NewLimiter(Per(1, 100*time.Millisecond), 1)
	fast := rate.NewLimiter(Per(100, 100*time.Millisecond), 100)
	m := Multi(fast, slow)

	// most restrictive limit is reported
	assert.Equal(t, slow.Limit(), m.Limit())

	ctx := context.Background()
	require.NoError(t, m.Wait(ctx))

	start := time.Now()
	require.NoError(t, m.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestGateOriginInterval(t *testing.T) {
	g := NewGate(WithOriginInterval(60 * time.Millisecond))
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, g.Wait(ctx, "a.example.com"))
	g.Done("a.example.com")
	require.NoError(t, g.Wait(ctx, "a.example.com"))
	g.Done("a.example.com")
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	// a different origin is not delayed by the first one
	start = time.Now()
	require.NoError(t, g.Wait(ctx, "b.example.com"))
	g.Done("b.example.com")
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestGateOriginWindow(t *testing.T) {
	g := NewGate(
		WithOriginInterval(time.Millisecond),
		WithOriginWindow(2, time.Hour),
	)
	ctx := context.Background()

	// the window allows two requests up front
	require.NoError(t, g.Wait(ctx, "a.example.com"))
	g.Done("a.example.com")
	require.NoError(t, g.Wait(ctx, "a.example.com"))
	g.Done("a.example.com")

	// the third cannot finish inside a short deadline
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Wait(short, "a.example.com"))
}

func TestGateCancellation(t *testing.T) {
	g := NewGate(WithOriginInterval(time.Hour))
	ctx := context.Background()
	require.NoError(t, g.Wait(ctx, "a.example.com"))
	g.Done("a.example.com")

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	// the wait cannot finish inside the deadline, so it must not block
	start := time.Now()
	err := g.Wait(ctx, "a.example.com")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGateOriginConcurrency(t *testing.T) {
	g := NewGate(
		WithOriginInterval(time.Millisecond),
		WithOriginConcurrency(1),
	)
	ctx := context.Background()
	require.NoError(t, g.Wait(ctx, "a.example.com"))

	acquired := make(chan struct{})
	go func() {
		if err := g.Wait(ctx, "a.example.com"); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second wait should block until Done")
	case <-time.After(30 * time.Millisecond):
	}

	g.Done("a.example.com")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second wait never unblocked")
	}
	g.Done("a.example.com")
}
