package groutine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_NamesContext(t *testing.T) {
	got := make(chan string, 1)
	Go(context.Background(), "worker-42", func(ctx context.Context) {
		got <- GetName(ctx)
	})

	select {
	case name := <-got:
		assert.Equal(t, "worker-42", name)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestGetName_Unnamed(t *testing.T) {
	assert.Equal(t, "", GetName(context.Background()))
	assert.Equal(t, "", GetName(nil)) //nolint:staticcheck // nil context is handled explicitly
}

func TestAwait_ReturnsResult(t *testing.T) {
	v, err := Await(context.Background(), "read", func() ([]byte, error) {
		return []byte{0x01}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, v)

	boom := errors.New("boom")
	_, err = Await(context.Background(), "read", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestAwait_AbandonsOnCancel(t *testing.T) {
	// GOAL: Verify a blocked call is abandoned when the context is cancelled
	//
	// TEST SCENARIO: call blocks until released → ctx cancelled → Await returns context.Canceled immediately

	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Await(ctx, "blocked", func() (struct{}, error) {
		<-release
		return struct{}{}, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
