package backend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/FlorianLB/taskiq-redis/internal/logger"
	"github.com/FlorianLB/taskiq-redis/pkg/task"
)

// setupTestBackend creates a backend against a miniredis server
func setupTestBackend(t *testing.T, mutate func(*Options)) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	opts := DefaultOptions()
	opts.Addr = mr.Addr()
	opts.Logger = logger.New("error", "text", "test")
	if mutate != nil {
		mutate(&opts)
	}

	b, err := NewRedis(opts)
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}
	return b, mr
}

func sampleResult(t *testing.T) task.Result {
	t.Helper()

	res, err := task.NewResult(true, 11, 112.2)
	if err != nil {
		t.Fatalf("Failed to build result: %v", err)
	}
	return res.WithLog("My Log")
}

func TestSetAndGetResult(t *testing.T) {
	b, _ := setupTestBackend(t, nil)
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	fetched, err := b.GetResult(context.Background(), taskID, true)
	if err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}

	if !fetched.IsErr {
		t.Error("Expected IsErr to be true")
	}
	if string(fetched.ReturnValue) != "11" {
		t.Errorf("Expected return value '11', got '%s'", fetched.ReturnValue)
	}
	if fetched.ExecutionTime != 112.2 {
		t.Errorf("Expected execution time 112.2, got %v", fetched.ExecutionTime)
	}
	if fetched.Log == nil || *fetched.Log != "My Log" {
		t.Errorf("Expected log 'My Log', got %v", fetched.Log)
	}
}

func TestGetResultWithoutLogs(t *testing.T) {
	b, _ := setupTestBackend(t, nil)
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	fetched, err := b.GetResult(context.Background(), taskID, false)
	if err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}

	if fetched.Log != nil {
		t.Errorf("Expected log to be absent, got %q", *fetched.Log)
	}
	if !fetched.IsErr {
		t.Error("Expected IsErr to be true")
	}
	if string(fetched.ReturnValue) != "11" {
		t.Errorf("Expected return value '11', got '%s'", fetched.ReturnValue)
	}
	if fetched.ExecutionTime != 112.2 {
		t.Errorf("Expected execution time 112.2, got %v", fetched.ExecutionTime)
	}
}

func TestRemoveResultsAfterReading(t *testing.T) {
	b, mr := setupTestBackend(t, func(o *Options) {
		o.KeepResults = false
	})
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	if _, err := b.GetResult(context.Background(), taskID, true); err != nil {
		t.Fatalf("First read failed: %v", err)
	}

	if mr.Exists(b.scheme.ResultKey(taskID)) {
		t.Error("Entry should be gone after a successful read")
	}

	_, err := b.GetResult(context.Background(), taskID, true)
	if !errors.Is(err, ErrResultMissing) {
		t.Errorf("Expected ErrResultMissing on second read, got %v", err)
	}
}

func TestKeepResultsAfterReading(t *testing.T) {
	b, _ := setupTestBackend(t, nil)
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	res1, err := b.GetResult(context.Background(), taskID, true)
	if err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	res2, err := b.GetResult(context.Background(), taskID, true)
	if err != nil {
		t.Fatalf("Second read failed: %v", err)
	}

	if !reflect.DeepEqual(res1, res2) {
		t.Errorf("Expected field-for-field equal reads, got %+v and %+v", res1, res2)
	}
}

func TestGetResultMissing(t *testing.T) {
	b, _ := setupTestBackend(t, nil)
	defer b.Shutdown()

	_, err := b.GetResult(context.Background(), uuid.NewString(), true)
	if !errors.Is(err, ErrResultMissing) {
		t.Errorf("Expected ErrResultMissing, got %v", err)
	}
}

func TestConcurrentReadsThroughSingleConnection(t *testing.T) {
	b, _ := setupTestBackend(t, func(o *Options) {
		o.MaxPoolSize = 1
		o.Timeout = 3 * time.Second
	})
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.GetResult(context.Background(), taskID, true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent read failed: %v", err)
	}
}

func TestConcurrentConsumeHasSingleWinner(t *testing.T) {
	b, _ := setupTestBackend(t, func(o *Options) {
		o.KeepResults = false
	})
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	var wg sync.WaitGroup
	var wins, misses int32
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.GetResult(context.Background(), taskID, true)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrResultMissing):
				misses++
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one winning reader, got %d", wins)
	}
	if misses != 9 {
		t.Errorf("Expected nine readers to observe a missing result, got %d", misses)
	}
}

func TestSetResultOverwrites(t *testing.T) {
	b, _ := setupTestBackend(t, nil)
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	replacement, err := task.NewResult(false, "done", 0.3)
	if err != nil {
		t.Fatalf("Failed to build result: %v", err)
	}
	if err := b.SetResult(context.Background(), taskID, replacement); err != nil {
		t.Fatalf("Failed to overwrite result: %v", err)
	}

	fetched, err := b.GetResult(context.Background(), taskID, true)
	if err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}
	if fetched.IsErr {
		t.Error("Expected the replacement record, not the original")
	}
	if string(fetched.ReturnValue) != `"done"` {
		t.Errorf("Expected replacement return value, got '%s'", fetched.ReturnValue)
	}
	if fetched.Log != nil {
		t.Error("Expected the replacement's absent log")
	}
}

func TestResultTTL(t *testing.T) {
	b, mr := setupTestBackend(t, func(o *Options) {
		o.ResultTTL = time.Minute
	})
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	if got := mr.TTL(b.scheme.ResultKey(taskID)); got != time.Minute {
		t.Errorf("Expected TTL of 1m on the entry, got %v", got)
	}

	mr.FastForward(2 * time.Minute)

	_, err := b.GetResult(context.Background(), taskID, true)
	if !errors.Is(err, ErrResultMissing) {
		t.Errorf("Expected ErrResultMissing after expiry, got %v", err)
	}
}

func TestIsResultReady(t *testing.T) {
	b, _ := setupTestBackend(t, func(o *Options) {
		o.KeepResults = false
	})
	defer b.Shutdown()

	taskID := uuid.NewString()

	ready, err := b.IsResultReady(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Failed to check readiness: %v", err)
	}
	if ready {
		t.Error("Expected not ready before set")
	}

	if err := b.SetResult(context.Background(), taskID, sampleResult(t)); err != nil {
		t.Fatalf("Failed to set result: %v", err)
	}

	ready, err = b.IsResultReady(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Failed to check readiness: %v", err)
	}
	if !ready {
		t.Error("Expected ready after set")
	}

	if _, err := b.GetResult(context.Background(), taskID, true); err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}

	ready, err = b.IsResultReady(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Failed to check readiness: %v", err)
	}
	if ready {
		t.Error("Expected not ready after the entry was consumed")
	}
}

func TestCorruptPayload(t *testing.T) {
	b, mr := setupTestBackend(t, nil)
	defer b.Shutdown()

	taskID := uuid.NewString()
	if err := mr.Set(b.scheme.ResultKey(taskID), "{not an envelope"); err != nil {
		t.Fatalf("Failed to plant corrupt payload: %v", err)
	}

	_, err := b.GetResult(context.Background(), taskID, true)
	if !errors.Is(err, ErrMalformedResult) {
		t.Errorf("Expected ErrMalformedResult, got %v", err)
	}
}

func TestPoolTimeoutSurfaces(t *testing.T) {
	b, _ := setupTestBackend(t, func(o *Options) {
		o.MaxPoolSize = 1
		o.Timeout = 50 * time.Millisecond
	})
	defer b.Shutdown()

	// Occupy the only slot so the operation cannot acquire one.
	lease, err := b.gate.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Failed to occupy the gate: %v", err)
	}
	defer lease.Release()

	_, err = b.GetResult(context.Background(), uuid.NewString(), true)
	if !errors.Is(err, ErrPoolTimeout) {
		t.Errorf("Expected ErrPoolTimeout, got %v", err)
	}
}

func TestShutdown(t *testing.T) {
	b, _ := setupTestBackend(t, nil)

	if err := b.Shutdown(); err != nil {
		t.Fatalf("Failed to shut down: %v", err)
	}

	if err := b.SetResult(context.Background(), uuid.NewString(), sampleResult(t)); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("Expected ErrBackendClosed from SetResult, got %v", err)
	}
	if _, err := b.GetResult(context.Background(), uuid.NewString(), true); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("Expected ErrBackendClosed from GetResult, got %v", err)
	}
	if _, err := b.IsResultReady(context.Background(), uuid.NewString()); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("Expected ErrBackendClosed from IsResultReady, got %v", err)
	}
}

func TestNewRedisRequiresAddr(t *testing.T) {
	if _, err := NewRedis(DefaultOptions()); err == nil {
		t.Error("Expected error when address is missing")
	}
}

func TestNewRedisConnectFailure(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	opts := DefaultOptions()
	opts.Addr = addr
	opts.Logger = logger.New("error", "text", "test")

	if _, err := NewRedis(opts); err == nil {
		t.Error("Expected error when the store is unreachable")
	}
}
