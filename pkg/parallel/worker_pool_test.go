package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestPool(t *testing.T, workers int) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d) failed: %v", workers, err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := newTestPool(t, 4)

	executed := false
	if err := pool.Submit(func() error {
		executed = true
		return nil
	}); err != nil {
		t.Fatalf("Task submission failed: %v", err)
	}

	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	if !executed {
		t.Error("Task was not executed")
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newTestPool(t, 10)

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() error {
				atomic.AddInt64(&counter, 1)
				return nil
			})
		}()
	}

	wg.Wait()
	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolReusableBarrier checks Wait can separate successive stages
func TestWorkerPoolReusableBarrier(t *testing.T) {
	pool := newTestPool(t, 3)

	results := make([]int, 6)
	for i := 0; i < 3; i++ {
		idx := i
		pool.Submit(func() error {
			results[idx] = idx + 1
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		t.Fatalf("first stage: %v", err)
	}

	// Second stage reads the first stage's output
	for i := 3; i < 6; i++ {
		idx := i
		pool.Submit(func() error {
			results[idx] = results[idx-3] * 10
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		t.Fatalf("second stage: %v", err)
	}

	want := []int{1, 2, 3, 10, 20, 30}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
	}
}

// TestWorkerPoolBoundedConcurrency verifies no more than Workers() tasks run at once
func TestWorkerPoolBoundedConcurrency(t *testing.T) {
	pool := newTestPool(t, 2)

	var running, peak int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() error {
			now := atomic.AddInt64(&running, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if now <= old || atomic.CompareAndSwapInt64(&peak, old, now) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&running, -1)
			return nil
		})
	}
	pool.Wait()

	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, observed %d", peak)
	}
}

// TestWorkerPoolTaskError checks the first error is reported and then cleared
func TestWorkerPoolTaskError(t *testing.T) {
	pool := newTestPool(t, 1)
	boom := errors.New("boom")

	pool.Submit(func() error { return boom })
	pool.Submit(func() error { return nil })

	if err := pool.Wait(); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if err := pool.Wait(); err != nil {
		t.Errorf("Expected error to be cleared after Wait, got %v", err)
	}
}

// TestWorkerPoolWithPanic tests that panics become errors and don't kill workers
func TestWorkerPoolWithPanic(t *testing.T) {
	pool := newTestPool(t, 4)

	var counter int64
	for i := 0; i < 5; i++ {
		pool.Submit(func() error {
			panic("intentional panic")
		})
	}
	for i := 0; i < 10; i++ {
		pool.Submit(func() error {
			atomic.AddInt64(&counter, 1)
			return nil
		})
	}

	err := pool.Wait()
	if !errors.Is(err, ErrTaskPanic) {
		t.Errorf("Expected ErrTaskPanic, got %v", err)
	}
	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close fail
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool, err := NewWorkerPool(4)
	if err != nil {
		t.Fatal(err)
	}

	if err := pool.Submit(func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	}); err != nil {
		t.Errorf("Task submission before close should succeed: %v", err)
	}

	pool.Close()

	err = pool.Submit(func() error {
		t.Error("This task should never execute")
		return nil
	})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
}

// TestWorkerPoolConcurrentClose tests concurrent close calls
func TestWorkerPoolConcurrentClose(t *testing.T) {
	pool, err := NewWorkerPool(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		pool.Submit(func() error {
			time.Sleep(time.Millisecond)
			return nil
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Close()
		}()
	}
	wg.Wait()
}

// BenchmarkWorkerPoolThroughput benchmarks worker pool throughput
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	pool, _ := NewWorkerPool(10)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(func() error { return nil })
	}
	pool.Wait()
}
