package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 3, 3},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -2, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.workers)
			defer p.Close()
			if p.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", p.Workers(), tt.want)
			}
			if !p.IsRunning() {
				t.Error("pool should be running after New")
			}
		})
	}
}

func TestRangeCoversEveryIndexOnce(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 1000
	hits := make([]atomic.Int32, n)
	p.Range(n, 7, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			hits[i].Add(1)
		}
	})
	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestRangeChunkBounds(t *testing.T) {
	p := New(2)
	defer p.Close()

	var mu sync.Mutex
	var chunks [][2]int
	p.Range(10, 4, func(lo, hi int) {
		mu.Lock()
		chunks = append(chunks, [2]int{lo, hi})
		mu.Unlock()
	})
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %v", len(chunks), chunks)
	}
	total := 0
	for _, c := range chunks {
		if c[1]-c[0] > 4 || c[1] <= c[0] {
			t.Errorf("bad chunk %v", c)
		}
		total += c[1] - c[0]
	}
	if total != 10 {
		t.Errorf("chunks cover %d items, want 10", total)
	}
}

func TestRangeEmpty(t *testing.T) {
	p := New(2)
	defer p.Close()

	called := false
	p.Range(0, 4, func(int, int) { called = true })
	if called {
		t.Error("Range(0) should not call fn")
	}
}

func TestRangeAfterCloseRunsInline(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()

	if p.IsRunning() {
		t.Fatal("pool should not be running after Close")
	}
	var sum int
	p.Range(5, 2, func(lo, hi int) { sum += hi - lo })
	if sum != 5 {
		t.Errorf("closed pool covered %d items, want 5", sum)
	}
}

func TestCloseDuringRange(t *testing.T) {
	for trial := range 20 {
		p := New(4)
		const n = 20000
		var visited atomic.Int32
		started := make(chan struct{})
		var once sync.Once
		finished := make(chan struct{})
		go func() {
			defer close(finished)
			p.Range(n, 1, func(lo, hi int) {
				once.Do(func() { close(started) })
				visited.Add(int32(hi - lo))
			})
		}()

		<-started
		p.Close()
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatalf("trial %d: Range did not return after Close", trial)
		}
		if got := visited.Load(); got != n {
			t.Fatalf("trial %d: visited %d items, want %d", trial, got, n)
		}
	}
}

func BenchmarkRange(b *testing.B) {
	p := New(0)
	defer p.Close()
	b.ReportAllocs()
	for b.Loop() {
		p.Range(512, 8, func(lo, hi int) {})
	}
}
