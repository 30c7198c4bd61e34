// Package dispatch runs data-parallel work (rows of fragment invocations)
// on a fixed set of goroutines.
package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a work-stealing goroutine pool. Each worker owns a queue and
// takes from its peers when its own queue is empty, which evens out rows
// that cover very different numbers of fragments.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// submit is held shared while Range enqueues and exclusively by Close,
	// so no task lands in a queue after its worker has drained it.
	submit sync.RWMutex
}

// New starts a pool with the given number of workers. Zero or negative
// means GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			fn()
		default:
			if fn := p.steal(id); fn != nil {
				fn()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case fn := <-own:
				fn()
			}
		}
	}
}

func (p *Pool) drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Range splits [0, n) into consecutive chunks of at most chunk items and
// calls fn(lo, hi) for each, returning once all calls have finished. On a
// closed pool the chunks run on the calling goroutine.
func (p *Pool) Range(n, chunk int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if chunk <= 0 {
		chunk = 1
	}
	if p.workers == 1 && n <= chunk {
		fn(0, n)
		return
	}

	p.submit.RLock()
	if !p.running.Load() {
		p.submit.RUnlock()
		fn(0, n)
		return
	}
	var wg sync.WaitGroup
	for i, lo := 0, 0; lo < n; i, lo = i+1, lo+chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			fn(lo, hi)
		}
	}
	p.submit.RUnlock()
	wg.Wait()
}

// Close stops the workers after the queued work has run. A concurrent
// Range finishes its enqueued chunks first. It is safe to call more than
// once.
func (p *Pool) Close() {
	p.submit.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submit.Unlock()
		return
	}
	close(p.done)
	p.submit.Unlock()
	p.wg.Wait()
}

func (p *Pool) Workers() int { return p.workers }

func (p *Pool) IsRunning() bool { return p.running.Load() }
