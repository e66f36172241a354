// This file implements the refcounted connection pool that shares one open
// Engine per backing file path. Tables hold non-owning handles; the pool
// closes a file's engine when the last handle releases it, when the path is
// evicted by a table drop, or when the pool itself closes.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/metrics"
)

// ErrPoolClosed is returned by Acquire after the pool has been closed.
var ErrPoolClosed = errors.New("engine pool is closed")

// Pool manages the live engines of one store, keyed by file path.
//
// Thread-safety: all methods are safe for concurrent use.
type Pool struct {
	open Opener

	mu     sync.Mutex
	conns  map[string]*pooledConn
	closed bool

	opens  *metrics.Counter
	closes *metrics.Counter
}

type pooledConn struct {
	eng    Engine
	refs   int
	closed bool
}

// Handle is a non-owning reference to a pooled engine. Release it when the
// owning table closes; releasing twice is safe.
type Handle struct {
	pool *Pool
	path string
	pc   *pooledConn
	once sync.Once
}

// NewPool returns a pool that opens engines with open. The kind names the
// engine implementation in the pool's metrics.
func NewPool(kind string, open Opener) *Pool {
	return &Pool{
		open:   open,
		conns:  make(map[string]*pooledConn),
		opens:  metrics.GetOrCreateCounter(fmt.Sprintf(`larder_engine_opens_total{engine=%q}`, kind)),
		closes: metrics.GetOrCreateCounter(fmt.Sprintf(`larder_engine_closes_total{engine=%q}`, kind)),
	}
}

// Acquire returns a handle on the engine for path, opening it on first use.
func (p *Pool) Acquire(path string) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	pc, ok := p.conns[path]
	if !ok {
		eng, err := p.open(path)
		if err != nil {
			return nil, fmt.Errorf("opening engine for %s: %w", path, err)
		}
		pc = &pooledConn{eng: eng}
		p.conns[path] = pc
		p.opens.Inc()
	}
	pc.refs++
	return &Handle{pool: p, path: path, pc: pc}, nil
}

// Engine returns the shared engine this handle references.
func (h *Handle) Engine() Engine {
	return h.pc.eng
}

// Release drops this handle's reference. The engine closes when the last
// reference is released. Only the first call has any effect.
func (h *Handle) Release() error {
	var err error
	h.once.Do(func() {
		h.pool.mu.Lock()
		defer h.pool.mu.Unlock()
		if h.pc.closed {
			return
		}
		h.pc.refs--
		if h.pc.refs <= 0 {
			h.pc.closed = true
			delete(h.pool.conns, h.path)
			err = h.pc.eng.Close()
			h.pool.closes.Inc()
		}
	})
	return err
}

// Evict force-closes the engine for path regardless of outstanding handles.
// Handles referencing the evicted engine fail on their next operation. A
// path with no open engine is a no-op.
func (p *Pool) Evict(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pc, ok := p.conns[path]
	if !ok {
		return nil
	}
	pc.closed = true
	delete(p.conns, path)
	p.closes.Inc()
	return pc.eng.Close()
}

// Close shuts down every open engine. Idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	var firstErr error
	for path, pc := range p.conns {
		pc.closed = true
		delete(p.conns, path)
		p.closes.Inc()
		if err := pc.eng.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing engine for %s: %w", path, err)
		}
	}
	return firstErr
}

// Len reports how many engines are currently open.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}
