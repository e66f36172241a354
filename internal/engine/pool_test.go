package engine

import (
	"errors"
	"sync"
	"testing"
)

// fakeEngine records close calls so pool tests can observe lifetimes without
// touching disk.
type fakeEngine struct {
	path   string
	mu     sync.Mutex
	closed bool
}

func (f *fakeEngine) Collection(name string) (Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrEngineClosed
	}
	return nil, errors.New("fake engine has no collections")
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("double close")
	}
	f.closed = true
	return nil
}

func (f *fakeEngine) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeOpener counts opens and remembers every engine it produced.
type fakeOpener struct {
	mu      sync.Mutex
	opens   int
	engines []*fakeEngine
}

func (fo *fakeOpener) open(path string) (Engine, error) {
	fo.mu.Lock()
	defer fo.mu.Unlock()
	fo.opens++
	fe := &fakeEngine{path: path}
	fo.engines = append(fo.engines, fe)
	return fe, nil
}

func TestPoolSharesEnginePerPath(t *testing.T) {
	fo := &fakeOpener{}
	p := NewPool("fake", fo.open)
	defer p.Close()

	h1, err := p.Acquire("a.db")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	h2, err := p.Acquire("a.db")
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}

	if fo.opens != 1 {
		t.Errorf("expected 1 open for shared path, got %d", fo.opens)
	}
	if h1.Engine() != h2.Engine() {
		t.Error("handles on the same path must share one engine")
	}
	if p.Len() != 1 {
		t.Errorf("expected 1 pooled engine, got %d", p.Len())
	}
}

func TestPoolClosesOnLastRelease(t *testing.T) {
	fo := &fakeOpener{}
	p := NewPool("fake", fo.open)
	defer p.Close()

	h1, _ := p.Acquire("a.db")
	h2, _ := p.Acquire("a.db")

	if err := h1.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if fo.engines[0].isClosed() {
		t.Fatal("engine closed while a handle was still held")
	}

	// Releasing the same handle again must not steal h2's reference.
	if err := h1.Release(); err != nil {
		t.Fatalf("repeated release: %v", err)
	}
	if fo.engines[0].isClosed() {
		t.Fatal("repeated release closed the engine")
	}

	if err := h2.Release(); err != nil {
		t.Fatalf("last release: %v", err)
	}
	if !fo.engines[0].isClosed() {
		t.Error("engine must close when the last handle releases")
	}
	if p.Len() != 0 {
		t.Errorf("expected empty pool, got %d", p.Len())
	}
}

func TestPoolEvict(t *testing.T) {
	fo := &fakeOpener{}
	p := NewPool("fake", fo.open)
	defer p.Close()

	h, _ := p.Acquire("a.db")
	if err := p.Evict("a.db"); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if !fo.engines[0].isClosed() {
		t.Error("evict must close the engine despite outstanding handles")
	}

	// The orphaned handle must not double-close or disturb a fresh engine
	// opened for the same path.
	h2, err := p.Acquire("a.db")
	if err != nil {
		t.Fatalf("acquire after evict: %v", err)
	}
	if err := h.Release(); err != nil {
		t.Errorf("release of evicted handle: %v", err)
	}
	if fo.engines[1].isClosed() {
		t.Error("stale release closed the replacement engine")
	}
	if fo.opens != 2 {
		t.Errorf("expected reopen after evict, got %d opens", fo.opens)
	}
	_ = h2

	if err := p.Evict("never-opened.db"); err != nil {
		t.Errorf("evicting an unopened path should be a no-op, got %v", err)
	}
}

func TestPoolClose(t *testing.T) {
	fo := &fakeOpener{}
	p := NewPool("fake", fo.open)

	p.Acquire("a.db")
	p.Acquire("b.db")

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	for i, fe := range fo.engines {
		if !fe.isClosed() {
			t.Errorf("engine %d not closed by pool close", i)
		}
	}
	if err := p.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if _, err := p.Acquire("c.db"); err != ErrPoolClosed {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}
