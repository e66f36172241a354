// Package enginetest provides a conformance suite every document engine
// implementation must pass. Engine packages call Run from their own tests so
// the upsert/get/remove/all/search contract stays identical across engines.
package enginetest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/larder/internal/engine"
)

// Factory describes one engine implementation under test.
type Factory struct {
	Open engine.Opener
	Ext  string
}

// Run executes the conformance suite against the engine built by f.
func Run(t *testing.T, name string, f Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("UpsertInsert", func(t *testing.T) { testUpsertInsert(t, f) })
		t.Run("UpsertReplace", func(t *testing.T) { testUpsertReplace(t, f) })
		t.Run("GetAbsent", func(t *testing.T) { testGetAbsent(t, f) })
		t.Run("Remove", func(t *testing.T) { testRemove(t, f) })
		t.Run("Search", func(t *testing.T) { testSearch(t, f) })
		t.Run("CompositePredicate", func(t *testing.T) { testCompositePredicate(t, f) })
		t.Run("CollectionIsolation", func(t *testing.T) { testCollectionIsolation(t, f) })
		t.Run("Persistence", func(t *testing.T) { testPersistence(t, f) })
		t.Run("ClosedEngine", func(t *testing.T) { testClosedEngine(t, f) })
	})
}

// open returns a collection in a fresh engine file, closed on test cleanup.
func open(t *testing.T, f Factory) engine.Collection {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs"+f.Ext)
	eng, err := f.Open(path)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	col, err := eng.Collection("docs")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	return col
}

func mustUpsert(t *testing.T, col engine.Collection, doc engine.Document, pred engine.Predicate) {
	t.Helper()
	if err := col.Upsert(doc, pred); err != nil {
		t.Fatalf("upsert %v: %v", doc, err)
	}
}

func testUpsertInsert(t *testing.T, f Factory) {
	col := open(t, f)

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("k%d", i)
		doc := engine.Document{"key": key, "value": "v"}
		mustUpsert(t, col, doc, engine.Predicate{"key": key})
	}

	docs, err := col.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected 3 documents, got %d", len(docs))
	}
}

func testUpsertReplace(t *testing.T, f Factory) {
	col := open(t, f)
	pred := engine.Predicate{"key": "k"}

	mustUpsert(t, col, engine.Document{"key": "k", "value": "old"}, pred)
	mustUpsert(t, col, engine.Document{"key": "k", "value": "new"}, pred)

	docs, err := col.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document after replacing upsert, got %d", len(docs))
	}
	if docs[0]["value"] != "new" {
		t.Errorf("expected replaced value %q, got %v", "new", docs[0]["value"])
	}
}

func testGetAbsent(t *testing.T, f Factory) {
	col := open(t, f)

	doc, found, err := col.Get(engine.Predicate{"key": "missing"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Errorf("expected absent, got %v", doc)
	}
}

func testRemove(t *testing.T, f Factory) {
	col := open(t, f)

	mustUpsert(t, col, engine.Document{"key": "a", "group": "g1"}, engine.Predicate{"key": "a"})
	mustUpsert(t, col, engine.Document{"key": "b", "group": "g1"}, engine.Predicate{"key": "b"})
	mustUpsert(t, col, engine.Document{"key": "c", "group": "g2"}, engine.Predicate{"key": "c"})

	n, err := col.Remove(engine.Predicate{"group": "g1"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}

	n, err = col.Remove(engine.Predicate{"group": "g1"})
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 removed on repeat, got %d", n)
	}

	docs, err := col.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(docs) != 1 || docs[0]["key"] != "c" {
		t.Errorf("expected only document c to survive, got %v", docs)
	}
}

func testSearch(t *testing.T, f Factory) {
	col := open(t, f)

	for i := 0; i < 4; i++ {
		key2 := fmt.Sprintf("s%d", i)
		group := "even"
		if i%2 == 1 {
			group = "odd"
		}
		doc := engine.Document{"key1": group, "key2": key2}
		mustUpsert(t, col, doc, engine.Predicate{"key1": group, "key2": key2})
	}

	docs, err := col.Search(engine.Predicate{"key1": "even"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 matches, got %d", len(docs))
	}
	for _, d := range docs {
		if d["key1"] != "even" {
			t.Errorf("search returned non-matching document %v", d)
		}
	}
}

func testCompositePredicate(t *testing.T, f Factory) {
	col := open(t, f)

	mustUpsert(t, col, engine.Document{"key1": "p", "key2": "s1", "value": "a"},
		engine.Predicate{"key1": "p", "key2": "s1"})
	mustUpsert(t, col, engine.Document{"key1": "p", "key2": "s2", "value": "b"},
		engine.Predicate{"key1": "p", "key2": "s2"})

	doc, found, err := col.Get(engine.Predicate{"key1": "p", "key2": "s2"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || doc["value"] != "b" {
		t.Errorf("expected composite match value b, got %v (found=%v)", doc, found)
	}

	n, err := col.Remove(engine.Predicate{"key1": "p", "key2": "s1"})
	if err != nil || n != 1 {
		t.Fatalf("remove composite: n=%d err=%v", n, err)
	}
	if _, found, _ := col.Get(engine.Predicate{"key1": "p", "key2": "s2"}); !found {
		t.Error("sibling composite key was removed")
	}
}

func testCollectionIsolation(t *testing.T, f Factory) {
	path := filepath.Join(t.TempDir(), "docs"+f.Ext)
	eng, err := f.Open(path)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	defer eng.Close()

	first, err := eng.Collection("first")
	if err != nil {
		t.Fatalf("collection first: %v", err)
	}
	second, err := eng.Collection("second")
	if err != nil {
		t.Fatalf("collection second: %v", err)
	}

	mustUpsert(t, first, engine.Document{"key": "k"}, engine.Predicate{"key": "k"})

	docs, err := second.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("document leaked across collections: %v", docs)
	}
}

func testPersistence(t *testing.T, f Factory) {
	path := filepath.Join(t.TempDir(), "docs"+f.Ext)

	eng, err := f.Open(path)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	col, err := eng.Collection("docs")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	mustUpsert(t, col, engine.Document{"key": "k", "value": "durable"}, engine.Predicate{"key": "k"})
	if err := eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	eng, err = f.Open(path)
	if err != nil {
		t.Fatalf("reopen engine: %v", err)
	}
	defer eng.Close()
	col, err = eng.Collection("docs")
	if err != nil {
		t.Fatalf("collection after reopen: %v", err)
	}
	doc, found, err := col.Get(engine.Predicate{"key": "k"})
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if !found || doc["value"] != "durable" {
		t.Errorf("document did not survive reopen: %v (found=%v)", doc, found)
	}
}

func testClosedEngine(t *testing.T, f Factory) {
	path := filepath.Join(t.TempDir(), "docs"+f.Ext)
	eng, err := f.Open(path)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	col, err := eng.Collection("docs")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	if err := col.Upsert(engine.Document{"key": "k"}, engine.Predicate{"key": "k"}); err == nil {
		t.Error("upsert on closed engine should fail")
	}
	if _, err := eng.Collection("other"); err == nil {
		t.Error("collection on closed engine should fail")
	}
}
