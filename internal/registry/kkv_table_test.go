package registry

import (
	"testing"
	"time"

	"github.com/mesh-intelligence/larder/pkg/store"
)

func newKKV(t *testing.T, s *Store, name string) store.KKVTable {
	t.Helper()
	if err := s.CreateKKVTable(name); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	kkv, err := s.KKV(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	t.Cleanup(func() { kkv.Close() })
	return kkv
}

func TestKKVRoundTrip(t *testing.T) {
	for _, eng := range engines {
		t.Run(eng, func(t *testing.T) {
			s := newStore(t, eng)
			kkv := newKKV(t, s, "sessions")

			data := map[string]any{"ip": "10.0.0.1"}
			if err := kkv.Set("alice", "laptop", store.NewValue(data)); err != nil {
				t.Fatalf("set: %v", err)
			}

			v, found, err := kkv.Get("alice", "laptop")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !found {
				t.Fatal("expected value")
			}
			if v.Data["ip"] != "10.0.0.1" {
				t.Errorf("unexpected data %v", v.Data)
			}
			if v.CreatedAt.IsZero() || v.UpdatedAt.IsZero() {
				t.Errorf("timestamps not set: %+v", v)
			}
		})
	}
}

func TestKKVNumericDataNormalized(t *testing.T) {
	for _, eng := range engines {
		t.Run(eng, func(t *testing.T) {
			s := newStore(t, eng)
			kkv := newKKV(t, s, "sessions")

			if err := kkv.Set("alice", "laptop", store.NewValue(map[string]any{"port": 8080})); err != nil {
				t.Fatalf("set: %v", err)
			}

			// Numbers come back in the shape the engine stores.
			v, found, err := kkv.Get("alice", "laptop")
			if err != nil || !found {
				t.Fatalf("get: found=%v err=%v", found, err)
			}
			if port, ok := v.Data["port"].(float64); !ok || port != 8080 {
				t.Errorf("port = %v (%T), want float64 8080", v.Data["port"], v.Data["port"])
			}
		})
	}
}

func TestKKVCompositeKeyIsolation(t *testing.T) {
	for _, eng := range engines {
		t.Run(eng, func(t *testing.T) {
			s := newStore(t, eng)
			kkv := newKKV(t, s, "sessions")

			pairs := [][2]string{
				{"alice", "laptop"},
				{"alice", "phone"},
				{"bob", "laptop"},
			}
			for _, p := range pairs {
				data := map[string]any{"owner": p[0], "device": p[1]}
				if err := kkv.Set(p[0], p[1], store.NewValue(data)); err != nil {
					t.Fatalf("set %v: %v", p, err)
				}
			}

			// Overwriting one pair must not touch pairs sharing either key.
			if err := kkv.Set("alice", "laptop", store.NewValue(map[string]any{"owner": "alice", "device": "laptop", "rev": "2"})); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			for _, p := range pairs[1:] {
				v, found, err := kkv.Get(p[0], p[1])
				if err != nil || !found {
					t.Fatalf("get %v: found=%v err=%v", p, found, err)
				}
				if _, dirty := v.Data["rev"]; dirty {
					t.Errorf("overwrite leaked into %v: %v", p, v.Data)
				}
			}

			// Deleting one pair must leave the siblings alone.
			removed, err := kkv.Delete("alice", "laptop")
			if err != nil || !removed {
				t.Fatalf("delete: removed=%v err=%v", removed, err)
			}
			if _, found, _ := kkv.Get("alice", "phone"); !found {
				t.Error("delete removed a sibling under the same primary key")
			}
			if _, found, _ := kkv.Get("bob", "laptop"); !found {
				t.Error("delete removed a sibling under the same secondary key")
			}
		})
	}
}

func TestKKVDeleteAbsent(t *testing.T) {
	s := newStore(t, store.EngineSQLite)
	kkv := newKKV(t, s, "sessions")

	removed, err := kkv.Delete("alice", "laptop")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed {
		t.Error("expected delete of absent pair to report false")
	}
}

func TestKKVPrimaryKeys(t *testing.T) {
	s := newStore(t, store.EngineSQLite)
	kkv := newKKV(t, s, "sessions")

	for _, p := range [][2]string{
		{"alice", "laptop"}, {"alice", "phone"}, {"bob", "laptop"},
	} {
		if err := kkv.Set(p[0], p[1], store.NewValue(map[string]any{"d": p[1]})); err != nil {
			t.Fatalf("set %v: %v", p, err)
		}
	}

	pkeys, err := kkv.PrimaryKeys()
	if err != nil {
		t.Fatalf("primary keys: %v", err)
	}
	if len(pkeys) != 2 {
		t.Errorf("expected deduplicated primary keys, got %v", pkeys)
	}
	seen := map[string]bool{}
	for _, k := range pkeys {
		seen[k] = true
	}
	if !seen["alice"] || !seen["bob"] {
		t.Errorf("missing primary key in %v", pkeys)
	}
}

func TestKKVSecondaryKeys(t *testing.T) {
	s := newStore(t, store.EngineSQLite)
	kkv := newKKV(t, s, "sessions")

	for _, p := range [][2]string{
		{"alice", "laptop"}, {"alice", "phone"}, {"bob", "tablet"},
	} {
		if err := kkv.Set(p[0], p[1], store.NewValue(map[string]any{"d": p[1]})); err != nil {
			t.Fatalf("set %v: %v", p, err)
		}
	}

	skeys, err := kkv.SecondaryKeys("alice")
	if err != nil {
		t.Fatalf("secondary keys: %v", err)
	}
	if len(skeys) != 2 {
		t.Errorf("expected 2 secondary keys for alice, got %v", skeys)
	}
	for _, k := range skeys {
		if k != "laptop" && k != "phone" {
			t.Errorf("unexpected secondary key %q", k)
		}
	}

	skeys, err = kkv.SecondaryKeys("nobody")
	if err != nil {
		t.Fatalf("secondary keys for absent pkey: %v", err)
	}
	if len(skeys) != 0 {
		t.Errorf("expected no keys for absent pkey, got %v", skeys)
	}
}

func TestKKVAllNested(t *testing.T) {
	for _, eng := range engines {
		t.Run(eng, func(t *testing.T) {
			s := newStore(t, eng)
			kkv := newKKV(t, s, "sessions")

			want := map[string]map[string]string{
				"alice": {"laptop": "10.0.0.1", "phone": "10.0.0.2"},
				"bob":   {"laptop": "10.0.0.3"},
			}
			for pkey, devices := range want {
				for skey, ip := range devices {
					if err := kkv.Set(pkey, skey, store.NewValue(map[string]any{"ip": ip})); err != nil {
						t.Fatalf("set %s/%s: %v", pkey, skey, err)
					}
				}
			}

			all, err := kkv.All()
			if err != nil {
				t.Fatalf("all: %v", err)
			}
			if len(all) != len(want) {
				t.Fatalf("expected %d primary keys, got %d", len(want), len(all))
			}
			for pkey, devices := range want {
				got, ok := all[pkey]
				if !ok {
					t.Fatalf("missing primary key %s", pkey)
				}
				if len(got) != len(devices) {
					t.Errorf("pkey %s: expected %d entries, got %d", pkey, len(devices), len(got))
				}
				for skey, ip := range devices {
					v, ok := got[skey]
					if !ok || v.Data["ip"] != ip {
						t.Errorf("%s/%s: got %v", pkey, skey, v.Data)
					}
				}
			}
		})
	}
}

func TestKKVCreatedAtPreserved(t *testing.T) {
	s := newStore(t, store.EngineSQLite)
	kkv := newKKV(t, s, "sessions")

	if err := kkv.Set("alice", "laptop", store.NewValue(map[string]any{"rev": "1"})); err != nil {
		t.Fatalf("first set: %v", err)
	}
	first, _, err := kkv.Get("alice", "laptop")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := kkv.Set("alice", "laptop", store.NewValue(map[string]any{"rev": "2"})); err != nil {
		t.Fatalf("second set: %v", err)
	}
	second, _, err := kkv.Get("alice", "laptop")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on overwrite: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestKKVValidation(t *testing.T) {
	s := newStore(t, store.EngineSQLite)
	kkv := newKKV(t, s, "sessions")

	valid := store.NewValue(map[string]any{"f": "v"})
	if err := kkv.Set("", "skey", valid); err != store.ErrInvalidKey {
		t.Errorf("empty pkey: expected ErrInvalidKey, got %v", err)
	}
	if err := kkv.Set("pkey", "", valid); err != store.ErrInvalidKey {
		t.Errorf("empty skey: expected ErrInvalidKey, got %v", err)
	}
	if err := kkv.Set("pkey", "skey", store.Value{}); err != store.ErrInvalidValue {
		t.Errorf("nil data: expected ErrInvalidValue, got %v", err)
	}
	if _, _, err := kkv.Get("", "skey"); err != store.ErrInvalidKey {
		t.Errorf("get empty pkey: expected ErrInvalidKey, got %v", err)
	}
	if _, err := kkv.Delete("pkey", ""); err != store.ErrInvalidKey {
		t.Errorf("delete empty skey: expected ErrInvalidKey, got %v", err)
	}
	if _, err := kkv.SecondaryKeys(""); err != store.ErrInvalidKey {
		t.Errorf("secondary keys empty pkey: expected ErrInvalidKey, got %v", err)
	}

	pkeys, err := kkv.PrimaryKeys()
	if err != nil {
		t.Fatalf("primary keys: %v", err)
	}
	if len(pkeys) != 0 {
		t.Errorf("validation failure left documents behind: %v", pkeys)
	}
}

func TestKKVFeatures(t *testing.T) {
	s := newStore(t, store.EngineSQLite)
	kkv := newKKV(t, s, "sessions")

	if f := kkv.Features(); f != 0 {
		t.Errorf("kkv table must report no extra capabilities, got %v", f)
	}
}
