/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPoolDropsBlanksAndDuplicates(t *testing.T) {
	p := NewPool([]string{"Pelé", " ", "Pelé", "  Kaká ", ""})

	if p.Len() != 2 {
		t.Fatalf("pool size = %d, want 2", p.Len())
	}
}

func TestLoadPoolBuiltIn(t *testing.T) {
	p, err := LoadPool("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() == 0 {
		t.Fatal("built-in pool is empty")
	}
}

func TestLoadPoolFromFile(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"pool.yaml": "identities:\n  - Zidane\n  - Henry\n",
		"pool.json": `{"identities": ["Zidane", "Henry"]}`,
		"pool.toml": "identities = [\"Zidane\", \"Henry\"]\n",
	}

	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}

			p, err := LoadPool(path)
			if err != nil {
				t.Fatal(err)
			}
			if p.Len() != 2 {
				t.Fatalf("pool size = %d, want 2", p.Len())
			}
		})
	}
}

func TestLoadPoolErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("identities: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPool(empty); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("err = %v, want ErrEmptyPool", err)
	}

	if _, err := LoadPool(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDraw(t *testing.T) {
	var empty *Pool
	if _, ok := empty.Draw(NewRand(1)); ok {
		t.Fatal("draw from nil pool succeeded")
	}

	p := NewPool([]string{"a", "b", "c"})
	got, ok := p.Draw(&seqRand{vals: []int{2}})
	if !ok || got != "c" {
		t.Fatalf("draw = %q, %v; want c, true", got, ok)
	}
}

func TestSeededRandIsReproducible(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 32; i++ {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
