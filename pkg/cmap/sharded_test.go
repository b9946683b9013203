package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestMap_Basic(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report absent")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("a still present after Delete")
	}
	m.Delete("a")

	if v, ok := m.Pop("b"); !ok || v != 2 {
		t.Errorf("Pop(b) = %d, %v; want 2, true", v, ok)
	}
	if _, ok := m.Pop("b"); ok {
		t.Error("second Pop(b) should report absent")
	}
}

func TestMap_NonStringKeys(t *testing.T) {
	m := New[int, string]()
	for i := 0; i < 100; i++ {
		m.Set(i, fmt.Sprint(i))
	}
	for i := 0; i < 100; i++ {
		if v, ok := m.Get(i); !ok || v != fmt.Sprint(i) {
			t.Fatalf("Get(%d) = %q, %v", i, v, ok)
		}
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{4, 4},
		{64, 64},
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{12, DefaultShardCount},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			m := NewWithShards[string, int](tt.count)
			if len(m.shards) != tt.want {
				t.Errorf("shards = %d, want %d", len(m.shards), tt.want)
			}
		})
	}
}

func TestMap_RangeKeysClear(t *testing.T) {
	m := New[string, int]()
	for _, k := range []string{"x", "y", "z"} {
		m.Set(k, len(k))
	}

	keys := m.Keys()
	sort.Strings(keys)
	if fmt.Sprint(keys) != "[x y z]" {
		t.Errorf("Keys() = %v", keys)
	}

	seen := 0
	m.Range(func(string, int) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Range stopped after %d calls, want 1", seen)
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d", m.Count())
	}
}

func TestMap_Concurrent(t *testing.T) {
	m := New[string, int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d-%d", g, i)
				m.Set(key, i)
				m.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if m.Count() != 1600 {
		t.Errorf("Count() = %d, want 1600", m.Count())
	}
}
