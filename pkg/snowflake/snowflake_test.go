package snowflake

import (
	"sync"
	"testing"
)

func TestNewSnowflakeInvalidMachineID(t *testing.T) {
	if _, err := NewSnowflake(-1); err == nil {
		t.Fatal("expected error for negative machine ID")
	}
	if _, err := NewSnowflake(maxMachineID + 1); err == nil {
		t.Fatal("expected error for oversized machine ID")
	}
}

func TestGenerateUnique(t *testing.T) {
	sf, err := NewSnowflake(1)
	if err != nil {
		t.Fatal(err)
	}

	const n = 10000
	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		id := sf.Generate()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %d", id)
		}
		seen[id] = true
	}
}

func TestGenerateConcurrent(t *testing.T) {
	sf, err := NewSnowflake(2)
	if err != nil {
		t.Fatal(err)
	}

	const goroutines = 8
	const perGoroutine = 1000

	var mu sync.Mutex
	seen := make(map[int64]bool, goroutines*perGoroutine)
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, sf.Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate ID generated: %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()
}

func TestParseID(t *testing.T) {
	sf, err := NewSnowflake(7)
	if err != nil {
		t.Fatal(err)
	}

	id := sf.Generate()
	_, machineID, _ := sf.ParseID(id)
	if machineID != 7 {
		t.Fatalf("expected machine ID 7, got %d", machineID)
	}
}
