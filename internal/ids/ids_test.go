package ids_test

import (
	"sort"
	"testing"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/ids"
)

func TestNew_SortedAndUnique(t *testing.T) {
	const n = 1000
	generated := make([]string, n)
	seen := make(map[string]bool, n)
	for i := range generated {
		id := ids.New()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
		generated[i] = id
	}

	if !sort.StringsAreSorted(generated) {
		t.Error("expected ids generated in sequence to sort in generation order")
	}
}

func TestValid(t *testing.T) {
	if !ids.Valid(ids.New()) {
		t.Error("fresh id should be valid")
	}
	for _, s := range []string{"", "undefined", "not-a-ulid", "0"} {
		if ids.Valid(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := ids.Time(ids.New())
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if ts.Before(before) {
		t.Errorf("encoded time %v is older than %v", ts, before)
	}
}
