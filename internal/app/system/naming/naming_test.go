package naming

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

// fakeLookup marks a set of user names as taken and counts lookups.
type fakeLookup struct {
	taken   map[string]bool
	queries int
}

func (f *fakeLookup) UserNameExists(ctx context.Context, userName string) (bool, error) {
	f.queries++
	return f.taken[userName], nil
}

func TestUserName(t *testing.T) {
	got := UserName("Laurie", 3384)
	if got != "Laurie#3384" {
		t.Errorf("UserName = %q, want %q", got, "Laurie#3384")
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Alice", true},
		{"alice99", true},
		{"A", true},
		{"", false},
		{"two words", false},
		{"tab\tname", false},
		{"hash#name", false},
		{"dash-name", false},
		{"émile", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	lookup := &fakeLookup{taken: map[string]bool{}}

	name, hashCode, userName, err := Generate(ctx, lookup)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if name == "" {
		t.Error("empty name")
	}
	if hashCode < HashMin || hashCode > HashMax {
		t.Errorf("hash code %d outside [%d, %d]", hashCode, HashMin, HashMax)
	}
	if userName != UserName(name, hashCode) {
		t.Errorf("user name %q does not match %q + hash %d", userName, name, hashCode)
	}
	if !strings.Contains(userName, "#") {
		t.Errorf("user name %q missing separator", userName)
	}
}

func TestGenerate_RetriesOnlyHashOnCollision(t *testing.T) {
	ctx := context.Background()

	// Report every candidate as taken for the first few lookups. The
	// word pair must stay fixed across retries; only the hash changes.
	var firstPair string
	queries := 0
	wrapped := lookupFunc(func(ctx context.Context, userName string) (bool, error) {
		pair := strings.Split(userName, "#")[0]
		if firstPair == "" {
			firstPair = pair
		} else if pair != firstPair {
			t.Fatalf("word pair changed across retries: %q then %q", firstPair, pair)
		}
		queries++
		return queries <= 3, nil
	})

	_, _, userName, err := Generate(ctx, wrapped)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(userName, firstPair+"#") {
		t.Errorf("final user name %q does not keep first word pair %q", userName, firstPair)
	}
}

func TestRehash_KeepsPreviousHashWhenFree(t *testing.T) {
	ctx := context.Background()
	lookup := &fakeLookup{taken: map[string]bool{}}

	hashCode, userName, err := Rehash(ctx, lookup, "Alice", 4821)
	if err != nil {
		t.Fatalf("Rehash failed: %v", err)
	}
	if hashCode != 4821 {
		t.Errorf("hash code = %d, want previous hash 4821", hashCode)
	}
	if userName != "Alice#4821" {
		t.Errorf("user name = %q, want %q", userName, "Alice#4821")
	}
}

func TestRehash_RerollsOnCollision(t *testing.T) {
	ctx := context.Background()
	lookup := &fakeLookup{taken: map[string]bool{"Alice#4821": true}}

	hashCode, userName, err := Rehash(ctx, lookup, "Alice", 4821)
	if err != nil {
		t.Fatalf("Rehash failed: %v", err)
	}
	if hashCode == 4821 {
		t.Error("hash code not re-rolled despite collision")
	}
	if hashCode < HashMin || hashCode > HashMax {
		t.Errorf("re-rolled hash %d outside [%d, %d]", hashCode, HashMin, HashMax)
	}
	if userName != "Alice#"+strconv.Itoa(hashCode) {
		t.Errorf("user name %q does not match re-rolled hash %d", userName, hashCode)
	}
}

// lookupFunc adapts a function to the Lookup interface.
type lookupFunc func(ctx context.Context, userName string) (bool, error)

func (f lookupFunc) UserNameExists(ctx context.Context, userName string) (bool, error) {
	return f(ctx, userName)
}
