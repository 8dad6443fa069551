// Package naming generates collision-free public user names.
//
// A user name is a display name plus a 4-digit hash suffix, e.g.
// "BraveOtter#4821". Generated names combine one adjective and one
// animal from fixed vocabularies; uniqueness is checked against the
// profile store and only the numeric suffix is re-rolled on collision.
// The loop is unbounded on purpose: the 9000-value suffix space makes
// repeated collisions negligible, and failing after N tries would turn
// an astronomically unlikely event into a user-visible error.
package naming

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
)

// HashCode bounds. Suffixes are always 4 digits.
const (
	HashMin = 1000
	HashMax = 9999
)

// validName matches caller-supplied display names: letters and digits
// only, no spaces or separators.
var validName = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Lookup reports whether a user name is already taken. Implemented by
// the profile store.
type Lookup interface {
	UserNameExists(ctx context.Context, userName string) (bool, error)
}

// ValidName reports whether name is an acceptable display name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// UserName joins a display name and hash code, e.g. ("Laurie", 3384) ->
// "Laurie#3384".
func UserName(name string, hashCode int) string {
	return fmt.Sprintf("%s#%d", name, hashCode)
}

// randomName picks an Adjective+Animal pair.
func randomName() string {
	return adjectives[rand.Intn(len(adjectives))] + animals[rand.Intn(len(animals))]
}

// randomHash picks a suffix in [HashMin, HashMax].
func randomHash() int {
	return HashMin + rand.Intn(HashMax-HashMin+1)
}

// Generate produces a fresh unique (name, hashCode, userName) triple for
// a new profile. The word pair is fixed after the first roll; only the
// hash suffix is re-rolled until the combination is free.
func Generate(ctx context.Context, lookup Lookup) (name string, hashCode int, userName string, err error) {
	name = randomName()
	hashCode = randomHash()
	for {
		userName = UserName(name, hashCode)
		exists, err := lookup.UserNameExists(ctx, userName)
		if err != nil {
			return "", 0, "", err
		}
		if !exists {
			return name, hashCode, userName, nil
		}
		hashCode = randomHash()
	}
}

// Rehash finds a unique user name for a caller-supplied display name,
// trying prevHash first so an unchanged hash survives a rename when it
// can. The name itself is never altered here; it belongs to the caller.
func Rehash(ctx context.Context, lookup Lookup, name string, prevHash int) (hashCode int, userName string, err error) {
	hashCode = prevHash
	for {
		userName = UserName(name, hashCode)
		exists, err := lookup.UserNameExists(ctx, userName)
		if err != nil {
			return 0, "", err
		}
		if !exists {
			return hashCode, userName, nil
		}
		hashCode = randomHash()
	}
}
