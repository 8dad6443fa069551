// Package normalize holds the canonical forms of user-supplied scalar
// values. Every store write goes through these so lookups never miss on
// case or stray whitespace.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved: "Laurie#3384" and
// "laurie#3384" are different user names by design, while the folded
// name_ci field covers case-insensitive search.
func Name(s string) string {
	return strings.TrimSpace(s)
}
