// Package username holds the username-format rules shared by signup and
// user search. Usernames are stored and compared in normalized form.
package username

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var validUsername = regexp.MustCompile(`^[0-9a-z]+$`)

var lower = cases.Lower(language.Und)

// Normalize lower-cases a username the same way regardless of the
// caller's locale. All lookups and stores go through this first.
func Normalize(name string) string {
	return lower.String(name)
}

// Valid reports whether a normalized username is acceptable: lowercase
// letters and digits only, at least one character.
func Valid(name string) bool {
	return validUsername.MatchString(name)
}
