package marker

import (
	"regexp"
	"strings"
)

const (
	// Delimiter wraps marker names inside template text.
	Delimiter = "###"

	// nameSeparator joins a prefix and a name.
	nameSeparator = "_"
)

var validName = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9_]*[a-zA-Z0-9])?$`)

// IsValidName reports whether name, without delimiters, matches the naming
// grammar.
func IsValidName(name string) bool {
	return validName.MatchString(name)
}

// QualifiedName builds the upper-case name for name and an optional prefix,
// without delimiters. QualifiedName("one", "field") is "FIELD_ONE" and
// QualifiedName("one", "") is "ONE".
func QualifiedName(name, prefix string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(prefix) + nameSeparator + name
}

// Delimited wraps an already qualified name in the marker delimiters.
func Delimited(name string) string {
	return Delimiter + name + Delimiter
}

// splitNames splits a comma-separated list of names. Empty input yields a
// single empty name, which never matches a subpart.
func splitNames(list string) []string {
	return strings.Split(list, ",")
}
