package marker

import (
	"fmt"
	"sort"
	"strings"
)

// GetSubpart renders the subpart name, or the complete template if name is
// empty. Nested subparts are rendered recursively and hidden ones are left
// out together with their comment tags. Afterwards all markers that have been
// set are replaced in a single pass; markers without a value stay as they are.
//
// A hidden subpart renders as an empty string. GetSubpart returns
// ErrInvalidName for malformed names and ErrNotFound for subparts that are not
// cached.
func (t *Template) GetSubpart(name string) (string, error) {
	if !t.processed {
		return "", ErrNotInitialized
	}

	code := t.code
	if name != "" {
		qualified := QualifiedName(name, "")
		if !IsValidName(qualified) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		body, ok := t.cache[qualified]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrNotFound, qualified)
		}
		if _, hidden := t.hidden[qualified]; hidden {
			return "", nil
		}
		code = body
	}

	out, err := t.expand(code, 0)
	if err != nil {
		return "", err
	}
	return t.replaceMarkers(out), nil
}

// expand resolves all subparts nested in code.
func (t *Template) expand(code string, depth int) (string, error) {
	if depth >= maxNesting {
		return "", fmt.Errorf("marker: subparts nested deeper than %d levels", maxNesting)
	}

	var b strings.Builder
	b.Grow(len(code))
	err := t.scanner.expand(&b, code, func(name string) (string, error) {
		body, ok := t.cache[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if _, hidden := t.hidden[name]; hidden {
			return "", nil
		}
		return t.expand(body, depth+1)
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *Template) replaceMarkers(s string) string {
	if len(t.markers) == 0 {
		return s
	}
	if t.replacer == nil {
		keys := make([]string, 0, len(t.markers))
		for k := range t.markers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			pairs = append(pairs, k, t.markers[k])
		}
		t.replacer = strings.NewReplacer(pairs...)
	}
	return t.replacer.Replace(s)
}
