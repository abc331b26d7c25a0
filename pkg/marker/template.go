package marker

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// maxNesting limits how deep subparts are expanded inside each other.
const maxNesting = 64

// Template holds an HTML template with markers and subparts, the values set
// for the markers and the set of hidden subparts.
//
// Marker values and hidden subparts are kept when Process is called again with
// a new template. Use ResetMarkers and ResetHiddenSubparts to clear them.
type Template struct {
	code        string
	processed   bool
	cache       map[string]string
	markerNames map[string]struct{}
	markers     map[string]string
	hidden      map[string]struct{}
	replacer    *strings.Replacer
	scanner     *scanner
	logger      *slog.Logger
}

// New returns an empty, unprocessed Template.
func New(opts ...Option) *Template {
	t := &Template{
		cache:       map[string]string{},
		markerNames: map[string]struct{}{},
		markers:     map[string]string{},
		hidden:      map[string]struct{}{},
		scanner:     strictScanner,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Process stores code as the template and rebuilds the subpart cache and the
// list of marker names from it. The subpart ###MY_SUBPART### is cached under
// the key "MY_SUBPART". An empty string is a valid template.
func (t *Template) Process(code string) {
	t.code = code
	t.markerNames = t.scanner.markerNames(code)
	t.cache = t.scanner.subparts(code)
	t.processed = true

	t.logger.Debug("Template processed",
		"bytes", len(code),
		"markers", len(t.markerNames),
		"subparts", len(t.cache),
	)
}

// Processed reports whether Process has been called.
func (t *Template) Processed() bool {
	return t.processed
}

// FindPrefixedMarkerNames returns the names of all markers in the template
// that start with the given prefix and an underscore, sorted. The prefix is
// case-insensitive: "wrapper" might yield WRAPPER_FOO and WRAPPER_BAR.
func (t *Template) FindPrefixedMarkerNames(prefix string) ([]string, error) {
	if !t.processed {
		return nil, ErrNotInitialized
	}

	start := strings.ToUpper(prefix) + nameSeparator
	var names []string
	for name := range t.markerNames {
		if len(name) > len(start) && strings.HasPrefix(name, start) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// SubpartNames returns the names of all cached subparts, sorted.
func (t *Template) SubpartNames() []string {
	names := make([]string, 0, len(t.cache))
	for name := range t.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetMarker sets the content of the marker name, optionally prefixed. With
// the prefix "field" and the name "one" the marker ###FIELD_ONE### is set.
// Invalid names are ignored.
func (t *Template) SetMarker(name, content, prefix string) {
	qualified := QualifiedName(name, prefix)
	if !IsValidName(qualified) {
		t.logger.Debug("Ignoring marker with invalid name", "name", qualified)
		return
	}
	t.markers[Delimited(qualified)] = content
	t.replacer = nil
}

// GetMarker returns the content of the marker name, or an empty string if it
// has not been set.
func (t *Template) GetMarker(name string) string {
	return t.markers[Delimited(QualifiedName(name, ""))]
}

// SetSubpart sets the content of the subpart name, optionally prefixed. The
// subpart does not need to exist in the template.
func (t *Template) SetSubpart(name, content, prefix string) error {
	if !t.processed {
		return ErrNotInitialized
	}
	qualified := QualifiedName(name, prefix)
	if !IsValidName(qualified) {
		return fmt.Errorf("%w: %q", ErrInvalidName, qualified)
	}
	t.cache[qualified] = content
	return nil
}

// SetMarkerIfNonZero sets the marker to the decimal representation of content
// if content is not zero. It returns whether the marker has been set.
func (t *Template) SetMarkerIfNonZero(name string, content int, prefix string) bool {
	ok := content != 0
	if ok {
		t.SetMarker(name, strconv.Itoa(content), prefix)
	}
	return ok
}

// SetMarkerIfNonEmpty sets the marker if content is not empty. It returns
// whether the marker has been set.
func (t *Template) SetMarkerIfNonEmpty(name, content, prefix string) bool {
	ok := content != ""
	if ok {
		t.SetMarker(name, content, prefix)
	}
	return ok
}

// IsSubpartVisible reports whether the subpart exists and is not hidden. An
// empty name is never visible.
func (t *Template) IsSubpartVisible(name string) bool {
	name = QualifiedName(name, "")
	if name == "" {
		return false
	}
	if _, ok := t.cache[name]; !ok {
		return false
	}
	_, hidden := t.hidden[name]
	return !hidden
}

// Hide hides the subparts in the comma-separated list names. With the prefix
// "field" and the list "one,two" the subparts FIELD_ONE and FIELD_TWO are
// hidden.
func (t *Template) Hide(names, prefix string) {
	t.HideNames(splitNames(names), prefix)
}

// HideNames hides the given subparts, optionally prefixed.
func (t *Template) HideNames(names []string, prefix string) {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t.hidden[QualifiedName(name, prefix)] = struct{}{}
	}
}

// Unhide makes the subparts in the comma-separated list names visible again,
// except for those listed in permanentlyHidden. Both lists are compared
// without the prefix, so that subparts hidden by configuration stay hidden.
func (t *Template) Unhide(names, permanentlyHidden, prefix string) {
	var keep []string
	if permanentlyHidden != "" {
		keep = splitNames(permanentlyHidden)
	}
	t.UnhideNames(splitNames(names), keep, prefix)
}

// UnhideNames makes the given subparts visible again, except for those listed
// in permanentlyHidden.
func (t *Template) UnhideNames(names, permanentlyHidden []string, prefix string) {
	keep := make(map[string]struct{}, len(permanentlyHidden))
	for _, name := range permanentlyHidden {
		keep[QualifiedName(name, "")] = struct{}{}
	}
	for _, name := range names {
		if _, ok := keep[QualifiedName(name, "")]; ok {
			continue
		}
		delete(t.hidden, QualifiedName(name, prefix))
	}
}

// SetOrHide sets the marker if condition is true and hides the subpart of the
// same name otherwise. The marker and the subpart use separate prefixes. It
// returns condition.
func (t *Template) SetOrHide(name string, condition bool, content, markerPrefix, wrapperPrefix string) bool {
	if condition {
		t.SetMarker(name, content, markerPrefix)
	} else {
		t.Hide(name, wrapperPrefix)
	}
	return condition
}

// SetOrHideIfNonZero is SetOrHide with the condition content != 0.
func (t *Template) SetOrHideIfNonZero(name string, content int, markerPrefix, wrapperPrefix string) bool {
	return t.SetOrHide(name, content != 0, strconv.Itoa(content), markerPrefix, wrapperPrefix)
}

// SetOrHideIfNonEmpty is SetOrHide with the condition content != "".
func (t *Template) SetOrHideIfNonEmpty(name, content, markerPrefix, wrapperPrefix string) bool {
	return t.SetOrHide(name, content != "", content, markerPrefix, wrapperPrefix)
}

// ResetMarkers removes all marker values.
func (t *Template) ResetMarkers() {
	t.markers = map[string]string{}
	t.replacer = nil
}

// ResetHiddenSubparts makes all subparts visible again.
func (t *Template) ResetHiddenSubparts() {
	t.hidden = map[string]struct{}{}
}
