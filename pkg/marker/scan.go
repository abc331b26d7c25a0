package marker

import (
	"regexp"
	"strings"
)

// tag is a subpart comment such as <!-- ###NAME### --> found in template text.
type tag struct {
	name       string
	start, end int
}

// scanner finds markers and subpart tags for one name grammar.
type scanner struct {
	tags    *regexp.Regexp
	markers *regexp.Regexp
}

var (
	strictScanner = newScanner(`[A-Z](?:[A-Z0-9_]*[A-Z0-9])?`)
	legacyScanner = newScanner(`[^#]+`)
)

func newScanner(namePattern string) *scanner {
	return &scanner{
		tags:    regexp.MustCompile(`<!--[ \t]*###(` + namePattern + `)###[ \t]*-->`),
		markers: regexp.MustCompile(`###(` + namePattern + `)###`),
	}
}

// markerNames returns the distinct names of all delimited tokens in text.
// Subpart names are included as they are markers syntactically.
func (s *scanner) markerNames(text string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, m := range s.markers.FindAllStringSubmatch(text, -1) {
		names[m[1]] = struct{}{}
	}
	return names
}

// findTags returns all subpart tags of text in order of appearance.
func (s *scanner) findTags(text string) []tag {
	matches := s.tags.FindAllStringSubmatchIndex(text, -1)
	tags := make([]tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, tag{name: text[m[2]:m[3]], start: m[0], end: m[1]})
	}
	return tags
}

// pairTags returns, for every tag, the index of the nearest following tag
// with the same name, or -1 if there is none.
func pairTags(tags []tag) []int {
	next := make([]int, len(tags))
	seen := make(map[string]int)
	for i := len(tags) - 1; i >= 0; i-- {
		if j, ok := seen[tags[i].name]; ok {
			next[i] = j
		} else {
			next[i] = -1
		}
		seen[tags[i].name] = i
	}
	return next
}

// subparts extracts the body of every subpart in text. Only the first pair
// of tags for a name is used.
func (s *scanner) subparts(text string) map[string]string {
	tags := s.findTags(text)
	next := pairTags(tags)
	bodies := make(map[string]string)
	seen := make(map[string]struct{})
	for i, t := range tags {
		if _, ok := seen[t.name]; ok {
			continue
		}
		seen[t.name] = struct{}{}
		if j := next[i]; j >= 0 {
			bodies[t.name] = text[t.end:tags[j].start]
		}
	}
	return bodies
}

// expand copies text to b, replacing every outermost subpart region
// (opening tag, body and closing tag) with the result of resolve. Tags
// without a closing partner are copied as they are.
func (s *scanner) expand(b *strings.Builder, text string, resolve func(name string) (string, error)) error {
	tags := s.findTags(text)
	next := pairTags(tags)
	pos := 0
	for i := 0; i < len(tags); i++ {
		j := next[i]
		if j < 0 {
			continue
		}
		content, err := resolve(tags[i].name)
		if err != nil {
			return err
		}
		b.WriteString(text[pos:tags[i].start])
		b.WriteString(content)
		pos = tags[j].end
		i = j
	}
	b.WriteString(text[pos:])
	return nil
}
