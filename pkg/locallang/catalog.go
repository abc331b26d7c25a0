package locallang

import (
	"sort"

	"golang.org/x/text/language"
)

// DefaultLanguage is the language key of the base labels.
const DefaultLanguage = "default"

// Catalog holds labels for any number of languages.
type Catalog struct {
	labels map[string]map[string]string
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{labels: map[string]map[string]string{}}
}

// Set stores the label key for lang. An empty lang means DefaultLanguage.
func (c *Catalog) Set(lang, key, value string) {
	if lang == "" {
		lang = DefaultLanguage
	}
	labels, ok := c.labels[lang]
	if !ok {
		labels = map[string]string{}
		c.labels[lang] = labels
	}
	labels[key] = value
}

// Get returns the label key for lang without any fallback.
func (c *Catalog) Get(lang, key string) (string, bool) {
	v, ok := c.labels[lang][key]
	return v, ok
}

// Merge copies all labels of other into c, overwriting existing ones.
func (c *Catalog) Merge(other *Catalog) {
	for lang, labels := range other.labels {
		for key, value := range labels {
			c.Set(lang, key, value)
		}
	}
}

// Languages returns all languages in the catalog, sorted.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.labels))
	for lang := range c.labels {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Keys returns the label keys of lang, sorted.
func (c *Catalog) Keys(lang string) []string {
	keys := make([]string, 0, len(c.labels[lang]))
	for key := range c.labels[lang] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of labels over all languages.
func (c *Catalog) Len() int {
	n := 0
	for _, labels := range c.labels {
		n += len(labels)
	}
	return n
}

// Localizer returns a Localizer for the catalog language that best matches
// lang, such as "de" for "de-CH". Labels missing in that language are taken
// from DefaultLanguage.
func (c *Catalog) Localizer(lang string) *Localizer {
	l := &Localizer{
		lang:     DefaultLanguage,
		fallback: c.labels[DefaultLanguage],
	}
	if lang == "" || lang == DefaultLanguage {
		return l
	}

	want, err := language.Parse(lang)
	if err != nil {
		return l
	}

	names := []string{DefaultLanguage}
	supported := []language.Tag{language.Und}
	for _, name := range c.Languages() {
		if name == DefaultLanguage {
			continue
		}
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		names = append(names, name)
		supported = append(supported, tag)
	}

	_, idx, confidence := language.NewMatcher(supported).Match(want)
	if confidence == language.No || idx == 0 {
		return l
	}
	l.lang = names[idx]
	l.labels = c.labels[names[idx]]
	return l
}

// Localizer looks up labels in one language.
type Localizer struct {
	lang     string
	labels   map[string]string
	fallback map[string]string
}

// Language returns the catalog language the Localizer reads from.
func (l *Localizer) Language() string {
	return l.lang
}

// Label returns the label key, falling back to the default language. Missing
// labels yield an empty string.
func (l *Localizer) Label(key string) string {
	if v, ok := l.labels[key]; ok {
		return v
	}
	return l.fallback[key]
}
