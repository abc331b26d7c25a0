package locallang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Set(DefaultLanguage, "label_title", "Events")
	c.Set(DefaultLanguage, "label_date", "Date")
	c.Set("de", "label_title", "Veranstaltungen")
	c.Set("pt-BR", "label_title", "Eventos")
	return c
}

func TestLocalizer_Fallback(t *testing.T) {
	l := testCatalog().Localizer("de")
	assert.Equal(t, "de", l.Language())
	assert.Equal(t, "Veranstaltungen", l.Label("label_title"))
	assert.Equal(t, "Date", l.Label("label_date"), "missing labels come from the default language")
	assert.Empty(t, l.Label("label_missing"))
}

func TestLocalizer_Matching(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		lang, want string
	}{
		{"", DefaultLanguage},
		{DefaultLanguage, DefaultLanguage},
		{"de-CH", "de"},
		{"pt-BR", "pt-BR"},
		{"ja", DefaultLanguage},
		{"not a language!", DefaultLanguage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Localizer(tt.lang).Language(), "language %q", tt.lang)
	}
}

func TestCatalog_Merge(t *testing.T) {
	c := testCatalog()
	other := NewCatalog()
	other.Set("de", "label_title", "Termine")
	other.Set("fr", "label_title", "Événements")

	c.Merge(other)
	assert.Equal(t, []string{"de", DefaultLanguage, "fr", "pt-BR"}, c.Languages())
	v, ok := c.Get("de", "label_title")
	assert.True(t, ok)
	assert.Equal(t, "Termine", v)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []string{"label_date", "label_title"}, c.Keys(DefaultLanguage))
	assert.Empty(t, c.Keys("es"))
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(`
default:
  label_title: Events
  label_date: Date
de:
  label_title: Veranstaltungen
`))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "Veranstaltungen", c.Localizer("de").Label("label_title"))

	empty, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = LoadYAML(strings.NewReader("default: [not, a, map]"))
	assert.Error(t, err)
}
