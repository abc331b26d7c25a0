package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CTAG07/hashmark/pkg/flexform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "setup.yaml", `
templateFile: default.html
cssFile: ""
class_title: title
limit: 10
`)
	override := writeFile(t, dir, "site.toml", `
templateFile = "site.html"
`)

	src, err := Load(
		WithDefaults(map[string]any{"class_title": "fallback", "listPid": "5"}),
		WithFile(base),
		WithFile(override),
	)
	require.NoError(t, err)

	v, ok := src.Lookup("", "templateFile")
	assert.True(t, ok)
	assert.Equal(t, "site.html", v, "later files override earlier ones")

	v, _ = src.Lookup("", "class_title")
	assert.Equal(t, "title", v, "files override defaults")

	v, _ = src.Lookup("", "listPid")
	assert.Equal(t, "5", v)

	v, _ = src.Lookup("", "limit")
	assert.Equal(t, "10", v, "non-string values are formatted")

	v, ok = src.Lookup("", "cssFile")
	assert.True(t, ok, "empty values are present")
	assert.Empty(t, v)

	_, ok = src.Lookup("", "missing")
	assert.False(t, ok)
}

func TestLoad_Root(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "setup.yaml", `
plugin:
  tx_seminars_pi1:
    templateFile: seminars.html
  tx_other_pi1:
    templateFile: other.html
`)
	src, err := Load(WithFile(path), WithRoot("plugin.tx_seminars_pi1"))
	require.NoError(t, err)

	v, ok := src.Lookup("", "templateFile")
	assert.True(t, ok)
	assert.Equal(t, "seminars.html", v)
	assert.Len(t, src.All(), 1)
}

func TestLookup_FlexformPriority(t *testing.T) {
	flex, err := flexform.ParseString(`<T3FlexForms><data>
<sheet index="s_template_special"><language index="lDEF">
  <field index="templateFile"><value index="vDEF">flex.html</value></field>
  <field index="cssFile"><value index="vDEF"></value></field>
</language></sheet>
</data></T3FlexForms>`)
	require.NoError(t, err)

	src, err := Load(
		WithDefaults(map[string]any{"templateFile": "ts.html", "cssFile": "ts.css"}),
		WithFlexform(flex),
	)
	require.NoError(t, err)

	v, _ := src.Lookup("s_template_special", "templateFile")
	assert.Equal(t, "flex.html", v)

	v, _ = src.Lookup("sDEF", "templateFile")
	assert.Equal(t, "ts.html", v, "flexform values only apply to their sheet")

	v, _ = src.Lookup("s_template_special", "cssFile")
	assert.Equal(t, "ts.css", v, "empty flexform values fall back to the base configuration")
}

func TestLoad_FlexformFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flex.xml", `<T3FlexForms><data><sheet index="sDEF"><language index="lDEF">
<field index="mode"><value index="vDEF">list</value></field>
</language></sheet></data></T3FlexForms>`)

	src, err := Load(WithFlexformFile(path))
	require.NoError(t, err)
	v, ok := src.Lookup("", "mode")
	assert.True(t, ok)
	assert.Equal(t, "list", v)
	assert.Equal(t, 1, src.Flexform().Len())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(WithFile(writeFile(t, dir, "setup.ini", "a=b")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(WithFile(filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)

	_, err = Load(WithFlexformFile(filepath.Join(dir, "missing.xml")))
	assert.Error(t, err)
}
