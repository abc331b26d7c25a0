// Package flexform reads plugin settings stored as T3FlexForms XML documents.
//
// A flexform groups fields into sheets; every field holds one value per
// language and value index:
//
//	<T3FlexForms>
//	  <data>
//	    <sheet index="sDEF">
//	      <language index="lDEF">
//	        <field index="templateFile">
//	          <value index="vDEF">list.html</value>
//	        </field>
//	      </language>
//	    </sheet>
//	  </data>
//	</T3FlexForms>
package flexform

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

const (
	// DefaultSheet is the sheet used when none is given.
	DefaultSheet = "sDEF"
	// DefaultLanguage is the language index of untranslated values.
	DefaultLanguage = "lDEF"
	// DefaultValue is the value index of plain values.
	DefaultValue = "vDEF"
)

// ErrNoRoot is returned for documents without a T3FlexForms root element.
var ErrNoRoot = errors.New("flexform: missing T3FlexForms element")

type key struct {
	sheet, language, field, value string
}

// Data holds the values of a parsed flexform document.
type Data struct {
	values map[key]string
}

// ParseString parses a flexform document. An empty or blank document yields
// empty Data.
func ParseString(doc string) (*Data, error) {
	return Parse(strings.NewReader(doc))
}

// Parse reads a flexform document from r.
func Parse(r io.Reader) (*Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("flexform: could not read document: %w", err)
	}
	data := &Data{values: map[key]string{}}
	if strings.TrimSpace(string(raw)) == "" {
		return data, nil
	}

	doc := etree.NewDocument()
	if err = doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("flexform: could not parse document: %w", err)
	}
	root := doc.SelectElement("T3FlexForms")
	if root == nil {
		return nil, ErrNoRoot
	}

	for _, dataEl := range root.SelectElements("data") {
		for _, sheet := range dataEl.SelectElements("sheet") {
			sheetName := sheet.SelectAttrValue("index", DefaultSheet)
			for _, lang := range sheet.SelectElements("language") {
				langName := lang.SelectAttrValue("index", DefaultLanguage)
				for _, field := range lang.SelectElements("field") {
					fieldName := field.SelectAttrValue("index", "")
					if fieldName == "" {
						continue
					}
					for _, value := range field.SelectElements("value") {
						k := key{sheetName, langName, fieldName, value.SelectAttrValue("index", DefaultValue)}
						data.values[k] = strings.TrimSpace(value.Text())
					}
				}
			}
		}
	}
	return data, nil
}

// Value returns the default-language value of field in sheet. An empty sheet
// means DefaultSheet.
func (d *Data) Value(sheet, field string) (string, bool) {
	return d.Lookup(sheet, DefaultLanguage, field, DefaultValue)
}

// Lookup returns a value by its full address.
func (d *Data) Lookup(sheet, language, field, value string) (string, bool) {
	if d == nil {
		return "", false
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	v, ok := d.values[key{sheet, language, field, value}]
	return v, ok
}

// Sheets returns the names of all sheets, sorted.
func (d *Data) Sheets() []string {
	seen := map[string]struct{}{}
	for k := range d.values {
		seen[k.sheet] = struct{}{}
	}
	return sortedKeys(seen)
}

// Fields returns the names of all fields in sheet, sorted.
func (d *Data) Fields(sheet string) []string {
	seen := map[string]struct{}{}
	for k := range d.values {
		if k.sheet == sheet {
			seen[k.field] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Len returns the number of stored values.
func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return len(d.values)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
