package locallang

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads labels from a YAML document that maps languages to labels:
//
//	default:
//	  label_title: Events
//	de:
//	  label_title: Veranstaltungen
func LoadYAML(r io.Reader) (*Catalog, error) {
	var doc map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}

	c := NewCatalog()
	for lang, labels := range doc {
		for key, value := range labels {
			c.Set(lang, key, value)
		}
	}
	return c, nil
}

// LoadYAMLFile reads labels from the YAML file at path.
func LoadYAMLFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return LoadYAML(f)
}
