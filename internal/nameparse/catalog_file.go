package nameparse

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadCatalogFile reads a YAML catalog definition from path. Lists that
// the file leaves out keep their built-in defaults.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "nameparse: read catalog file")
	}
	return ParseCatalogYAML(data)
}

// ParseCatalogYAML decodes and compiles a YAML catalog definition.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var file CatalogSpec
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "nameparse: decode catalog yaml")
	}

	spec := DefaultSpec()
	if len(file.Titles) > 0 {
		spec.Titles = file.Titles
	}
	if len(file.Suffixes) > 0 {
		spec.Suffixes = file.Suffixes
	}
	if len(file.Particles) > 0 {
		spec.Particles = file.Particles
	}
	if len(file.Templates) > 0 {
		spec.Templates = file.Templates
	}

	return NewCatalog(spec)
}
