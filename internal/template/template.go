// Package template provides a catalog of canned server descriptors for
// common MCP servers, installable by name without hand-writing the
// descriptor fields.
package template

import (
	_ "embed"
	"slices"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

//go:embed templates.yaml
var catalogYAML []byte

// Template is one catalog entry.
type Template struct {
	// Name is the template's catalog key and the default server name
	// on install.
	Name string

	// Description is a one-line summary for listings.
	Description string `yaml:"description"`

	// Server is the canned descriptor.
	Server serverSpec `yaml:"server"`
}

// serverSpec mirrors mcp.Server for YAML decoding; the catalog never
// carries unknown fields, so a plain struct suffices.
type serverSpec struct {
	Type    string            `yaml:"type"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

type catalogFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// Catalog holds the available templates.
type Catalog struct {
	templates map[string]Template
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, errors.Wrap(err, "parsing template catalog")
	}
	for name, tpl := range file.Templates {
		tpl.Name = name
		file.Templates[name] = tpl
	}
	return &Catalog{templates: file.Templates}, nil
}

// List returns all templates sorted by name.
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, tpl := range c.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the named template's descriptor. ErrNotFound if the name
// is not in the catalog.
func (c *Catalog) Get(name string) (*mcp.Server, error) {
	tpl, ok := c.templates[name]
	if !ok {
		return nil, errors.Wrapf(mcpmerrors.ErrNotFound, "template %q", name)
	}

	spec := tpl.Server
	srv := &mcp.Server{
		Type:    spec.Type,
		Command: spec.Command,
		Args:    slices.Clone(spec.Args),
		URL:     spec.URL,
	}
	if len(spec.Env) > 0 {
		srv.Env = make(map[string]string, len(spec.Env))
		for k, v := range spec.Env {
			srv.Env[k] = v
		}
	}
	if len(spec.Headers) > 0 {
		srv.Headers = make(map[string]string, len(spec.Headers))
		for k, v := range spec.Headers {
			srv.Headers[k] = v
		}
	}
	return srv, nil
}
