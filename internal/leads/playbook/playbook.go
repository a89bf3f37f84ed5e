// Package playbook resolves the message templates suggested by the
// next-best-action engine.
package playbook

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"sales_crm_backend/internal/leads/domain"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Template is one message template of the catalog.
type Template struct {
	ID      string `yaml:"-"`
	Channel string `yaml:"channel"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type catalogFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// Playbook is an immutable template catalog.
type Playbook struct {
	templates map[string]Template
}

// Default returns the embedded catalog.
func Default() (*Playbook, error) {
	return Parse(defaultCatalog)
}

// Load returns the embedded catalog with the templates from path layered on
// top. An empty path yields the embedded catalog only.
func Load(path string) (*Playbook, error) {
	pb, err := Default()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return pb, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playbook %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse playbook %s: %w", path, err)
	}
	for id, tmpl := range override.templates {
		pb.templates[id] = tmpl
	}
	return pb, nil
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Playbook, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	templates := make(map[string]Template, len(file.Templates))
	for id, tmpl := range file.Templates {
		if strings.TrimSpace(tmpl.Body) == "" {
			return nil, fmt.Errorf("template %q has an empty body", id)
		}
		if tmpl.Channel == "" {
			tmpl.Channel = "email"
		}
		tmpl.ID = id
		templates[id] = tmpl
	}
	return &Playbook{templates: templates}, nil
}

// Get returns the raw template with the given ID.
func (p *Playbook) Get(id string) (Template, bool) {
	tmpl, ok := p.templates[id]
	return tmpl, ok
}

// IDs returns the catalog's template IDs in sorted order.
func (p *Playbook) IDs() []string {
	ids := make([]string, 0, len(p.templates))
	for id := range p.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Render fills the template's placeholders from lead.
func (p *Playbook) Render(id string, lead domain.Lead) (Template, bool) {
	tmpl, ok := p.templates[id]
	if !ok {
		return Template{}, false
	}
	r := strings.NewReplacer(
		"{{contactName}}", lead.ContactName,
		"{{companyName}}", lead.CompanyName,
	)
	tmpl.Subject = r.Replace(tmpl.Subject)
	tmpl.Body = strings.TrimSpace(r.Replace(tmpl.Body))
	return tmpl, true
}

// Missing returns the IDs from want that the catalog lacks.
func (p *Playbook) Missing(want []string) []string {
	var missing []string
	for _, id := range want {
		if _, ok := p.templates[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
