// Package slides turns generated copy into a Google Slides deck: it copies
// a template presentation into a Drive folder and fills its placeholders.
package slides

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/copywriter"
	yaml "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTemplate []byte

const nutshellPrefix = "AI_NUTSHELL_LIST."

// Placeholder maps one literal placeholder in the template deck to a copy
// slot, or to fixed text when Slot is empty.
type Placeholder struct {
	Placeholder string `yaml:"placeholder"`
	Slot        string `yaml:"slot,omitempty"`
	Text        string `yaml:"text,omitempty"`
}

// Briefing controls the internal battle-card slide inserted at the front.
type Briefing struct {
	Enabled       bool   `yaml:"enabled"`
	FallbackTitle string `yaml:"fallbackTitle"`
}

// Template describes the deck to copy and how to fill it.
type Template struct {
	TemplateID   string        `yaml:"templateId"`
	Folder       string        `yaml:"folder"`
	Placeholders []Placeholder `yaml:"placeholders"`
	Briefing     Briefing      `yaml:"briefing"`
}

// DefaultTemplate returns the embedded template.
func DefaultTemplate() Template {
	t, err := parseTemplate(defaultTemplate)
	if err != nil {
		panic(fmt.Sprintf("embedded deck template: %v", err))
	}
	return t
}

// LoadTemplate reads a YAML template from path. An empty path returns the default.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read deck template: %w", err)
	}
	t, err := parseTemplate(data)
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parseTemplate(data []byte) (Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("parse deck template: %w", err)
	}
	if t.Briefing.FallbackTitle == "" {
		t.Briefing.FallbackTitle = "CLIENTE"
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Validate checks that every placeholder is non-empty and names a known slot.
func (t Template) Validate() error {
	var errs []error
	if strings.TrimSpace(t.TemplateID) == "" {
		errs = append(errs, errors.New("templateId is required"))
	}
	for i, p := range t.Placeholders {
		if p.Placeholder == "" {
			errs = append(errs, fmt.Errorf("placeholders[%d]: empty placeholder", i))
			continue
		}
		if p.Slot == "" {
			continue
		}
		if _, err := resolve(p.Slot, nil); err != nil {
			errs = append(errs, fmt.Errorf("placeholders[%d] %s: %w", i, p.Placeholder, err))
		}
	}
	return errors.Join(errs...)
}

// WithOverrides returns t with the template ID and folder replaced when non-empty.
func (t Template) WithOverrides(templateID, folder string) Template {
	if templateID != "" {
		t.TemplateID = templateID
	}
	if folder != "" {
		t.Folder = folder
	}
	return t
}

// Value returns the replacement text for p.
func (p Placeholder) Value(c *copywriter.Content) string {
	if p.Slot == "" {
		return p.Text
	}
	v, err := resolve(p.Slot, c)
	if err != nil {
		return ""
	}
	return v
}

// resolve returns the value of slot in c. A nil c only validates the slot name.
func resolve(slot string, c *copywriter.Content) (string, error) {
	if rest, ok := strings.CutPrefix(slot, nutshellPrefix); ok {
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 {
			return "", fmt.Errorf("bad list index in slot %q", slot)
		}
		return c.Nutshell(i), nil
	}
	if _, ok := (&copywriter.Content{}).Slot(slot); !ok {
		return "", fmt.Errorf("unknown slot %q", slot)
	}
	v, _ := c.Slot(slot)
	return v, nil
}
