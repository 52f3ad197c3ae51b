// Package palette is the template catalog the editor drags from.
package palette

import (
	"fmt"
	"strings"

	"arbor/internal/model"

	"go.uber.org/multierr"
)

// Category groups templates under a heading.
type Category struct {
	Name      string           `json:"name" yaml:"name"`
	Label     string           `json:"label,omitempty" yaml:"label,omitempty"`
	Templates []model.Template `json:"templates" yaml:"templates"`
}

// Title is the heading shown for the category.
func (c Category) Title() string {
	if s := strings.TrimSpace(c.Label); s != "" {
		return s
	}
	return c.Name
}

// Catalog is an ordered list of categories.
type Catalog struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Add appends t to its category, creating the category on first use. An
// empty category name files the template under "Basic".
func (c *Catalog) Add(t model.Template) {
	name := strings.TrimSpace(t.Category)
	if name == "" {
		name = "Basic"
	}
	t.Category = name
	for i := range c.Categories {
		if c.Categories[i].Name == name {
			c.Categories[i].Templates = append(c.Categories[i].Templates, t)
			return
		}
	}
	c.Categories = append(c.Categories, Category{Name: name, Templates: []model.Template{t}})
}

// All returns every template in display order.
func (c *Catalog) All() []model.Template {
	var out []model.Template
	for _, cat := range c.Categories {
		for _, t := range cat.Templates {
			if t.Category == "" {
				t.Category = cat.Name
			}
			out = append(out, t)
		}
	}
	return out
}

// Len counts templates.
func (c *Catalog) Len() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Templates)
	}
	return n
}

// Find returns the first template with the given type tag.
func (c *Catalog) Find(typeTag string) (model.Template, bool) {
	for _, t := range c.All() {
		if strings.EqualFold(t.TypeTag, typeTag) {
			return t, true
		}
	}
	return model.Template{}, false
}

// Validate reports every invalid or duplicated template at once.
func (c *Catalog) Validate() error {
	var errs error
	seen := map[string]bool{}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("category without a name"))
		}
		for i, t := range cat.Templates {
			if err := t.Validate(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s[%d]: %w", cat.Name, i, err))
				continue
			}
			key := strings.ToLower(t.TypeTag)
			if seen[key] {
				errs = multierr.Append(errs, fmt.Errorf("%s[%d]: duplicate type %q", cat.Name, i, t.TypeTag))
			}
			seen[key] = true
		}
	}
	return errs
}
