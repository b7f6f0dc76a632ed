// Package catalog holds the locally configured category tree and parameter
// definitions that supplier data is matched against. The tree is loaded
// once per run from YAML and held immutable afterwards, with one exception:
// alias tables grow append-only during interactive sessions, so that a
// category or parameter confirmed by the user once resolves without a
// prompt forever after.
package catalog

import (
	"sort"
	"strings"
)

// Category is one configured node of the category tree. It maps to exactly
// one repository category, identified by PartCategoryID after Setup.
type Category struct {
	Name string
	// Path is the full breadcrumb, root to leaf, ending in Name.
	Path []string
	// Parameters are the template names parts in this category must carry.
	Parameters []string
	// Aliases are supplier-side strings recognized as this category.
	Aliases []string

	// PartCategoryID is the repository node ID, filled in by Setup.
	PartCategoryID int
}

// PathString renders the breadcrumb the way the repository does.
func (c *Category) PathString() string {
	return strings.Join(c.Path, "/")
}

// Parameter is a configured parameter template with its supplier-side
// aliases.
type Parameter struct {
	Name    string
	Units   string
	Aliases []string

	// TemplateID is the repository template ID, filled in by Setup.
	TemplateID int
}

// Catalog is the run-scoped matching state: the category list plus the two
// alias tables. It is owned by a single importer instance and must not be
// mutated concurrently.
type Catalog struct {
	categories []*Category
	parameters []*Parameter

	// categoryMap maps category names and aliases to categories.
	categoryMap map[string]*Category
	// parameterMap maps parameter names and aliases to the templates they
	// may refer to; one alias can be claimed by several templates.
	parameterMap map[string][]*Parameter
	// byPartCategoryID maps repository category IDs back to configuration,
	// populated by Setup.
	byPartCategoryID map[int]*Category
}

// New builds a Catalog from configured categories and parameters.
func New(categories []*Category, parameters []*Parameter) *Catalog {
	c := &Catalog{
		categories:       categories,
		parameters:       parameters,
		categoryMap:      make(map[string]*Category),
		parameterMap:     make(map[string][]*Parameter),
		byPartCategoryID: make(map[int]*Category),
	}
	for _, category := range categories {
		c.categoryMap[category.Name] = category
		for _, alias := range category.Aliases {
			c.categoryMap[alias] = category
		}
	}
	for _, parameter := range parameters {
		c.parameterMap[parameter.Name] = append(c.parameterMap[parameter.Name], parameter)
		for _, alias := range parameter.Aliases {
			c.parameterMap[alias] = append(c.parameterMap[alias], parameter)
		}
	}
	return c
}

// Categories returns all configured categories in definition order.
func (c *Catalog) Categories() []*Category {
	return c.categories
}

// Parameters returns all configured parameters in definition order.
func (c *Catalog) Parameters() []*Parameter {
	return c.parameters
}

// CategoryByAlias resolves a name or alias to its category.
func (c *Catalog) CategoryByAlias(alias string) (*Category, bool) {
	category, ok := c.categoryMap[alias]
	return category, ok
}

// CategoryByName resolves only an exact category name, not an alias.
// Manual entry during interactive resolution uses this stricter lookup.
func (c *Catalog) CategoryByName(name string) (*Category, bool) {
	category, ok := c.categoryMap[name]
	if !ok || category.Name != name {
		return nil, false
	}
	return category, true
}

// CategoryByPartCategoryID resolves a repository category ID, valid after
// Setup.
func (c *Catalog) CategoryByPartCategoryID(id int) (*Category, bool) {
	category, ok := c.byPartCategoryID[id]
	return category, ok
}

// AddCategoryAlias registers a new supplier-side alias for a category so
// future identical paths resolve without prompting.
func (c *Catalog) AddCategoryAlias(alias string, category *Category) {
	if _, taken := c.categoryMap[alias]; taken {
		return
	}
	category.Aliases = append(category.Aliases, alias)
	c.categoryMap[alias] = category
}

// TemplatesForAlias returns the parameter templates a raw supplier name may
// refer to.
func (c *Catalog) TemplatesForAlias(alias string) []*Parameter {
	return c.parameterMap[alias]
}

// AddParameterAlias registers a raw supplier name as an alias for a
// template. The table is append-only: existing claims are kept.
func (c *Catalog) AddParameterAlias(alias string, parameter *Parameter) {
	for _, existing := range c.parameterMap[alias] {
		if existing == parameter {
			return
		}
	}
	parameter.Aliases = append(parameter.Aliases, alias)
	c.parameterMap[alias] = append(c.parameterMap[alias], parameter)
}

// sortedKeys is used wherever configuration maps must be walked
// deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
