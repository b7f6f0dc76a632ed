package catalog

import (
	"context"

	"github.com/partforge/partsync/pkg/inventory"
)

// Setup reconciles the configured tree with the repository: every
// configured category gets a repository node and every configured parameter
// gets a repository template, created when missing. Repository IDs are
// recorded on the configuration so the matching engine can translate both
// ways. Under a dry-run client created entities carry zero IDs, which is
// fine: the matching logic never dereferences them.
func (c *Catalog) Setup(ctx context.Context, client inventory.Client) error {
	existing, err := client.Categories(ctx)
	if err != nil {
		return err
	}
	byPath := make(map[string]*inventory.PartCategory, len(existing))
	for i := range existing {
		byPath[existing[i].PathString] = &existing[i]
	}

	for _, category := range c.categories {
		node, err := ensureCategoryPath(ctx, client, byPath, category.Path)
		if err != nil {
			return err
		}
		category.PartCategoryID = node.ID
		c.byPartCategoryID[node.ID] = category
	}

	templates, err := client.ParameterTemplates(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]*inventory.ParameterTemplate, len(templates))
	for i := range templates {
		byName[templates[i].Name] = &templates[i]
	}

	for _, parameter := range c.parameters {
		template, ok := byName[parameter.Name]
		if !ok {
			template, err = client.CreateParameterTemplate(ctx, parameter.Name, parameter.Units)
			if err != nil {
				return err
			}
			byName[parameter.Name] = template
		}
		parameter.TemplateID = template.ID
	}

	return nil
}

// ensureCategoryPath walks the breadcrumb creating missing nodes, returning
// the leaf.
func ensureCategoryPath(
	ctx context.Context,
	client inventory.Client,
	byPath map[string]*inventory.PartCategory,
	path []string,
) (*inventory.PartCategory, error) {
	var parent *inventory.PartCategory
	pathString := ""

	for _, segment := range path {
		if pathString == "" {
			pathString = segment
		} else {
			pathString += "/" + segment
		}

		if node, ok := byPath[pathString]; ok {
			parent = node
			continue
		}

		parentID := 0
		if parent != nil {
			parentID = parent.ID
		}
		node, err := client.CreateCategory(ctx, parentID, segment)
		if err != nil {
			return nil, err
		}
		node.PathString = pathString
		byPath[pathString] = node
		parent = node
	}
	return parent, nil
}
