package justify

import (
	"context"
)

// TemplateJustifier picks a fixed string from the catalog. It never fails.
type TemplateJustifier struct {
	catalog *Catalog
}

func NewTemplateJustifier(catalog *Catalog) *TemplateJustifier {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &TemplateJustifier{catalog: catalog}
}

func (t *TemplateJustifier) Name() string {
	return "template"
}

func (t *TemplateJustifier) Justify(_ context.Context, in Input) (string, error) {
	return t.Text(in), nil
}

func (t *TemplateJustifier) Text(in Input) string {
	s := t.catalog.Lookup(in.Language)
	if in.Decision.IsAction() {
		return s.Action
	}
	return s.None
}
