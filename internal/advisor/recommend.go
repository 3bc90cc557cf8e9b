package advisor

import (
	"context"

	"shoplens/internal/core"
)

// RecommendByPreferences is a placeholder ranking over the catalog.
// TODO: score catalog products against the preference map once the
// frontend starts sending structured preferences.
func (a *Advisor) RecommendByPreferences(ctx context.Context, preferences map[string]any, catalog []core.Product) ([]core.Product, error) {
	a.log.Debug("Recommending products", "preferences", preferences)
	if len(catalog) <= 2 {
		return catalog, nil
	}
	return catalog[:2], nil
}
