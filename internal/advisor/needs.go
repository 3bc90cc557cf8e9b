package advisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"shoplens/internal/core"
	"shoplens/internal/jsonextract"
)

// maxConcurrentImages caps the parallel Imagen calls per needs-analysis
// request. The backend rate limit bites quickly above this.
const maxConcurrentImages = 3

type archetypeEnvelope struct {
	UserArchetypes []core.Archetype `json:"user_archetypes"`
}

// AnalyzeNeeds derives user archetypes for a product category and
// generates one image per archetype in parallel. Image failures are
// per-archetype: the archetype is still returned with a nil ImageURL.
func (a *Advisor) AnalyzeNeeds(ctx context.Context, productCategory string) ([]core.Archetype, error) {
	raw, err := a.text.CompleteJSON(ctx, a.models.Chat, fmt.Sprintf(needsPromptTemplate, productCategory))
	if err != nil {
		return nil, fmt.Errorf("needs analysis failed: %w", err)
	}

	var envelope archetypeEnvelope
	if err := jsonextract.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("needs analysis returned malformed output: %w", err)
	}

	archetypes := envelope.UserArchetypes
	if len(archetypes) == 0 {
		a.log.Warn("Needs analysis produced no archetypes", "category", productCategory)
		return archetypes, nil
	}
	ensureUniqueIDs(archetypes)

	sessionID := uuid.NewString()
	a.attachImages(ctx, sessionID, archetypes)
	return archetypes, nil
}

// ensureUniqueIDs replaces blank or duplicated model-chosen IDs so the
// generated image objects never collide within a session.
func ensureUniqueIDs(archetypes []core.Archetype) {
	seen := make(map[string]bool, len(archetypes))
	for i := range archetypes {
		if archetypes[i].ID == "" || seen[archetypes[i].ID] {
			archetypes[i].ID = uuid.NewString()
		}
		seen[archetypes[i].ID] = true
	}
}

// attachImages generates images for all archetypes with bounded
// concurrency and assigns the resulting URLs by index.
func (a *Advisor) attachImages(ctx context.Context, sessionID string, archetypes []core.Archetype) {
	sem := semaphore.NewWeighted(maxConcurrentImages)
	urls := make([]*string, len(archetypes))

	var wg sync.WaitGroup
	for i, arch := range archetypes {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, arch core.Archetype) {
			defer wg.Done()
			defer sem.Release(1)

			url, err := a.images.GenerateArchetypeImage(ctx, sessionID, arch.ID, arch.Description)
			if err != nil {
				a.log.Warn("Archetype image generation failed", "error", err, "archetype_id", arch.ID)
				return
			}
			urls[i] = &url
		}(i, arch)
	}
	wg.Wait()

	for i := range archetypes {
		archetypes[i].ImageURL = urls[i]
	}
}
