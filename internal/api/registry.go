package api

import (
	"github.com/atlasview/engine/internal/service"
)

// CollectionInfo contains information about a collection for the API response.
type CollectionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CollectionRegistry holds visualization controllers for all configured
// collections.
type CollectionRegistry struct {
	controllers       map[string]*service.Controller
	defaultCollection string
	collectionOrder   []string
	title             string
}

// NewCollectionRegistry creates a new collection registry.
func NewCollectionRegistry(defaultCollection string, order []string, title string) *CollectionRegistry {
	return &CollectionRegistry{
		controllers:       make(map[string]*service.Controller),
		defaultCollection: defaultCollection,
		collectionOrder:   order,
		title:             title,
	}
}

// Register adds a controller for a collection.
func (r *CollectionRegistry) Register(collectionID string, ctrl *service.Controller) {
	r.controllers[collectionID] = ctrl
}

// Get returns the controller for a collection, or nil if not found.
func (r *CollectionRegistry) Get(collectionID string) *service.Controller {
	return r.controllers[collectionID]
}

// Default returns the default collection's controller.
func (r *CollectionRegistry) Default() *service.Controller {
	return r.controllers[r.defaultCollection]
}

// DefaultCollectionID returns the default collection ID.
func (r *CollectionRegistry) DefaultCollectionID() string {
	return r.defaultCollection
}

// CollectionIDs returns all collection IDs in config order.
func (r *CollectionRegistry) CollectionIDs() []string {
	return r.collectionOrder
}

// Title returns the configured site title.
func (r *CollectionRegistry) Title() string {
	if r.title != "" {
		return r.title
	}
	return "AtlasView"
}

// Collections returns collection info for all registered collections.
func (r *CollectionRegistry) Collections() []CollectionInfo {
	infos := make([]CollectionInfo, 0, len(r.collectionOrder))
	for _, id := range r.collectionOrder {
		// Use the config ID as the display name (user-defined in engine.yaml)
		infos = append(infos, CollectionInfo{
			ID:   id,
			Name: id,
		})
	}
	return infos
}
