// Package api provides HTTP handlers for the atlas visualization engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atlasview/engine/internal/cache"
	"github.com/atlasview/engine/internal/history"
	"github.com/atlasview/engine/internal/render"
	"github.com/atlasview/engine/internal/scene"
	"github.com/atlasview/engine/internal/service"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Registry    *CollectionRegistry
	CORSOrigins []string
	Cache       *cache.Manager
	Renderer    *render.PreviewRenderer
	History     *history.Store
	Events      *EventHub
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Global collections endpoint (not collection-scoped)
	r.Get("/api/collections", collectionsHandler(cfg.Registry))

	// Cache statistics
	r.Get("/api/cache", cacheStatsHandler(cfg.Cache))

	// Collection-scoped routes: /c/{collection}/...
	r.Route("/c/{collection}", func(r chi.Router) {
		r.Use(collectionMiddleware(cfg.Registry))

		r.Get("/tiles/{index}.png", tileTextureHandler(cfg.Cache, cfg.Renderer))
		r.Get("/preview.png", previewHandler(cfg.Cache, cfg.Renderer))

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", stateHandler)
			r.Post("/mode", modeSwitchHandler)
			r.Post("/spacing", spacingHandler)
			r.Post("/axis", axisHandler)
			r.Get("/history", historyHandler(cfg.History))
			if cfg.Events != nil {
				r.Get("/events", eventsHandler(cfg.Events))
			}
		})
	})

	return r
}

// Context key for the collection controller
type ctxKey string

const controllerKey ctxKey = "collectionController"

// collectionMiddleware resolves the collection from URL and injects the
// controller into context.
func collectionMiddleware(registry *CollectionRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			collectionID := chi.URLParam(r, "collection")
			ctrl := registry.Get(collectionID)
			if ctrl == nil {
				http.Error(w, "collection not found: "+collectionID, http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), controllerKey, ctrl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getController(r *http.Request) *service.Controller {
	if ctrl, ok := r.Context().Value(controllerKey).(*service.Controller); ok {
		return ctrl
	}
	return nil
}

func collectionIDFromRequest(r *http.Request) string {
	return chi.URLParam(r, "collection")
}

// collectionsHandler returns the list of available collections.
func collectionsHandler(registry *CollectionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"default":     registry.DefaultCollectionID(),
			"collections": registry.Collections(),
			"title":       registry.Title(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

func cacheStatsHandler(cm *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cm == nil {
			http.Error(w, "cache not configured", http.StatusNotImplemented)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cm.Stats())
	}
}

// stateHandler returns the current visualization state snapshot.
func stateHandler(w http.ResponseWriter, r *http.Request) {
	ctrl := getController(r)
	if ctrl == nil {
		http.Error(w, "collection controller not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ctrl.Snapshot())
}

type modeSwitchRequest struct {
	Mode string `json:"mode"`
}

// modeSwitchHandler starts an asynchronous switch to the requested mode.
func modeSwitchHandler(w http.ResponseWriter, r *http.Request) {
	ctrl := getController(r)
	if ctrl == nil {
		http.Error(w, "collection controller not available", http.StatusInternalServerError)
		return
	}

	var req modeSwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := scene.ParseMode(strings.TrimSpace(req.Mode))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The load cycle can take a while (montage decoding, tile slicing), so
	// run it off the request goroutine and let clients poll /api/state or
	// subscribe to /api/events.
	collection := collectionIDFromRequest(r)
	go func() {
		if err := ctrl.Switch(context.Background(), mode); err != nil && !errors.Is(err, service.ErrSuperseded) {
			log.Printf("api[%s]: switch to %s failed: %v", collection, mode, err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"mode":       mode.String(),
		"generation": ctrl.Generation(),
	})
}

type spacingRequest struct {
	Value float64 `json:"value"`
}

// spacingHandler repositions tiles in place with a new spacing factor.
func spacingHandler(w http.ResponseWriter, r *http.Request) {
	ctrl := getController(r)
	if ctrl == nil {
		http.Error(w, "collection controller not available", http.StatusInternalServerError)
		return
	}

	var req spacingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Value <= 0 || math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		http.Error(w, "spacing must be a positive finite number", http.StatusBadRequest)
		return
	}

	ctrl.SetSpacing(req.Value)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"spacing":    ctrl.Spacing(),
		"tile_count": ctrl.Scene().Count(),
	})
}

type axisRequest struct {
	Visible bool `json:"visible"`
}

// axisHandler toggles the axis fixture.
func axisHandler(w http.ResponseWriter, r *http.Request) {
	ctrl := getController(r)
	if ctrl == nil {
		http.Error(w, "collection controller not available", http.StatusInternalServerError)
		return
	}

	var req axisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctrl.SetAxisVisible(req.Visible)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"axis_visible": ctrl.Scene().FixtureVisible("axis"),
	})
}

// historyHandler returns recent load cycles for the collection.
func historyHandler(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "history not configured", http.StatusNotImplemented)
			return
		}

		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
				limit = v
				if limit > 200 {
					limit = 200
				}
			}
		}

		entries, err := store.Recent(collectionIDFromRequest(r), limit)
		if err != nil {
			http.Error(w, "failed to query history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": entries,
			"total": len(entries),
		})
	}
}

// tileTextureHandler serves a single tile texture as PNG.
func tileTextureHandler(cm *cache.Manager, renderer *render.PreviewRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := getController(r)
		if ctrl == nil {
			http.Error(w, "collection controller not available", http.StatusInternalServerError)
			return
		}

		indexStr := strings.TrimSuffix(chi.URLParam(r, "index"), ".png")
		index, err := strconv.Atoi(indexStr)
		if err != nil || index < 0 {
			http.Error(w, "invalid tile index", http.StatusBadRequest)
			return
		}

		collection := collectionIDFromRequest(r)
		key := cache.TextureKey(collection, ctrl.Generation(), index)
		if cm != nil {
			if data, ok := cm.GetTexture(key); ok {
				writePNG(w, data)
				return
			}
		}

		var tex *scene.Tile
		for _, t := range ctrl.Scene().Tiles() {
			if t.DatasetIndex == index {
				tex = t
				break
			}
		}
		if tex == nil || tex.Texture == nil {
			http.Error(w, "tile not found", http.StatusNotFound)
			return
		}

		data, err := renderer.EncodeTexture(tex.Texture)
		if err != nil {
			http.Error(w, "failed to encode tile: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if cm != nil {
			cm.SetTexture(key, data)
		}
		writePNG(w, data)
	}
}

// previewHandler renders a 2D projection of the current scene.
func previewHandler(cm *cache.Manager, renderer *render.PreviewRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := getController(r)
		if ctrl == nil {
			http.Error(w, "collection controller not available", http.StatusInternalServerError)
			return
		}

		style := strings.TrimSpace(r.URL.Query().Get("style"))
		if style == "" {
			style = "image"
		}
		if style != "image" && style != "points" {
			http.Error(w, "invalid style (expected image or points)", http.StatusBadRequest)
			return
		}

		axisVisible := ctrl.Scene().FixtureVisible("axis")
		if axisStr := strings.TrimSpace(r.URL.Query().Get("axis")); axisStr != "" {
			v, err := strconv.ParseBool(axisStr)
			if err != nil {
				http.Error(w, "invalid axis parameter", http.StatusBadRequest)
				return
			}
			axisVisible = v
		}

		collection := collectionIDFromRequest(r)
		mode := ctrl.Mode()
		key := cache.PreviewKey(collection, ctrl.Generation(), mode.String(), style, ctrl.Spacing(), axisVisible)
		if cm != nil {
			if data, ok := cm.GetPreview(key); ok {
				writePNG(w, data)
				return
			}
		}

		data, err := renderer.RenderPreview(ctrl.Scene().Tiles(), mode, render.Options{
			Style:       style,
			AxisVisible: axisVisible,
		})
		if err != nil {
			http.Error(w, "failed to render preview: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if cm != nil {
			cm.SetPreview(key, data)
		}
		writePNG(w, data)
	}
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
