package source

import (
	"net/http"
	"time"

	"github.com/newagedev/animalcompare/internal/model"
)

// Entry pairs a category's adapter with its validation predicate.
type Entry struct {
	Adapter  Adapter
	Validate Validator
}

// Registry maps each category to its source. Categories are a closed set,
// so the registry is built once at startup and read-only afterwards.
type Registry struct {
	entries map[model.Category]Entry
}

// NewRegistry wires the real HTTP adapters for every known category.
// maxFileSize caps candidates from sources that report a size; sources
// that don't are only filtered by extension.
func NewRegistry(httpTimeout time.Duration, maxFileSize int64) *Registry {
	client := &http.Client{Timeout: httpTimeout}

	sizeAndExtension := func(c Candidate) bool {
		return hasImageExtension(c.URL) && c.SizeBytes < maxFileSize
	}
	extensionOnly := func(c Candidate) bool {
		return hasImageExtension(c.URL)
	}

	return &Registry{entries: map[model.Category]Entry{
		model.CategoryDog: {
			Adapter:  NewDogAdapter(model.CategoryDog.Endpoint(), client),
			Validate: sizeAndExtension,
		},
		model.CategoryCat: {
			Adapter:  NewCatAdapter(model.CategoryCat.Endpoint(), client),
			Validate: extensionOnly,
		},
		model.CategoryFox: {
			Adapter:  NewFoxAdapter(model.CategoryFox.Endpoint(), client),
			Validate: extensionOnly,
		},
	}}
}

// NewRegistryWith builds a registry from explicit entries, for tests and
// offline runs.
func NewRegistryWith(entries map[model.Category]Entry) *Registry {
	return &Registry{entries: entries}
}

// NewStubRegistry wires a stub adapter per category, for running without
// network access.
func NewStubRegistry() *Registry {
	entries := make(map[model.Category]Entry, len(model.AllCategories()))
	for _, cat := range model.AllCategories() {
		entries[cat] = Entry{
			Adapter:  &StubAdapter{Prefix: string(cat)},
			Validate: hasImageExtensionCandidate,
		}
	}
	return &Registry{entries: entries}
}

func hasImageExtensionCandidate(c Candidate) bool {
	return hasImageExtension(c.URL)
}

// Lookup returns the entry for a category. The bool is false for
// categories the registry does not know.
func (r *Registry) Lookup(cat model.Category) (Entry, bool) {
	e, ok := r.entries[cat]
	return e, ok
}

// Categories returns the categories the registry can serve, in the
// model's stable order.
func (r *Registry) Categories() []model.Category {
	var cats []model.Category
	for _, cat := range model.AllCategories() {
		if _, ok := r.entries[cat]; ok {
			cats = append(cats, cat)
		}
	}
	return cats
}
