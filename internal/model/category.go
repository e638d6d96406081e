package model

import "fmt"

// Category identifies one animal content source. The set is closed and
// defined at build time; each category has its own external feed and its
// own validation rules (see internal/source).
type Category string

const (
	CategoryDog Category = "dog"
	CategoryCat Category = "cat"
	CategoryFox Category = "fox"
)

// categoryInfo holds the build-time attributes of a category.
type categoryInfo struct {
	DisplayName string
	Endpoint    string
}

var categories = map[Category]categoryInfo{
	CategoryDog: {DisplayName: "Dog", Endpoint: "https://random.dog/"},
	CategoryCat: {DisplayName: "Cat", Endpoint: "https://aws.random.cat/"},
	CategoryFox: {DisplayName: "Fox", Endpoint: "https://randomfox.ca/"},
}

// AllCategories returns every known category in a stable order.
func AllCategories() []Category {
	return []Category{CategoryDog, CategoryCat, CategoryFox}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// DisplayName returns the human-readable name of the category.
func (c Category) DisplayName() string {
	return categories[c].DisplayName
}

// Endpoint returns the base URL of the category's external feed.
func (c Category) Endpoint() string {
	return categories[c].Endpoint
}

// ParseCategory converts a string into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
