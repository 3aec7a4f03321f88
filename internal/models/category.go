package models

// Category is the content kind a search targets. It determines the provider
// endpoint, request parameters, and how a result is rendered.
type Category string

const (
	CategoryPhoto        Category = "photo"
	CategoryIllustration Category = "illustration"
	CategoryVector       Category = "vector"
	CategoryGif          Category = "gif"
	CategoryVideo        Category = "video"
	CategoryMusic        Category = "music"
)

// Categories lists all categories in menu display order.
var Categories = []Category{
	CategoryPhoto,
	CategoryIllustration,
	CategoryVector,
	CategoryVideo,
	CategoryMusic,
	CategoryGif,
}

// ParseCategory maps a raw tag to a known category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryPhoto, CategoryIllustration, CategoryVector,
		CategoryGif, CategoryVideo, CategoryMusic:
		return Category(s), true
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

// IsImage reports whether results of this category carry an image URL.
func (c Category) IsImage() bool {
	switch c {
	case CategoryPhoto, CategoryIllustration, CategoryVector, CategoryGif:
		return true
	}
	return false
}
