package formats

import (
	"path/filepath"
	"strings"
)

// Category groups file extensions the converter recognizes.
type Category string

const (
	// CategoryImage covers still image formats.
	CategoryImage Category = "image"
	// CategoryDocument covers office and text document formats.
	CategoryDocument Category = "document"
	// CategoryAudio covers audio-only formats.
	CategoryAudio Category = "audio"
	// CategoryVideo covers video container formats.
	CategoryVideo Category = "video"
)

// categoryOrder is the display order of categories.
var categoryOrder = []Category{CategoryImage, CategoryDocument, CategoryAudio, CategoryVideo}

// categoryExtensions lists the recognized lowercase extensions (no leading dot) per category.
var categoryExtensions = map[Category][]string{
	CategoryImage:    {"jpg", "png", "gif", "heic", "svg"},
	CategoryDocument: {"pdf", "doc", "docx", "xls", "csv"},
	CategoryAudio:    {"mp3", "wav", "m4a", "ogg", "flac"},
	CategoryVideo:    {"mp4", "mov", "avi", "flv"},
}

// primaryOptions are the top-level menu labels shown for a category.
// Video files can be converted to either an audio or a video target.
var primaryOptions = map[Category][]string{
	CategoryImage:    {"Image"},
	CategoryDocument: {"Document"},
	CategoryAudio:    {"Audio"},
	CategoryVideo:    {"Audio", "Video"},
}

// extensionIndex maps an extension back to its category.
var extensionIndex = buildIndex()

func buildIndex() map[string]Category {
	idx := make(map[string]Category)
	for _, c := range categoryOrder {
		for _, ext := range categoryExtensions[c] {
			idx[ext] = c
		}
	}
	return idx
}

// Categories returns all categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Extensions returns the recognized extensions of a category, lowercase and
// without a leading dot. Returns nil for an unknown category.
func Extensions(c Category) []string {
	exts := categoryExtensions[c]
	if exts == nil {
		return nil
	}
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// ConversionOptions returns the target formats offered for a category,
// uppercased for display.
func ConversionOptions(c Category) []string {
	exts := categoryExtensions[c]
	if exts == nil {
		return nil
	}
	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = strings.ToUpper(ext)
	}
	return out
}

// PrimaryOptions returns the menu labels for a category.
func PrimaryOptions(c Category) []string {
	opts := primaryOptions[c]
	if opts == nil {
		return nil
	}
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// Ext returns the extension of filename's base name, including the dot. A
// name whose only dot is the leading one (".mov") has no extension.
func Ext(filename string) string {
	base := filepath.Base(filename)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i:]
}

// Extension returns the lowercase extension of filename without the leading dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(Ext(filename), "."))
}

// CategoryOf returns the category of a bare extension. The extension may be
// given in any case, with or without a leading dot.
func CategoryOf(ext string) (Category, bool) {
	c, ok := extensionIndex[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return c, ok
}

// Classify returns the category of filename based on its extension.
// The second result is false when the extension is not in the catalog.
func Classify(filename string) (Category, bool) {
	ext := Extension(filename)
	if ext == "" {
		return "", false
	}
	return CategoryOf(ext)
}

// IsVideo reports whether filename classifies as a video file.
func IsVideo(filename string) bool {
	c, ok := Classify(filename)
	return ok && c == CategoryVideo
}

// CategoryInfo is the catalog entry for one category as served to the UI.
type CategoryInfo struct {
	Name           Category `json:"name"`
	Extensions     []string `json:"extensions"`
	Options        []string `json:"options"`
	PrimaryOptions []string `json:"primaryOptions"`
}

// Catalog returns the full catalog in display order.
func Catalog() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, CategoryInfo{
			Name:           c,
			Extensions:     Extensions(c),
			Options:        ConversionOptions(c),
			PrimaryOptions: PrimaryOptions(c),
		})
	}
	return out
}
