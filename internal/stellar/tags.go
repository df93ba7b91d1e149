package stellar

import (
	"fmt"
	"strings"
)

// TagKeyPrefix prefixes every tag's manage-data key.
const TagKeyPrefix = "Tag"

// Tag describes one selectable tag: the manage-data key it is stored under,
// the form-facing identifier, and the human-readable label.
type Tag struct {
	Key   string
	ID    string
	Label string
}

// DefaultTagNames is the single source of truth for the tag catalog.
var DefaultTagNames = []string{"Belgrade", "Montenegro", "Programmer", "Blogger"}

// FormatTagKey derives the manage-data key for a tag name.
func FormatTagKey(name string) string { return TagKeyPrefix + name }

// FormatTagID derives the form identifier for a tag name.
func FormatTagID(name string) string { return strings.ToLower(name) }

// FormatTagLabel derives the display label for a tag name.
func FormatTagLabel(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// TagRegistry is an immutable catalog of tags with O(1) lookup by id and by
// key. Construction fails on duplicate ids or keys.
type TagRegistry struct {
	tags  []Tag
	byID  map[string]Tag
	byKey map[string]Tag
}

// NewTagRegistry builds a registry from a tag name list, preserving order.
func NewTagRegistry(names []string) (*TagRegistry, error) {
	r := &TagRegistry{
		byID:  make(map[string]Tag, len(names)),
		byKey: make(map[string]Tag, len(names)),
	}
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("tag name is empty")
		}
		tag := Tag{
			Key:   FormatTagKey(name),
			ID:    FormatTagID(name),
			Label: FormatTagLabel(name),
		}
		if _, exists := r.byID[tag.ID]; exists {
			return nil, fmt.Errorf("duplicate tag id %q", tag.ID)
		}
		if _, exists := r.byKey[tag.Key]; exists {
			return nil, fmt.Errorf("duplicate tag key %q", tag.Key)
		}
		r.tags = append(r.tags, tag)
		r.byID[tag.ID] = tag
		r.byKey[tag.Key] = tag
	}
	return r, nil
}

// DefaultTags is the registry built from DefaultTagNames. The catalog is
// fixed at build time, so a duplicate is a programming error and init fails
// fast.
var DefaultTags = func() *TagRegistry {
	r, err := NewTagRegistry(DefaultTagNames)
	if err != nil {
		panic(fmt.Sprintf("invalid tag catalog: %v", err))
	}
	return r
}()

// Tags returns the catalog in declaration order.
func (r *TagRegistry) Tags() []Tag { return r.tags }

// ByID looks a tag up by its form identifier.
func (r *TagRegistry) ByID(id string) (Tag, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// ByKey looks a tag up by its manage-data key.
func (r *TagRegistry) ByKey(key string) (Tag, bool) {
	t, ok := r.byKey[key]
	return t, ok
}

// IDs returns every tag id in declaration order.
func (r *TagRegistry) IDs() []string {
	ids := make([]string, len(r.tags))
	for i, t := range r.tags {
		ids[i] = t.ID
	}
	return ids
}
