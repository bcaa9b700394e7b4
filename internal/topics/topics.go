// Package topics turns cached bag metadata into the "(count) topic" entries
// shown to the user and maps selected entries back to topic names.
package topics

import (
	"fmt"
	"strings"

	"github.com/pandeptwidyaop/bagfilter/internal/models"
)

// Loader is satisfied by cache.Store.
type Loader interface {
	Load() (*models.BagMetadata, error)
}

// Entry formats a single display entry.
func Entry(t models.TopicInfo) string {
	return fmt.Sprintf("(%d) %s", t.Messages, t.Topic)
}

// List returns one display entry per topic, in bag order.
func List(meta *models.BagMetadata) []string {
	if meta == nil {
		return []string{}
	}
	entries := make([]string, 0, len(meta.Topics))
	for _, t := range meta.Topics {
		entries = append(entries, Entry(t))
	}
	return entries
}

// ListCached lists the topics of the active cache record. No record means
// an empty list.
func ListCached(l Loader) ([]string, error) {
	meta, err := l.Load()
	if err != nil {
		return nil, err
	}
	return List(meta), nil
}

// RawName strips the leading "(<count>) " from a display entry. Anything not
// in that form is returned as is, so raw topic names pass through.
func RawName(entry string) string {
	if !strings.HasPrefix(entry, "(") {
		return entry
	}
	end := strings.Index(entry, ") ")
	if end < 0 {
		return entry
	}
	for _, r := range entry[1:end] {
		if r < '0' || r > '9' {
			return entry
		}
	}
	if end == 1 {
		return entry
	}
	return entry[end+2:]
}

// RawNames maps RawName over entries.
func RawNames(entries []string) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, RawName(e))
	}
	return names
}
