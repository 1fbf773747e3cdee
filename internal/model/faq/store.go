package faq

import "strings"

// Store exposes knowledge-base retrieval for the widget engine and handlers.
type Store interface {
	List() []Entry
	Match(input string) (Entry, bool)
}

// MemoryStore implements Store with an in-memory ordered slice.
type MemoryStore struct {
	items []Entry
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied entries.
func NewMemoryStore(items []Entry) *MemoryStore {
	return &MemoryStore{items: append([]Entry(nil), items...)}
}

// List returns the knowledge base in match order.
func (s *MemoryStore) List() []Entry {
	return append([]Entry(nil), s.items...)
}

// Match scans entries in list order and returns the first one with at least
// one keyword appearing as a substring of the lowercased input. This is
// deliberately first-match, not best-match: entry order carries meaning.
func (s *MemoryStore) Match(input string) (Entry, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Entry{}, false
	}

	for _, entry := range s.items {
		for _, keyword := range entry.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return entry, true
			}
		}
	}
	return Entry{}, false
}
