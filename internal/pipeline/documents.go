package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/pslinks/internal/dsc"
)

// StoredDocument is a parsed document held in memory. Doc is not modified
// after it is stored, so readers may share it.
type StoredDocument struct {
	ID          string        `json:"doc_id"`
	Filename    string        `json:"filename"`
	Title       string        `json:"title"`
	ContentHash string        `json:"content_hash"`
	ParsedAt    time.Time     `json:"parsed_at"`
	Pages       int           `json:"pages"`
	Links       int           `json:"links"`
	Doc         *dsc.Document `json:"-"`
}

// DocumentStore is a thread-safe registry of parsed documents keyed by doc id.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*StoredDocument
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*StoredDocument)}
}

func (s *DocumentStore) Put(d *StoredDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
}

func (s *DocumentStore) Get(id string) *StoredDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[id]
}

// Delete removes a document and reports whether it was present.
func (s *DocumentStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	return ok
}

// List returns all documents, most recently parsed first.
func (s *DocumentStore) List() []*StoredDocument {
	s.mu.RLock()
	out := make([]*StoredDocument, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ParsedAt.Equal(out[j].ParsedAt) {
			return out[i].ParsedAt.After(out[j].ParsedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// countLinks returns the number of link ids that resolve to a resource.
func countLinks(doc *dsc.Document) int {
	n := 0
	for _, p := range doc.Pages() {
		for _, id := range p.Links {
			if doc.ResourceData(id) != nil {
				n++
			}
		}
	}
	return n
}
