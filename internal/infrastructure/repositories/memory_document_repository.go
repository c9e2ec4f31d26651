package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
)

type memoryDocumentRepository struct {
	name string
	mu   sync.RWMutex
	docs map[string]*models.Document
	now  func() time.Time
}

// NewMemoryDocumentRepository keeps documents in process memory. Used by
// the memory driver and by tests.
func NewMemoryDocumentRepository(name string) repositories.DocumentStore {
	return &memoryDocumentRepository{
		name: name,
		docs: make(map[string]*models.Document),
		now:  time.Now,
	}
}

func (r *memoryDocumentRepository) Name() string {
	return r.name
}

func (r *memoryDocumentRepository) Get(_ context.Context, id string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	return copyDocument(doc), nil
}

func (r *memoryDocumentRepository) Put(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rev int64 = 1
	if prev, ok := r.docs[doc.ID]; ok {
		rev = prev.Rev + 1
	}
	doc.Rev = rev
	doc.UpdatedAt = r.now().UTC()
	r.docs[doc.ID] = copyDocument(doc)
	return nil
}

func (r *memoryDocumentRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.docs, id)
	return nil
}

func (r *memoryDocumentRepository) ListAll(_ context.Context) ([]*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*models.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, copyDocument(doc))
	}
	sortDocuments(docs)
	return docs, nil
}

func (r *memoryDocumentRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = make(map[string]*models.Document)
	return nil
}

func copyDocument(doc *models.Document) *models.Document {
	c := *doc
	c.Body = append([]byte(nil), doc.Body...)
	return &c
}

func sortDocuments(docs []*models.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
