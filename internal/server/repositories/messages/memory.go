package messages

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps each inbox as a slice in insertion order plus an
// id index for ownership checks.
type InMemoryRepository struct {
	mu      sync.RWMutex
	inboxes map[string][]models.Message
	owners  map[string]string
	seq     int64
	last    time.Time
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		inboxes: make(map[string][]models.Message),
		owners:  make(map[string]string),
		now:     time.Now,
	}
}

func (r *InMemoryRepository) Append(ctx context.Context, from, to, subject, body string) (string, error) {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	created := r.now().UTC()
	if created.Before(r.last) {
		created = r.last
	}
	r.last = created

	r.inboxes[to] = append(r.inboxes[to], models.Message{
		Seq:       r.seq,
		ID:        id,
		From:      from,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: created,
	})
	r.owners[id] = to

	return id, nil
}

func (r *InMemoryRepository) ListFor(ctx context.Context, username string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inbox := r.inboxes[username]
	out := make([]models.Message, 0, len(inbox))
	for i := len(inbox) - 1; i >= 0; i-- {
		out = append(out, inbox[i])
	}
	return out, nil
}

func (r *InMemoryRepository) DeleteByOwner(ctx context.Context, username, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[id]; !ok || owner != username {
		return false, nil
	}

	inbox := r.inboxes[username]
	for i := range inbox {
		if inbox[i].ID == id {
			r.inboxes[username] = append(inbox[:i], inbox[i+1:]...)
			break
		}
	}
	if len(r.inboxes[username]) == 0 {
		delete(r.inboxes, username)
	}
	delete(r.owners, id)

	return true, nil
}
