package httpserver

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/google/uuid"
)

var errUserExists = errors.New("user already exists")

type userRecord struct {
	ID           uuid.UUID
	Username     string
	Email        string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

type submissionRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Filename  string
	SHA256    string
	Status    domain.SubmissionStatus
	Verdict   string
	CreatedAt time.Time

	seq uint64
}

// memoryStore holds the mock backend's users and submissions.
type memoryStore struct {
	mu          sync.Mutex
	users       map[string]userRecord
	submissions map[uuid.UUID]*submissionRecord
	byHash      map[string]uuid.UUID
	seq         uint64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[string]userRecord),
		submissions: make(map[uuid.UUID]*submissionRecord),
		byHash:      make(map[string]uuid.UUID),
	}
}

func (m *memoryStore) addUser(u userRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Username]; ok {
		return errUserExists
	}
	m.users[u.Username] = u
	return nil
}

func (m *memoryStore) user(username string) (userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	return u, ok
}

// addSubmission stores rec unless content with the same hash was submitted
// before, in which case the earlier submission is returned and created is false.
func (m *memoryStore) addSubmission(rec submissionRecord) (stored submissionRecord, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byHash[rec.SHA256]; ok {
		return *m.submissions[id], false
	}

	m.seq++
	rec.seq = m.seq
	m.submissions[rec.ID] = &rec
	m.byHash[rec.SHA256] = rec.ID
	return rec, true
}

// listSubmissions pages through all submissions, newest first.
func (m *memoryStore) listSubmissions(skip, limit int) []submissionRecord {
	m.mu.Lock()
	all := make([]submissionRecord, 0, len(m.submissions))
	for _, rec := range m.submissions {
		all = append(all, *rec)
	}
	m.mu.Unlock()

	slices.SortFunc(all, func(a, b submissionRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	if skip >= len(all) {
		return []submissionRecord{}
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all
}

// update applies fn to the stored submission under the store lock.
func (m *memoryStore) update(id uuid.UUID, fn func(*submissionRecord)) (submissionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.submissions[id]
	if !ok {
		return submissionRecord{}, false
	}
	fn(rec)
	return *rec, true
}

func (m *memoryStore) submission(id uuid.UUID) (submissionRecord, bool) {
	return m.update(id, func(*submissionRecord) {})
}
