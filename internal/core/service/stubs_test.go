package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

var epoch = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestClock() *clockwork.FakeClock { return clockwork.NewFakeClockAt(epoch) }

func newTestHasher() *BcryptHasher { return NewBcryptHasher(bcrypt.MinCost) }

// ── users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = r.nextID
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ListByRoles(_ context.Context, roles ...domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		for _, role := range roles {
			if u.Role == role {
				out = append(out, cloneUser(u))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) SetRole(_ context.Context, id int64, role domain.Role) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

// ── reports ───────────────────────────────────────────────────────────────────

type stubReportRepo struct {
	mu        sync.Mutex
	kind      domain.EntityType
	rows      map[int64]*domain.Report
	nextID    int64
	createErr error
	delay     time.Duration
	updates   []ports.StatusChange
}

func newStubReportRepo(kind domain.EntityType) *stubReportRepo {
	return &stubReportRepo{kind: kind, rows: make(map[int64]*domain.Report)}
}

func (r *stubReportRepo) Create(_ context.Context, report *domain.Report) (int64, error) {
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.nextID++
	c := *report
	c.ID = r.nextID
	r.rows[c.ID] = &c
	return c.ID, nil
}

func (r *stubReportRepo) FindByID(_ context.Context, id int64) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: r.kind, ID: id}
	}
	c := *row
	return &c, nil
}

func (r *stubReportRepo) List(_ context.Context, filter ports.ListFilter) ([]*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Report
	for _, row := range r.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.OwnerID != 0 && row.AuthorID != filter.OwnerID {
			continue
		}
		c := *row
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stubReportRepo) UpdateStatus(_ context.Context, id int64, change ports.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return &domain.NotFoundError{Entity: r.kind, ID: id}
	}
	r.updates = append(r.updates, change)
	row.Status = change.Status
	row.UpdatedAt = change.At
	if change.Assignee != nil {
		aid, name := change.Assignee.UserID, change.Assignee.Username
		row.AssignedAdminID = &aid
		row.AssignedAdminUsername = &name
	}
	return nil
}

// ── applications ──────────────────────────────────────────────────────────────

type stubApplicationRepo struct {
	mu        sync.Mutex
	rows      map[int64]*domain.Application
	nextID    int64
	latestErr error
	delay     time.Duration
}

func newStubApplicationRepo() *stubApplicationRepo {
	return &stubApplicationRepo{rows: make(map[int64]*domain.Application)}
}

func (r *stubApplicationRepo) Create(_ context.Context, app *domain.Application) (int64, error) {
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *app
	c.ID = r.nextID
	r.rows[c.ID] = &c
	return c.ID, nil
}

func (r *stubApplicationRepo) FindByID(_ context.Context, id int64) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityApplication, ID: id}
	}
	c := *row
	return &c, nil
}

func (r *stubApplicationRepo) List(_ context.Context, filter ports.ListFilter) ([]*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Application
	for _, row := range r.rows {
		if filter.OwnerID != 0 && row.UserID != filter.OwnerID {
			continue
		}
		c := *row
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubApplicationRepo) UpdateStatus(_ context.Context, id int64, change ports.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityApplication, ID: id}
	}
	row.Status = change.Status
	row.UpdatedAt = change.At
	return nil
}

func (r *stubApplicationRepo) LatestByUser(_ context.Context, userID int64) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	var latest *domain.Application
	for _, row := range r.rows {
		if row.UserID == userID && (latest == nil || row.CreatedAt.After(latest.CreatedAt)) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

// ── collaborators ─────────────────────────────────────────────────────────────

type stubMediaStore struct {
	saved   map[string][]byte
	removed []string
	err     error
}

func newStubMediaStore() *stubMediaStore {
	return &stubMediaStore{saved: make(map[string][]byte)}
}

func (m *stubMediaStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	ref := "stored-" + filename
	m.saved[ref] = b
	return ref, nil
}

func (m *stubMediaStore) Remove(_ context.Context, ref string) error {
	m.removed = append(m.removed, ref)
	delete(m.saved, ref)
	return nil
}

// memIdempotency is the in-process store with an injectable failure.
type memIdempotency struct {
	*MemoryIdempotencyStore
	err error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{MemoryIdempotencyStore: NewMemoryIdempotencyStore(newTestClock(), 0)}
}

func (m *memIdempotency) Reserve(ctx context.Context, scope, key string) (bool, int64, error) {
	if m.err != nil {
		return false, 0, m.err
	}
	return m.MemoryIdempotencyStore.Reserve(ctx, scope, key)
}

func (m *memIdempotency) Remember(ctx context.Context, scope, key string, id int64) error {
	if m.err != nil {
		return m.err
	}
	return m.MemoryIdempotencyStore.Remember(ctx, scope, key, id)
}

func (m *memIdempotency) Release(ctx context.Context, scope, key string) error {
	if m.err != nil {
		return m.err
	}
	return m.MemoryIdempotencyStore.Release(ctx, scope, key)
}

type recordingNotifier struct {
	events []domain.StatusChangeEvent
	err    error
}

func (n *recordingNotifier) StatusChanged(_ context.Context, event domain.StatusChangeEvent) error {
	n.events = append(n.events, event)
	return n.err
}

var errStore = errors.New("store unavailable")

var (
	alice = domain.Identity{UserID: 1, Username: "alice", Email: "alice@example.com", Role: domain.RoleUser}
	carol = domain.Identity{UserID: 3, Username: "carol", Email: "carol@example.com", Role: domain.RoleUser}
	bob   = domain.Identity{UserID: 2, Username: "bob", Email: "bob@example.com", Role: domain.RoleAdmin}
	root  = domain.Identity{UserID: 9, Username: "root", Email: "root@example.com", Role: domain.RoleSuperAdmin}
)
