package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/core/validation"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	order   []string
	byID    map[string]*domain.User
	nextID  int
	updates int // number of Update calls that reached the store
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("%d", r.nextID)
	r.byID[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.byID[id]
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, c ports.UserChanges) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if c.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && other.Email == *c.Email {
				return nil, domain.ErrEmailTaken
			}
		}
	}
	r.updates++
	next := cloneUser(u)
	if c.Email != nil {
		next.Email = *c.Email
	}
	if c.PasswordHash != nil {
		next.PasswordHash = *c.PasswordHash
	}
	if c.FirstName != nil {
		next.FirstName = c.FirstName
	}
	if c.LastName != nil {
		next.LastName = c.LastName
	}
	if c.ContactNo != nil {
		next.ContactNo = c.ContactNo
	}
	if c.Address != nil {
		next.Address = c.Address
	}
	if c.DOB != nil {
		next.DOB = c.DOB
	}
	if c.Gender != nil {
		next.Gender = c.Gender
	}
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = next
	return cloneUser(next), nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = false
	return nil
}

type stubRoleRepo struct {
	roles     []*domain.Role
	createErr error
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.roles {
		if existing.Key == role.Key {
			return nil, domain.ErrRoleExists
		}
	}
	stored := *role
	stored.ID = "role-" + role.Key
	r.roles = append(r.roles, &stored)
	clone := stored
	return &clone, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByKey(_ context.Context, key string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Key == key {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) List(_ context.Context) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		clone := *role
		out = append(out, &clone)
	}
	return out, nil
}

type stubSessionStore struct {
	sessions map[string]string
	ttls     map[string]time.Duration
	err      error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Create(_ context.Context, sessionID, userID string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.sessions[sessionID] = userID
	s.ttls[sessionID] = ttl
	return nil
}

func (s *stubSessionStore) Exists(_ context.Context, sessionID string) (bool, error) {
	_, ok := s.sessions[sessionID]
	return ok, s.err
}

func (s *stubSessionStore) Revoke(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return s.err
}

func testHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.MinCost}
}

func newTestUserService(users *stubUserRepo, roles *stubRoleRepo) *UserService {
	return NewUserService(users, roles, testHasher(), nil, validation.New("US"), zerolog.Nop())
}

func strPtr(s string) *string { return &s }
