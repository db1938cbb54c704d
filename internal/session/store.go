package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// Store holds the identity acting in one session. It starts in the loading
// state until Rehydrate has read the durable record once.
type Store struct {
	key       string
	records   Records
	directory Directory

	mu         sync.Mutex
	user       *domain.User
	loading    bool
	rehydrated bool
	nextSub    int
	subs       []subscriber
}

type subscriber struct {
	id int
	fn func(*domain.User)
}

func NewStore(key string, records Records, directory Directory) *Store {
	return &Store{
		key:       key,
		records:   records,
		directory: directory,
		loading:   true,
	}
}

func (s *Store) Key() string {
	return s.key
}

// Rehydrate restores the identity from the durable record. Only the first
// successful call applies the record; a failed read can be retried.
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.rehydrated {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	user, err := s.records.Load(ctx, s.key)

	if err != nil {
		return fmt.Errorf("rehydrate session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rehydrated {
		s.rehydrated = true
		s.loading = false
		s.user = user
	}
	return nil
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Current returns the signed-in user, or false when nobody is.
func (s *Store) Current() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// Authorize returns the current user when it holds one of roles. No roles
// means any signed-in user.
func (s *Store) Authorize(roles ...domain.Role) (domain.User, error) {
	user, ok := s.Current()
	if !ok || (len(roles) > 0 && !user.HasRole(roles...)) {
		return domain.User{}, &domain.AuthorizationError{Required: roles}
	}
	return user, nil
}

// SignIn only checks both fields are present; any address is accepted. A
// known address signs in as its account, an unknown one becomes a buyer.
func (s *Store) SignIn(ctx context.Context, email, credential string) (domain.User, error) {
	v := &domain.ValidationError{}
	if strings.TrimSpace(email) == "" {
		v.Add("email", "email is required")
	}
	if credential == "" {
		v.Add("password", "password is required")
	}
	if err := v.Err(); err != nil {
		return domain.User{}, v.Wrap(domain.ErrInvalidCredentials)
	}

	known, err := s.directory.Lookup(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("sign in: %w", err)
	}

	var user domain.User
	if known != nil {
		user = *known
	} else {
		user = domain.User{
			ID:    uuid.New().String(),
			Name:  nameFromEmail(email),
			Email: strings.TrimSpace(email),
			Role:  domain.RoleBuyer,
		}
		if err := s.directory.Put(ctx, user); err != nil {
			return domain.User{}, fmt.Errorf("sign in: %w", err)
		}
	}

	if err := s.setUser(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) RegisterBuyer(ctx context.Context, reg BuyerRegistration) (domain.User, error) {
	if err := reg.Validate(); err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(reg.Name),
		Email: strings.TrimSpace(reg.Email),
		Role:  domain.RoleBuyer,
	}
	if err := s.register(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) RegisterArtisan(ctx context.Context, profile ArtisanProfile) (domain.Artisan, error) {
	if err := profile.Validate(); err != nil {
		return domain.Artisan{}, err
	}

	artisan := domain.Artisan{
		User: domain.User{
			ID:    uuid.New().String(),
			Name:  strings.TrimSpace(profile.Name),
			Email: strings.TrimSpace(profile.Email),
			Role:  domain.RoleArtisan,
		},
		Bio:         strings.TrimSpace(profile.Bio),
		Location:    strings.TrimSpace(profile.Location),
		Specialties: NormalizeSpecialties(profile.Specialties),
		JoinedDate:  time.Now().UTC(),
	}
	if err := s.register(ctx, artisan.User); err != nil {
		return domain.Artisan{}, err
	}
	return artisan, nil
}

func (s *Store) register(ctx context.Context, user domain.User) error {
	existing, err := s.directory.Lookup(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return domain.NewValidationError("email", "an account with this email already exists")
	}
	if err := s.directory.Put(ctx, user); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return s.setUser(ctx, &user)
}

func (s *Store) SignOut(ctx context.Context) error {
	return s.setUser(ctx, nil)
}

// setUser writes the durable record first so a failed write leaves the
// in-memory identity unchanged.
func (s *Store) setUser(ctx context.Context, user *domain.User) error {
	if user != nil {
		if err := s.records.Save(ctx, s.key, *user); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	} else {
		if err := s.records.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.rehydrated = true
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if user == nil {
			sub.fn(nil)
			continue
		}
		u := *user
		sub.fn(&u)
	}
	return nil
}

// Subscribe registers fn to run after every identity change. The returned
// function removes it.
func (s *Store) Subscribe(fn func(*domain.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
