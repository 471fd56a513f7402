package auth

import (
	"context"
	"sync"
)

// Session holds the current identity of one client and tells subscribers when
// it changes. A nil identity means signed out.
type Session struct {
	svc *Service

	mu      sync.Mutex
	current *Identity
	nextID  int
	subs    map[int]func(*Identity)
}

func NewSession(svc *Service) *Session {
	return &Session{svc: svc, subs: make(map[int]func(*Identity))}
}

// Subscribe calls fn with the current identity right away and again on every
// change until the returned func is called.
func (s *Session) Subscribe(fn func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Current returns the latest identity snapshot.
func (s *Session) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	id, err := s.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(id)
	return id, nil
}

func (s *Session) SignUp(ctx context.Context, name, email, password string) (*Identity, error) {
	id, err := s.svc.SignUp(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	s.set(id)
	return id, nil
}

// Restore adopts an existing token, e.g. one read from a saved credentials file.
func (s *Session) Restore(ctx context.Context, token string) (*Identity, error) {
	id, err := s.svc.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	s.set(id)
	return id, nil
}

// SignOut ends the session. The local identity is cleared even if revocation fails.
func (s *Session) SignOut(ctx context.Context) error {
	current := s.Current()
	if current == nil {
		return nil
	}
	err := s.svc.SignOut(ctx, current.Token)
	s.set(nil)
	return err
}

func (s *Session) set(id *Identity) {
	s.mu.Lock()
	s.current = id
	subs := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}
