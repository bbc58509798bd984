package identity

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// compareHash is bcrypt.CompareHashAndPassword, replaced in tests.
var compareHash = bcrypt.CompareHashAndPassword

// unknownUserHash is the hash passwords of unknown usernames are
// compared against.
var unknownUserHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("identity: failed to hash placeholder password: %v", err))
	}
	return hash
})

// Verifier checks a username and password.
type Verifier interface {
	Verify(username, password string) bool
}

// storeFile is the on-disk layout of a credential file.
type storeFile struct {
	Users []storeUser `yaml:"users"`
}

type storeUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Store holds bcrypt password hashes keyed by username.
type Store struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	logger *slog.Logger
}

// NewStore returns an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		hashes: make(map[string][]byte),
		logger: logger,
	}
}

// LoadStore reads a YAML credential file:
//
//	users:
//	  - username: alice
//	    password_hash: $2a$10$...
func LoadStore(path string, logger *slog.Logger) (*Store, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", path, err)
	}

	s := NewStore(logger)
	for i, u := range f.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("%s: users[%d]: username is required", path, i)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("%s: users[%d] (%s): invalid password hash: %w", path, i, u.Username, err)
		}
		if _, dup := s.hashes[u.Username]; dup {
			return nil, fmt.Errorf("%s: duplicate user %q", path, u.Username)
		}
		s.hashes[u.Username] = []byte(u.PasswordHash)
	}

	s.logger.Info("loaded credential store", "path", path, "users", len(s.hashes))
	return s, nil
}

// SetHash stores a precomputed bcrypt hash for username.
func (s *Store) SetHash(username, hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("invalid password hash: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[username] = []byte(hash)
	return nil
}

// SetPassword hashes password with the default cost and stores it.
func (s *Store) SetPassword(username, password string) error {
	hash, err := HashPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.SetHash(username, hash)
}

// Verify reports whether password matches the stored hash of username.
func (s *Store) Verify(username, password string) bool {
	s.mu.RLock()
	hash, ok := s.hashes[username]
	s.mu.RUnlock()
	if !ok {
		_ = compareHash(unknownUserHash(), []byte(password))
		s.logger.Debug("credential verification failed", "username", username, "reason", "unknown user")
		return false
	}
	if err := compareHash(hash, []byte(password)); err != nil {
		s.logger.Debug("credential verification failed", "username", username, "reason", "password mismatch")
		return false
	}
	return true
}

// Contains reports whether username is known.
func (s *Store) Contains(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[username]
	return ok
}

// Len returns the number of users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}

// HashPassword returns the bcrypt hash of password. A cost outside the
// bcrypt range uses bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
