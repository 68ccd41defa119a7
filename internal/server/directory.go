package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/MrEthical07/goGuard/password"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrWeakPassword       = errors.New("weak password")
)

// User is the account view handed back to handlers.
type User struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// Authenticator verifies credentials. Any wrong username or password must
// return ErrInvalidCredentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (User, error)
}

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (User, error)
}

type account struct {
	user User
	hash string
}

// Directory is an in-memory Authenticator and Registrar backed by Argon2id.
type Directory struct {
	mu      sync.RWMutex
	byName  map[string]*account
	byEmail map[string]*account
	hasher  *password.Argon2
	policy  password.Policy
	// dummyHash is verified against for unknown usernames so lookups cost
	// the same as real ones.
	dummyHash string
	seq       int
}

func NewDirectory(hasher *password.Argon2, policy password.Policy) (*Directory, error) {
	dummy, err := hasher.Hash("goguard-directory-dummy")
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	return &Directory{
		byName:    make(map[string]*account),
		byEmail:   make(map[string]*account),
		hasher:    hasher,
		policy:    policy,
		dummyHash: dummy,
	}, nil
}

func (d *Directory) Authenticate(_ context.Context, username, pw string) (User, error) {
	d.mu.RLock()
	acct := d.byName[username]
	d.mu.RUnlock()

	hash := d.dummyHash
	if acct != nil {
		hash = acct.hash
	}
	ok, err := d.hasher.Verify(pw, hash)
	switch {
	case errors.Is(err, password.ErrPasswordTooLong), errors.Is(err, password.ErrEmptyPassword):
		return User{}, ErrInvalidCredentials
	case err != nil:
		return User{}, err
	}
	if !ok || acct == nil {
		return User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}

// Register applies the password policy, hashes and stores the account.
// Policy failures wrap ErrWeakPassword with the full list of violations.
func (d *Directory) Register(_ context.Context, username, email, pw string) (User, error) {
	if res := d.policy.Check(pw); !res.Valid {
		return User{}, fmt.Errorf("%w: %s", ErrWeakPassword, res.Error())
	}

	emailKey := strings.ToLower(email)
	d.mu.RLock()
	_, nameTaken := d.byName[username]
	_, emailTaken := d.byEmail[emailKey]
	d.mu.RUnlock()
	if nameTaken {
		return User{}, ErrUsernameTaken
	}
	if emailTaken {
		return User{}, ErrEmailTaken
	}

	hash, err := d.hasher.Hash(pw)
	if err != nil {
		return User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byName[username]; ok {
		return User{}, ErrUsernameTaken
	}
	if _, ok := d.byEmail[emailKey]; ok {
		return User{}, ErrEmailTaken
	}
	d.seq++
	acct := &account{
		user: User{ID: fmt.Sprintf("u%d", d.seq), Username: username, Email: email, Role: "user"},
		hash: hash,
	}
	d.byName[username] = acct
	d.byEmail[emailKey] = acct
	return acct.user, nil
}

// Seed registers an account without the password policy. Used to create
// operator or fixture accounts at startup.
func (d *Directory) Seed(username, email, pw, role string) error {
	hash, err := d.hasher.Hash(pw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	acct := &account{
		user: User{ID: fmt.Sprintf("u%d", d.seq), Username: username, Email: email, Role: role},
		hash: hash,
	}
	d.byName[username] = acct
	d.byEmail[strings.ToLower(email)] = acct
	return nil
}
