// Package userstore holds the in-memory user list together with its loading
// and error status. The list is filled by one remote fetch and afterwards
// changed only through Add, Update and Delete; nothing is persisted.
package userstore

import (
	"context"
	"errors"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/useradmin/internal/broadcast"
	"github.com/patric-chuzhbe/useradmin/internal/logger"
	"github.com/patric-chuzhbe/useradmin/internal/models"
)

// ErrStaleResponse is returned by FetchAll when its response arrived after a
// newer fetch had already been applied, so it was dropped.
var ErrStaleResponse = errors.New("stale users response discarded")

type fetcher interface {
	FetchUsers(ctx context.Context) ([]models.User, error)
}

// Status is the read-only view of the store's bookkeeping.
type Status struct {
	Loading bool
	Error   string
	Count   int
}

// Store is the state container for the user list. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	source  fetcher
	list    []models.User
	loading bool
	err     string

	// issued counts started fetches, applied is the token of the newest
	// response written into the store.
	issued           uint64
	applied          uint64
	lastResponseWins bool

	changes broadcast.Broadcaster
}

type InitOption func(*initOptions)

type initOptions struct {
	lastResponseWins bool
	initial          []models.User
}

// WithLastResponseWins turns off stale-response discarding: whichever fetch
// resolves last overwrites the list, and any resolution clears loading.
func WithLastResponseWins() InitOption {
	return func(options *initOptions) {
		options.lastResponseWins = true
	}
}

// WithUsers seeds the list, mostly for tests and examples.
func WithUsers(users []models.User) InitOption {
	return func(options *initOptions) {
		options.initial = users
	}
}

func New(source fetcher, optionsProto ...InitOption) *Store {
	options := &initOptions{
		lastResponseWins: false,
		initial:          nil,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	return &Store{
		source:           source,
		list:             cloneUsers(options.initial),
		lastResponseWins: options.lastResponseWins,
	}
}

func cloneUsers(users []models.User) []models.User {
	result := make([]models.User, len(users))
	copy(result, users)
	return result
}

// Subscribe registers fn to run after every state change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	return s.changes.Subscribe(fn)
}

func (s *Store) notify() {
	s.changes.Notify()
}

// FetchAll replaces the list with the remote collection. On failure the list
// is kept and the error message is recorded in the status; the error is
// also returned.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	token := s.issued
	s.loading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	users, fetchErr := s.source.FetchUsers(ctx)

	s.mu.Lock()
	if !s.lastResponseWins && token < s.applied {
		applied := s.applied
		s.mu.Unlock()
		logger.Log.Debugw("dropping stale users response", "token", token, "applied", applied)
		return ErrStaleResponse
	}

	if token > s.applied {
		s.applied = token
	}
	if fetchErr != nil {
		s.err = fetchErr.Error()
	} else {
		s.list = cloneUsers(users)
	}
	if s.lastResponseWins {
		s.loading = false
	} else {
		s.loading = s.applied < s.issued
	}
	count := len(s.list)
	s.mu.Unlock()
	s.notify()

	if fetchErr != nil {
		logger.Log.Errorw("fetching users failed", "token", token, "error", fetchErr)
		return fetchErr
	}
	logger.Log.Infow("users fetched", "token", token, "count", count)

	return nil
}

// Add puts the record at the front of the list. Uniqueness of the id is the
// caller's business.
func (s *Store) Add(usr models.User) {
	s.mu.Lock()
	list := make([]models.User, 0, len(s.list)+1)
	list = append(list, usr)
	s.list = append(list, s.list...)
	s.mu.Unlock()

	s.notify()
}

// Update replaces the record with the same id. Unknown ids are ignored.
func (s *Store) Update(usr models.User) {
	s.mu.Lock()
	index := -1
	for i, candidate := range s.list {
		if candidate.ID == usr.ID {
			index = i
			break
		}
	}
	if index == -1 {
		s.mu.Unlock()
		return
	}
	s.list[index] = usr
	s.mu.Unlock()

	s.notify()
}

// Delete removes every record carrying id. Unknown ids are ignored.
func (s *Store) Delete(id models.UserID) {
	s.mu.Lock()
	kept := funk.Filter(s.list, func(candidate models.User) bool {
		return candidate.ID != id
	}).([]models.User)
	if len(kept) == len(s.list) {
		s.mu.Unlock()
		return
	}
	s.list = kept
	s.mu.Unlock()

	s.notify()
}

// Users returns a copy of the list; it is never nil.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneUsers(s.list)
}

// Find returns the first record with the given id.
func (s *Store) Find(id models.UserID) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, usr := range s.list {
		if usr.ID == id {
			return usr, true
		}
	}

	return models.User{}, false
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Loading: s.loading,
		Error:   s.err,
		Count:   len(s.list),
	}
}
