// Package session is the presentation boundary of the user list. A Session
// owns one presentation's view state (search, sort, page, dialog) and routes
// intents either to that state or to the shared user store. Renderers read
// a Snapshot and subscribe for a "state changed" signal.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patric-chuzhbe/useradmin/internal/broadcast"
	"github.com/patric-chuzhbe/useradmin/internal/logger"
	"github.com/patric-chuzhbe/useradmin/internal/models"
	"github.com/patric-chuzhbe/useradmin/internal/userform"
	"github.com/patric-chuzhbe/useradmin/internal/userstore"
	"github.com/patric-chuzhbe/useradmin/internal/userview"
)

var ErrUserNotFound = errors.New("user not found")

// Confirmer asks the person at the screen whether usr may really be deleted.
type Confirmer interface {
	ConfirmDelete(ctx context.Context, usr models.User) (bool, error)
}

type Dialog struct {
	Open    bool
	Editing bool
	Draft   models.User
	// Errors holds only the messages the user is allowed to see yet.
	Errors  userform.Errors
	Touched []userform.Field
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Page       userview.Page
	PageNumber int
	Search     string
	Sort       userview.Sort
	Loading    bool
	Error      string
	Dialog     Dialog
}

// pendingWrite captures the store call of a form submit so that it can be
// replayed after the session lock is released.
type pendingWrite struct {
	apply func(store *userstore.Store)
}

func (p *pendingWrite) Add(usr models.User) {
	p.apply = func(store *userstore.Store) { store.Add(usr) }
}

func (p *pendingWrite) Update(usr models.User) {
	p.apply = func(store *userstore.Store) { store.Update(usr) }
}

type Session struct {
	mu        sync.Mutex
	store     *userstore.Store
	form      *userform.Form
	confirmer Confirmer

	search string
	sort   userview.Sort
	page   int

	changes          broadcast.Broadcaster
	unsubscribeStore func()
}

type InitOption func(*initOptions)

type initOptions struct {
	now func() time.Time
}

// WithClock sets the time source used for ids of added users.
func WithClock(now func() time.Time) InitOption {
	return func(options *initOptions) {
		options.now = now
	}
}

func New(store *userstore.Store, confirmer Confirmer, optionsProto ...InitOption) *Session {
	options := &initOptions{
		now: time.Now,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	s := &Session{
		store:     store,
		form:      userform.New(userform.WithClock(options.now)),
		confirmer: confirmer,
		page:      1,
	}
	s.unsubscribeStore = store.Subscribe(s.notify)

	return s
}

// Close detaches the session from the store.
func (s *Session) Close() {
	s.unsubscribeStore()
}

// Subscribe registers fn to run after every change of the session or the
// store.
func (s *Session) Subscribe(fn func()) func() {
	return s.changes.Subscribe(fn)
}

func (s *Session) notify() {
	s.changes.Notify()
}

func (s *Session) change(mutate func()) {
	s.mu.Lock()
	mutate()
	s.mu.Unlock()

	s.notify()
}

// Load performs the startup fetch.
func (s *Session) Load(ctx context.Context) error {
	return s.store.FetchAll(ctx)
}

// SetSearch changes the name filter. The page is left as is.
func (s *Session) SetSearch(search string) {
	s.change(func() { s.search = search })
}

// ToggleSort handles a click on a column header.
func (s *Session) ToggleSort(key userview.SortKey) {
	s.change(func() { s.sort = userview.ToggleSort(s.sort, key) })
}

// SetPage jumps to a 1-based page without clamping.
func (s *Session) SetPage(page int) {
	s.change(func() { s.page = page })
}

func (s *Session) OpenAdd() {
	s.change(s.form.OpenAdd)
}

func (s *Session) OpenEdit(id models.UserID) error {
	usr, found := s.store.Find(id)
	if !found {
		return ErrUserNotFound
	}
	s.change(func() { s.form.OpenEdit(usr) })

	return nil
}

func (s *Session) SetField(field userform.Field, value string) error {
	var err error
	s.change(func() { err = s.form.Set(field, value) })

	return err
}

func (s *Session) Blur(field userform.Field) error {
	var err error
	s.change(func() { err = s.form.Blur(field) })

	return err
}

// Submit validates the draft; a valid one is written to the store and the
// dialog closes. The returned errors are the full validation result.
func (s *Session) Submit() (userform.Errors, bool) {
	write := &pendingWrite{}

	s.mu.Lock()
	errs, ok := s.form.Submit(write)
	s.mu.Unlock()

	if ok && write.apply != nil {
		write.apply(s.store)
	}
	s.notify()

	return errs, ok
}

// Cancel closes the dialog without touching the store.
func (s *Session) Cancel() {
	s.change(s.form.Cancel)
}

// Delete asks the confirmer and removes the user only on a yes.
func (s *Session) Delete(ctx context.Context, id models.UserID) (bool, error) {
	usr, found := s.store.Find(id)
	if !found {
		return false, ErrUserNotFound
	}

	confirmed, err := s.confirmer.ConfirmDelete(ctx, usr)
	if err != nil {
		return false, err
	}
	if !confirmed {
		logger.Log.Debugw("deletion declined", "id", id.String())
		return false, nil
	}

	logger.Log.Infow("deleting user", "id", id.String())
	s.store.Delete(id)

	return true, nil
}

func (s *Session) Snapshot() Snapshot {
	users := s.store.Users()
	status := s.store.Status()

	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Page: userview.Derive(users, userview.Query{
			Sort:   s.sort,
			Search: s.search,
			Page:   s.page,
		}),
		PageNumber: s.page,
		Search:     s.search,
		Sort:       s.sort,
		Loading:    status.Loading,
		Error:      status.Error,
		Dialog: Dialog{
			Open:    s.form.IsOpen(),
			Editing: s.form.Mode() == userform.ModeEdit,
			Draft:   s.form.Draft(),
			Errors:  s.form.VisibleErrors(),
			Touched: s.form.Touched(),
		},
	}
}
