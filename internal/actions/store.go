package actions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"hnterm/internal/clock"

	"golang.org/x/sync/singleflight"
)

// DefaultDebounce is the quiet window writes are coalesced over.
const DefaultDebounce = 250 * time.Millisecond

type Options struct {
	Backend  Backend
	Clock    clock.Clock
	Debounce time.Duration
	Logger   *slog.Logger
}

// Store is the in-memory action document plus its persistence schedule.
// One Store serves one app session. Every method is safe for concurrent
// use; none of them returns backend errors to the caller (they are
// logged), except Flush and Close which report the final write.
type Store struct {
	backend  Backend
	clock    clock.Clock
	debounce time.Duration
	logger   *slog.Logger

	loads singleflight.Group

	mu  sync.Mutex
	doc *Document

	// identity, see identity.go
	cachedUser   string
	observedUser string
	user         string
	page         int
	resolvedPage int
	userDirty    bool

	timer *clock.Timer
	gen   uint64
	dirty bool

	writeMu     sync.Mutex
	lastWritten uint64
}

func NewStore(opts Options) *Store {
	s := &Store{
		backend:  opts.Backend,
		clock:    opts.Clock,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		// Force a resolve on first access even before BeginPage.
		page: 1,
	}
	if s.backend == nil {
		s.backend = NewMemoryBackend()
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.debounce <= 0 {
		s.debounce = DefaultDebounce
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Load reads the document from the backend once. Callers arriving while
// the read is in flight share it and receive the same *Document. Read
// failures and version mismatches yield a fresh empty document.
//
// The returned document is owned by the Store; treat it as read-only.
func (s *Store) Load(ctx context.Context) *Document {
	s.mu.Lock()
	if s.doc != nil {
		doc := s.doc
		s.mu.Unlock()
		return doc
	}
	s.mu.Unlock()

	// One caller's cancellation must not turn everyone's load into an
	// empty document.
	readCtx := context.WithoutCancel(ctx)
	v, _, _ := s.loads.Do("load", func() (any, error) {
		s.mu.Lock()
		if s.doc != nil {
			doc := s.doc
			s.mu.Unlock()
			return doc, nil
		}
		s.mu.Unlock()

		doc := s.readDocument(readCtx)
		cached := s.readCachedUser(readCtx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.doc == nil {
			s.doc = doc
			if s.cachedUser == "" {
				s.cachedUser = cached
			}
		}
		return s.doc, nil
	})
	return v.(*Document)
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc != nil
}

func (s *Store) readDocument(ctx context.Context) *Document {
	b, err := s.backend.Get(ctx, DocumentKey)
	if errors.Is(err, ErrNotFound) {
		return newDocument()
	}
	if err != nil {
		s.logger.Warn("action store read failed", "err", &ReadError{Key: DocumentKey, Err: err})
		return newDocument()
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		s.logger.Warn("action store document undecodable; starting fresh", "err", &ReadError{Key: DocumentKey, Err: err})
		s.discardDocument(ctx)
		return newDocument()
	}
	if doc.Version != SchemaVersion {
		s.logger.Info("action store document discarded",
			"err", ErrSchemaVersionMismatch, "stored", doc.Version, "want", SchemaVersion)
		s.discardDocument(ctx)
		return newDocument()
	}
	normalize(&doc)
	return &doc
}

// discardDocument removes a stored document Load refused, so a later
// session does not read it again before the first write.
func (s *Store) discardDocument(ctx context.Context) {
	if err := s.backend.Delete(ctx, DocumentKey); err != nil {
		s.logger.Warn("action store discard failed", "err", &WriteError{Key: DocumentKey, Err: err})
	}
}

func (s *Store) readCachedUser(ctx context.Context) string {
	b, err := s.backend.Get(ctx, UserCacheKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("action store user cache read failed", "err", &ReadError{Key: UserCacheKey, Err: err})
		}
		return ""
	}
	return strings.TrimSpace(string(b))
}

// normalize drops nil buckets and empty records a hand-edited or older
// writer may have left behind.
func normalize(doc *Document) {
	if doc.ByUser == nil {
		doc.ByUser = map[string]*Bucket{}
	}
	for user, b := range doc.ByUser {
		if b == nil {
			delete(doc.ByUser, user)
			continue
		}
		for _, k := range []Kind{KindStory, KindComment} {
			m := b.records(k)
			for id, r := range m {
				if r.Vote != VoteUp && r.Vote != VoteDown {
					r.Vote = VoteNone
					m[id] = r
				}
				if r.empty() {
					delete(m, id)
				}
			}
			if len(m) == 0 {
				b.setRecords(k, nil)
			}
		}
		if b.empty() {
			delete(doc.ByUser, user)
		}
	}
}

// Get returns the current user's record for (kind, id). It reports false
// when the store is not loaded yet, id is empty, or no record exists.
func (s *Store) Get(kind Kind, id string) (Record, bool) {
	id = strings.TrimSpace(id)
	if id == "" || !kind.valid() {
		return Record{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return Record{}, false
	}
	b := s.doc.ByUser[s.resolveUserLocked()]
	r, ok := b.records(kind)[id]
	return r, ok
}

// Update merges p into the current user's record for (kind, id), stamps
// UpdatedAt, and reschedules the debounced write. A record left with
// neither a vote nor a favorite is deleted, along with its kind map and
// bucket when they become empty. The merged record is returned.
//
// Updates issued before Load completes are dropped.
func (s *Store) Update(kind Kind, id string, p Patch) Record {
	id = strings.TrimSpace(id)
	if id == "" || !kind.valid() {
		return Record{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		s.logger.Warn("action store update before load dropped", "kind", string(kind), "id", id)
		return Record{}
	}

	user := s.resolveUserLocked()
	b := s.doc.ByUser[user]
	if b == nil {
		b = &Bucket{}
		s.doc.ByUser[user] = b
	}
	m := b.records(kind)
	merged := p.apply(m[id])
	merged.UpdatedAt = s.clock.Now().UnixMilli()

	if merged.empty() {
		delete(m, id)
		if len(m) == 0 {
			b.setRecords(kind, nil)
		}
		if b.empty() {
			delete(s.doc.ByUser, user)
		}
	} else {
		if m == nil {
			m = map[string]Record{}
			b.setRecords(kind, m)
		}
		m[id] = merged
	}

	s.scheduleLocked()
	return merged
}

// ClearUser drops every record of user and schedules a write.
func (s *Store) ClearUser(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return
	}
	delete(s.doc.ByUser, user)
	s.scheduleLocked()
}

// Snapshot returns a deep copy of the loaded document, or nil.
func (s *Store) Snapshot() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.clone()
}

// scheduleLocked (re)arms the single persist timer. Only the timer armed
// by the most recent call writes; earlier ones are stopped, and the gen
// check covers a timer that already fired but has not taken the lock.
func (s *Store) scheduleLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.dirty = true
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.debounce, func() { s.fire(gen) })
}

func (s *Store) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.doc == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	w := s.snapshotWriteLocked(true)
	s.mu.Unlock()

	if err := s.write(context.Background(), w); err != nil {
		s.logger.Warn("action store persist failed", "err", err)
	}
}

type pendingWrite struct {
	gen      uint64
	doc      []byte
	user     string
	userOnly bool
}

// snapshotWriteLocked captures what the next write persists. withDoc is
// false when only the cached user changed.
func (s *Store) snapshotWriteLocked(withDoc bool) pendingWrite {
	w := pendingWrite{gen: s.gen, userOnly: !withDoc}
	if withDoc {
		s.dirty = false
		b, err := json.Marshal(s.doc)
		if err != nil {
			// Document only holds strings, bools and ints.
			s.logger.Error("action store marshal failed", "err", err)
			w.userOnly = true
		}
		w.doc = b
	}
	if s.userDirty {
		w.user = s.cachedUser
		s.userDirty = false
	}
	return w
}

// write persists w unless a newer snapshot has already been written.
func (s *Store) write(ctx context.Context, w pendingWrite) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if w.gen < s.lastWritten {
		return nil
	}
	s.lastWritten = w.gen

	var errs []error
	if !w.userOnly {
		if err := s.backend.Set(ctx, DocumentKey, w.doc); err != nil {
			errs = append(errs, &WriteError{Key: DocumentKey, Err: err})
		}
	}
	if w.user != "" {
		if err := s.backend.Set(ctx, UserCacheKey, []byte(w.user)); err != nil {
			errs = append(errs, &WriteError{Key: UserCacheKey, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Flush cancels the pending debounce and writes any unsaved state now. The
// in-memory document is kept whether or not the write succeeds.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.doc == nil || (!s.dirty && !s.userDirty) {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	w := s.snapshotWriteLocked(s.dirty)
	s.mu.Unlock()

	err := s.write(ctx, w)
	if err != nil {
		s.logger.Warn("action store flush failed", "err", err)
	}
	return err
}

// Close flushes pending state and closes the backend.
func (s *Store) Close(ctx context.Context) error {
	ferr := s.Flush(ctx)
	cerr := s.backend.Close()
	return errors.Join(ferr, cerr)
}
