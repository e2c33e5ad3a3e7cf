package recordstore

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Collection names, which double as counter keys.
const (
	UsersCollection    = "users"
	StudiesCollection  = "studies"
	NoticesCollection  = "notices"
	PostsCollection    = "communityPosts"
	CommentsCollection = "comments"
)

var collectionFiles = []struct {
	name string
	file string
}{
	{UsersCollection, "users.json"},
	{StudiesCollection, "studies.json"},
	{NoticesCollection, "notices.json"},
	{PostsCollection, "communityPosts.json"},
	{CommentsCollection, "comments.json"},
}

// Store owns the data directory and every collection in it. All methods are
// safe for concurrent use; a single lock serializes mutations, and each
// mutation is on disk before it becomes visible.
type Store struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time
	write  func(path string, data []byte) error

	mu          sync.RWMutex
	counters    map[string]int
	collections map[string]*Collection
	corrupt     []string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persistence problems.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads every collection from dir, creating the directory if needed.
// Unreadable or malformed files are logged and treated as empty; they never
// make Open fail.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:         dir,
		logger:      zerolog.Nop(),
		now:         time.Now,
		write:       writeFileAtomic,
		collections: make(map[string]*Collection, len(collectionFiles)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("recordstore: create data directory %s: %w", dir, err)
	}

	s.counters = s.loadCounters()
	for _, cf := range collectionFiles {
		c := &Collection{store: s, name: cf.name, file: cf.file}
		c.records = s.loadRecords(cf.name, cf.file)
		s.collections[cf.name] = c
	}
	s.collections[UsersCollection].onCreate = stampRegistration
	s.reconcileCounters()

	s.logger.Info().Str("dir", dir).Interface("counts", s.countsLocked()).Msg("Record store loaded")
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Users returns the user façade.
func (s *Store) Users() *UserCollection {
	return &UserCollection{Collection: s.collections[UsersCollection]}
}

// Studies returns the study-group façade.
func (s *Store) Studies() *Collection { return s.collections[StudiesCollection] }

// Notices returns the notice façade.
func (s *Store) Notices() *Collection { return s.collections[NoticesCollection] }

// Posts returns the community post façade.
func (s *Store) Posts() *Collection { return s.collections[PostsCollection] }

// Comments returns the comment façade.
func (s *Store) Comments() *CommentCollection {
	return &CommentCollection{Collection: s.collections[CommentsCollection]}
}

// Collection looks a collection up by name.
func (s *Store) Collection(name string) (*Collection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

// Names lists the managed collections in file order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(collectionFiles))
	for _, cf := range collectionFiles {
		names = append(names, cf.name)
	}
	return names
}

// Counts returns the number of records in each collection.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countsLocked()
}

// Counters returns a copy of the id counters.
func (s *Store) Counters() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

// CorruptFiles lists the files that could not be loaded by Open.
func (s *Store) CorruptFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]string(nil), s.corrupt...)
	sort.Strings(out)
	return out
}

// DeletePostCascade removes every comment of the post and then the post
// itself. found is false when the post does not exist, in which case
// nothing is written. Both files are written before memory changes; when
// the posts write fails the comments file is rewritten to its old state.
func (s *Store) DeletePostCascade(postID string) (found bool, comments int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.collections[PostsCollection]
	cmts := s.collections[CommentsCollection]
	idx := posts.indexOf(postID)
	if idx < 0 {
		return false, 0, nil
	}
	keptComments, err := cmts.keptLocked(Eq("post", postID))
	if err != nil {
		return true, 0, err
	}
	keptPosts := slices.Delete(slices.Clone(posts.records), idx, idx+1)
	removed := len(cmts.records) - len(keptComments)

	if removed > 0 {
		if err := s.saveRecords(cmts.name, cmts.file, "deleteByPost", keptComments); err != nil {
			return true, 0, err
		}
	}
	if err := s.saveRecords(posts.name, posts.file, "delete", keptPosts); err != nil {
		if removed > 0 {
			if rbErr := s.saveRecords(cmts.name, cmts.file, "rollback", cmts.records); rbErr != nil {
				s.logger.Error().Err(rbErr).Str("post", postID).Msg("comments file could not be restored after failed post delete")
				err = errors.Join(err, rbErr)
			}
		}
		return true, 0, err
	}
	cmts.records = keptComments
	posts.records = keptPosts
	return true, removed, nil
}

func (s *Store) countsLocked() map[string]int {
	counts := make(map[string]int, len(s.collections))
	for name, c := range s.collections {
		counts[name] = len(c.records)
	}
	return counts
}

func (s *Store) timestamp() string { return FormatTime(s.now()) }
