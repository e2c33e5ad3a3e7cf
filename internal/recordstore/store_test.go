package recordstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// tickingClock returns a clock that advances one minute per call.
func tickingClock(start string) func() time.Time {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

func openTestStore(t *testing.T, dir string, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(tickingClock("2024-03-01T09:00:00Z"))}, opts...)
	s, err := Open(dir, opts...)
	require.NoError(t, err)
	return s
}

// failWritesTo makes every write to the named file fail.
func failWritesTo(s *Store, file string) {
	s.write = func(path string, data []byte) error {
		if filepath.Base(path) == file {
			return errDiskFull
		}
		return writeFileAtomic(path, data)
	}
}

func TestOpenCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s := openTestStore(t, dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, s.Dir())
	for _, name := range s.Names() {
		n, err := s.collections[name].Count(nil)
		require.NoError(t, err)
		assert.Zero(t, n, name)
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	rec, err := s.Studies().Create(map[string]any{
		"id":         "999",
		"title":      "Go study",
		"maxMembers": 4,
	})
	require.NoError(t, err)

	assert.Equal(t, "1", rec.ID())
	assert.Equal(t, "2024-03-01T09:00:00.000Z", rec["createdAt"])
	assert.Equal(t, rec["createdAt"], rec["updatedAt"])
	assert.Equal(t, float64(4), rec["maxMembers"])
}

func TestCreateUserStampsRegistrationDate(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	rec, err := s.Users().Create(map[string]any{"username": "mina"})
	require.NoError(t, err)

	assert.Equal(t, rec["createdAt"], rec["registrationDate"])

	found, ok, err := s.Users().FindByUsername("mina")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, found)
}

func TestRoundTripAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	created, err := s.Posts().Create(map[string]any{
		"title":   "Hello",
		"content": "first post",
		"likes":   []string{"3", "4"},
		"meta":    map[string]any{"pinned": true, "score": 1.5},
	})
	require.NoError(t, err)

	reopened := openTestStore(t, dir)
	found, ok := reopened.Posts().FindByID(created.ID())
	require.True(t, ok)
	assert.Equal(t, created, found)
}

func TestIDsAreMonotonicAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	var ids []string
	for i := 0; i < 5; i++ {
		rec, err := s.Notices().Create(map[string]any{"title": fmt.Sprintf("n%d", i)})
		require.NoError(t, err)
		ids = append(ids, rec.ID())
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)

	reopened := openTestStore(t, dir)
	rec, err := reopened.Notices().Create(map[string]any{"title": "after restart"})
	require.NoError(t, err)
	assert.Equal(t, "6", rec.ID())
	assert.Equal(t, 6, reopened.Counters()[NoticesCollection])
}

func TestCountersAreIndependentPerCollection(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	u, err := s.Users().Create(map[string]any{"username": "a"})
	require.NoError(t, err)
	st, err := s.Studies().Create(map[string]any{"title": "b"})
	require.NoError(t, err)

	assert.Equal(t, "1", u.ID())
	assert.Equal(t, "1", st.ID())
}

func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	const workers, perWorker = 10, 5
	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rec, err := s.Comments().Create(map[string]any{"content": fmt.Sprintf("%d-%d", w, i)})
				if assert.NoError(t, err) {
					ids <- rec.ID()
				}
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)

	reopened := openTestStore(t, dir)
	n, err := reopened.Comments().Count(nil)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, n)
}

func TestUpdateMergesAndRefreshesUpdatedAt(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	created, err := s.Studies().Create(map[string]any{"title": "Old", "category": "language"})
	require.NoError(t, err)

	updated, ok, err := s.Studies().Update(created.ID(), map[string]any{
		"title":     "New",
		"id":        "42",
		"createdAt": "1999-01-01T00:00:00.000Z",
	})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, "New", updated["title"])
	assert.Equal(t, "language", updated["category"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])
	assert.NotEqual(t, created["updatedAt"], updated["updatedAt"])

	found, ok := s.Studies().FindByID(created.ID())
	require.True(t, ok)
	assert.Equal(t, updated, found)
}

func TestUpdateMissingRecord(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	rec, ok, err := s.Studies().Update("404", map[string]any{"title": "x"})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestModifyErrorWritesNothing(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	created, err := s.Studies().Create(map[string]any{"title": "Full"})
	require.NoError(t, err)
	errFull := errors.New("full")

	_, ok, err := s.Studies().Modify(created.ID(), func(Record) (Record, error) {
		return nil, errFull
	})

	assert.True(t, ok)
	assert.ErrorIs(t, err, errFull)
	found, _ := s.Studies().FindByID(created.ID())
	assert.Equal(t, created, found)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.Notices().Create(map[string]any{"title": "keep"})
	require.NoError(t, err)

	writes := 0
	s.write = func(path string, data []byte) error {
		writes++
		return writeFileAtomic(path, data)
	}

	deleted, err := s.Notices().Delete("999")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, writes)

	n, err := s.Notices().Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteRemovesRecord(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	rec, err := s.Notices().Create(map[string]any{"title": "gone"})
	require.NoError(t, err)

	deleted, err := s.Notices().Delete(rec.ID())
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok := openTestStore(t, dir).Notices().FindByID(rec.ID())
	assert.False(t, ok)
}

func TestDeletePostCascadesToComments(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	post, err := s.Posts().Create(map[string]any{"title": "with comments"})
	require.NoError(t, err)
	other, err := s.Posts().Create(map[string]any{"title": "other"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.Comments().Create(map[string]any{"content": "c", "post": post.ID()})
		require.NoError(t, err)
	}
	_, err = s.Comments().Create(map[string]any{"content": "stays", "post": other.ID()})
	require.NoError(t, err)

	found, removed, err := s.DeletePostCascade(post.ID())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, removed)

	left, err := s.Comments().Count(Eq("post", post.ID()))
	require.NoError(t, err)
	assert.Zero(t, left)
	remaining, err := s.Comments().FindByPost(other.ID(), 1)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	_, ok := s.Posts().FindByID(post.ID())
	assert.False(t, ok)
}

func TestDeletePostCascadeMissingPost(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	found, removed, err := s.DeletePostCascade("12")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, removed)
}

func TestDeletePostCascadeRestoresCommentsWhenPostWriteFails(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	post, err := s.Posts().Create(map[string]any{"title": "kept"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := s.Comments().Create(map[string]any{"content": "c", "post": post.ID()})
		require.NoError(t, err)
	}
	failWritesTo(s, "communityPosts.json")

	found, removed, err := s.DeletePostCascade(post.ID())

	assert.True(t, found)
	assert.Zero(t, removed)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, errDiskFull)

	_, ok := s.Posts().FindByID(post.ID())
	assert.True(t, ok)
	left, err := s.Comments().Count(Eq("post", post.ID()))
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	reopened := openTestStore(t, dir)
	_, ok = reopened.Posts().FindByID(post.ID())
	assert.True(t, ok)
	onDisk, err := reopened.Comments().Count(Eq("post", post.ID()))
	require.NoError(t, err)
	assert.Equal(t, 2, onDisk)
}

func TestDeletePostCascadeReportsFailedRestore(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	post, err := s.Posts().Create(map[string]any{"title": "kept"})
	require.NoError(t, err)
	_, err = s.Comments().Create(map[string]any{"content": "c", "post": post.ID()})
	require.NoError(t, err)

	commentWrites := 0
	s.write = func(path string, data []byte) error {
		switch filepath.Base(path) {
		case "communityPosts.json":
			return errDiskFull
		case "comments.json":
			commentWrites++
			if commentWrites > 1 {
				return errDiskFull
			}
		}
		return writeFileAtomic(path, data)
	}

	found, _, err := s.DeletePostCascade(post.ID())

	assert.True(t, found)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, 2, commentWrites)
	left, err := s.Comments().Count(Eq("post", post.ID()))
	require.NoError(t, err)
	assert.Equal(t, 1, left)
}

func TestDeleteByPostIsOneWrite(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	for i := 0; i < 4; i++ {
		_, err := s.Comments().Create(map[string]any{"content": "c", "post": "7"})
		require.NoError(t, err)
	}

	writes := 0
	s.write = func(path string, data []byte) error {
		writes++
		return writeFileAtomic(path, data)
	}

	removed, err := s.Comments().DeleteByPost("7")
	require.NoError(t, err)
	assert.Equal(t, 4, removed)
	assert.Equal(t, 1, writes)
}

func TestFailedCollectionWriteKeepsMemoryAndDisk(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	created, err := s.Studies().Create(map[string]any{"title": "before"})
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dir, "studies.json"))
	require.NoError(t, err)

	failWritesTo(s, "studies.json")

	_, _, err = s.Studies().Update(created.ID(), map[string]any{"title": "after"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, errDiskFull)
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StudiesCollection, perr.Collection)
	assert.Equal(t, "update", perr.Op)

	_, err = s.Studies().Create(map[string]any{"title": "never stored"})
	assert.ErrorIs(t, err, ErrPersist)
	deleted, err := s.Studies().Delete(created.ID())
	assert.True(t, deleted)
	assert.ErrorIs(t, err, ErrPersist)

	found, ok := s.Studies().FindByID(created.ID())
	require.True(t, ok)
	assert.Equal(t, "before", found["title"])
	n, err := s.Studies().Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, err := os.ReadFile(filepath.Join(dir, "studies.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFailedCollectionWriteNeverReusesID(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	failWritesTo(s, "studies.json")

	_, err := s.Studies().Create(map[string]any{"title": "lost"})
	require.ErrorIs(t, err, ErrPersist)

	s.write = writeFileAtomic
	rec, err := s.Studies().Create(map[string]any{"title": "kept"})
	require.NoError(t, err)
	assert.Equal(t, "2", rec.ID())
}

func TestFailedCounterWriteLeavesCounter(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	failWritesTo(s, countersFile)

	_, err := s.Users().Create(map[string]any{"username": "x"})
	require.ErrorIs(t, err, ErrPersist)
	assert.Zero(t, s.Counters()[UsersCollection])
	n, err := s.Users().Count(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMalformedFileIsLoggedAndPreserved(t *testing.T) {
	dir := t.TempDir()
	garbage := []byte(`[{"id": "1", "title": `)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studies.json"), garbage, 0o644))

	var logs bytes.Buffer
	s := openTestStore(t, dir, WithLogger(zerolog.New(&logs)))

	n, err := s.Studies().Count(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"studies.json"}, s.CorruptFiles())
	assert.Contains(t, logs.String(), "Malformed collection file")

	preserved, err := os.ReadFile(filepath.Join(dir, "studies.json.corrupt"))
	require.NoError(t, err)
	assert.Equal(t, garbage, preserved)

	_, err = s.Studies().Create(map[string]any{"title": "fresh"})
	require.NoError(t, err)
	preserved, err = os.ReadFile(filepath.Join(dir, "studies.json.corrupt"))
	require.NoError(t, err)
	assert.Equal(t, garbage, preserved)
}

func TestMalformedCountersAreReconciled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studies.json"),
		[]byte(`[{"id":"3","title":"a"},{"id":"7","title":"b"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, countersFile), []byte(`{oops`), 0o644))

	s := openTestStore(t, dir)
	rec, err := s.Studies().Create(map[string]any{"title": "c"})
	require.NoError(t, err)

	assert.Equal(t, "8", rec.ID())
	assert.Contains(t, s.CorruptFiles(), countersFile)
}

func TestLegacyIDsAreMigrated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notices.json"),
		[]byte(`[{"_id":"abc","title":"legacy"},{"_id":5,"title":"numeric"}]`), 0o644))

	s := openTestStore(t, dir)

	rec, ok := s.Notices().FindByID("abc")
	require.True(t, ok)
	assert.Equal(t, "legacy", rec["title"])
	assert.NotContains(t, rec, "_id")

	rec, ok = s.Notices().FindByID("5")
	require.True(t, ok)
	assert.Equal(t, "numeric", rec["title"])
}

func TestLegacyPostLikeCountsBecomeEmptyLists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "communityPosts.json"),
		[]byte(`[{"_id":"1","title":"counted","likes":3},{"_id":"2","title":"null","likes":null},{"id":"3","title":"current","likes":["4"]}]`), 0o644))

	s := openTestStore(t, dir)

	rec, ok := s.Posts().FindByID("1")
	require.True(t, ok)
	assert.Equal(t, []any{}, rec["likes"])
	rec, ok = s.Posts().FindByID("2")
	require.True(t, ok)
	assert.Equal(t, []any{}, rec["likes"])
	rec, ok = s.Posts().FindByID("3")
	require.True(t, ok)
	assert.Equal(t, []any{"4"}, rec["likes"])
}

func TestUnknownCollection(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	_, err := s.Collection("chats")

	assert.ErrorIs(t, err, ErrUnknownCollection)
}
