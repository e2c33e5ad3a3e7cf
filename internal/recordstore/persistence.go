package recordstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const countersFile = "counters.json"

// corruptSuffix is appended to a collection file that failed to parse
// before the next save overwrites it.
const corruptSuffix = ".corrupt"

// loadRecords reads one collection file. A missing file yields an empty
// collection; a malformed one is logged, copied aside and treated as empty.
func (s *Store) loadRecords(name, file string) []Record {
	path := filepath.Join(s.dir, file)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}
	}
	if err != nil {
		s.logger.Error().Err(err).Str("collection", name).Str("path", path).Msg("Failed to read collection file, starting empty")
		s.corrupt = append(s.corrupt, file)
		return []Record{}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error().Err(err).Str("collection", name).Str("path", path).Msg("Malformed collection file, starting empty")
		s.preserveCorrupt(path, data)
		s.corrupt = append(s.corrupt, file)
		return []Record{}
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		migrateLegacyRecord(name, rec)
		out = append(out, rec)
	}
	return out
}

// loadCounters reads counters.json, keeping zero for every collection it
// does not mention.
func (s *Store) loadCounters() map[string]int {
	counters := make(map[string]int, len(collectionFiles))
	for _, c := range collectionFiles {
		counters[c.name] = 0
	}

	path := filepath.Join(s.dir, countersFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return counters
	}
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to read counters file, starting from zero")
		s.corrupt = append(s.corrupt, countersFile)
		return counters
	}

	var stored map[string]int
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Malformed counters file, starting from zero")
		s.preserveCorrupt(path, data)
		s.corrupt = append(s.corrupt, countersFile)
		return counters
	}
	for k, v := range stored {
		counters[k] = v
	}
	return counters
}

// reconcileCounters raises each counter to at least the largest numeric id
// already present, so a lost counters file never hands out a used id.
func (s *Store) reconcileCounters() {
	for name, c := range s.collections {
		for _, rec := range c.records {
			n, err := strconv.Atoi(rec.ID())
			if err != nil {
				continue
			}
			if n > s.counters[name] {
				s.logger.Warn().Str("collection", name).Int("counter", s.counters[name]).Int("maxId", n).Msg("Counter behind stored ids, raising it")
				s.counters[name] = n
			}
		}
	}
}

func (s *Store) preserveCorrupt(path string, data []byte) {
	backup := path + corruptSuffix
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", backup).Msg("Failed to preserve corrupt file")
		return
	}
	s.logger.Warn().Str("path", backup).Msg("Corrupt file preserved")
}

// migrateLegacyRecord rewrites fields whose shape changed since older
// deployments wrote the file.
func migrateLegacyRecord(collection string, rec Record) {
	migrateLegacyID(rec)
	if collection == PostsCollection {
		migrateLegacyLikes(rec)
	}
}

// migrateLegacyLikes replaces a like counter with an empty liker list.
// The old counter carried no user ids, so nothing can be recovered from it.
func migrateLegacyLikes(rec Record) {
	v, ok := rec["likes"]
	if !ok {
		return
	}
	if _, isList := v.([]any); isList {
		return
	}
	rec["likes"] = []any{}
}

// migrateLegacyID renames the "_id" key written by older deployments.
func migrateLegacyID(rec Record) {
	legacy, ok := rec["_id"]
	if !ok {
		return
	}
	if _, has := rec["id"]; !has {
		switch v := legacy.(type) {
		case string:
			rec["id"] = v
		case float64:
			rec["id"] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return
		}
	}
	delete(rec, "_id")
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *Store) saveRecords(name, file, op string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := encodeJSON(records)
	if err != nil {
		return &PersistError{Collection: name, Op: op, Err: err}
	}
	if err := s.write(filepath.Join(s.dir, file), data); err != nil {
		s.logger.Error().Err(err).Str("collection", name).Str("op", op).Msg("Failed to persist collection")
		return &PersistError{Collection: name, Op: op, Err: err}
	}
	return nil
}

func (s *Store) saveCounters(counters map[string]int) error {
	data, err := encodeJSON(counters)
	if err != nil {
		return &PersistError{Collection: "counters", Op: "nextID", Err: err}
	}
	if err := s.write(filepath.Join(s.dir, countersFile), data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist counters")
		return &PersistError{Collection: "counters", Op: "nextID", Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
