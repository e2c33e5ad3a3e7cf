package recordstore

import "strconv"

// nextID advances the counter of collection and persists counters.json
// before returning the new id. The counter only moves once the write has
// succeeded. Callers must hold s.mu for writing.
func (s *Store) nextID(collection string) (string, error) {
	next := s.counters[collection] + 1

	snapshot := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		snapshot[k] = v
	}
	snapshot[collection] = next

	if err := s.saveCounters(snapshot); err != nil {
		return "", err
	}
	s.counters[collection] = next
	return strconv.Itoa(next), nil
}
