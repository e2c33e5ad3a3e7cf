package recordstore

import "slices"

// Collection is the façade over one record kind.
type Collection struct {
	store    *Store
	name     string
	file     string
	records  []Record
	onCreate func(rec Record, now string)
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Create stores a copy of data with a fresh id and createdAt/updatedAt
// stamps. Any id, createdAt or updatedAt in data is overwritten.
func (c *Collection) Create(data map[string]any) (Record, error) {
	rec, err := FromValue(data)
	if err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	id, err := c.store.nextID(c.name)
	if err != nil {
		return nil, err
	}
	now := c.store.timestamp()
	rec["id"] = id
	rec["createdAt"] = now
	rec["updatedAt"] = now
	if c.onCreate != nil {
		c.onCreate(rec, now)
	}

	next := make([]Record, len(c.records), len(c.records)+1)
	copy(next, c.records)
	next = append(next, rec)
	if err := c.store.saveRecords(c.name, c.file, "create", next); err != nil {
		return nil, err
	}
	c.records = next
	return rec.Clone(), nil
}

// FindByID returns a copy of the record with the given id.
func (c *Collection) FindByID(id string) (Record, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return c.records[idx].Clone(), true
}

// Find returns copies of the records matching filter. A nil filter matches
// every record.
func (c *Collection) Find(filter Expr, opts FindOptions) ([]Record, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return run(c.records, filter, opts)
}

// FindOne returns the first record in stored order that matches filter.
func (c *Collection) FindOne(filter Expr) (Record, bool, error) {
	found, err := c.Find(filter, FindOptions{Limit: 1})
	if err != nil || len(found) == 0 {
		return nil, false, err
	}
	return found[0], true, nil
}

// Count is len(Find(filter)).
func (c *Collection) Count(filter Expr) (int, error) {
	found, err := c.Find(filter, FindOptions{})
	if err != nil {
		return 0, err
	}
	return len(found), nil
}

// Update shallow-merges patch over the record and refreshes updatedAt.
// The id and createdAt fields cannot be changed. It reports false when no
// record has that id.
func (c *Collection) Update(id string, patch map[string]any) (Record, bool, error) {
	normalized, err := FromValue(patch)
	if err != nil {
		return nil, false, err
	}
	return c.Modify(id, func(Record) (Record, error) { return normalized, nil })
}

// Modify runs fn on a copy of the record and applies the patch it returns,
// all under the store lock, so checks made inside fn hold when the patch
// lands. An error from fn is returned as is and nothing is written.
func (c *Collection) Modify(id string, fn func(current Record) (Record, error)) (Record, bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return nil, false, nil
	}
	patch, err := fn(c.records[idx].Clone())
	if err != nil {
		return nil, true, err
	}
	patch, err = FromValue(patch)
	if err != nil {
		return nil, true, err
	}

	merged := make(Record, len(c.records[idx])+len(patch))
	for k, v := range c.records[idx] {
		merged[k] = v
	}
	for k, v := range patch {
		if k == "id" || k == "createdAt" {
			continue
		}
		merged[k] = v
	}
	merged["updatedAt"] = c.store.timestamp()

	next := slices.Clone(c.records)
	next[idx] = merged
	if err := c.store.saveRecords(c.name, c.file, "update", next); err != nil {
		return nil, true, err
	}
	c.records = next
	return merged.Clone(), true, nil
}

// Delete removes the record with the given id. Deleting a missing id
// returns false and writes nothing.
func (c *Collection) Delete(id string) (bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.deleteLocked(id)
}

// DeleteWhere removes every record matching filter in one write and
// returns how many were removed. A nil filter removes everything.
func (c *Collection) DeleteWhere(filter Expr) (int, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.deleteWhereLocked(filter, "deleteWhere")
}

func (c *Collection) deleteLocked(id string) (bool, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(c.records), idx, idx+1)
	if err := c.store.saveRecords(c.name, c.file, "delete", next); err != nil {
		return true, err
	}
	c.records = next
	return true, nil
}

func (c *Collection) deleteWhereLocked(filter Expr, op string) (int, error) {
	kept, err := c.keptLocked(filter)
	if err != nil {
		return 0, err
	}
	removed := len(c.records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := c.store.saveRecords(c.name, c.file, op, kept); err != nil {
		return 0, err
	}
	c.records = kept
	return removed, nil
}

// keptLocked returns the records that do not match filter.
func (c *Collection) keptLocked(filter Expr) ([]Record, error) {
	kept := make([]Record, 0, len(c.records))
	for _, rec := range c.records {
		ok, err := Match(filter, rec)
		if err != nil {
			return nil, err
		}
		if !ok {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

func (c *Collection) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, rec := range c.records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}
