package recordstore

import "time"

// UserCollection adds username lookups to the users collection.
type UserCollection struct {
	*Collection
}

// FindByUsername returns the user with the given username.
func (u *UserCollection) FindByUsername(username string) (Record, bool, error) {
	return u.FindOne(Eq("username", username))
}

// CommentCollection adds per-post operations to the comments collection.
type CommentCollection struct {
	*Collection
}

// FindByPost lists the comments of a post ordered by createdAt. Any
// direction other than 1 sorts newest first.
func (c *CommentCollection) FindByPost(postID string, direction int) ([]Record, error) {
	sortKey := Desc("createdAt")
	if direction == 1 {
		sortKey = Asc("createdAt")
	}
	return c.Find(Eq("post", postID), FindOptions{Sort: sortKey})
}

// DeleteByPost removes all comments of a post as one persisted batch.
func (c *CommentCollection) DeleteByPost(postID string) (int, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.deleteWhereLocked(Eq("post", postID), "deleteByPost")
}

// stampRegistration gives new users a registrationDate unless a non-zero
// one was supplied.
func stampRegistration(rec Record, now string) {
	v, _ := rec["registrationDate"].(string)
	if t, err := time.Parse(time.RFC3339, v); err == nil && !t.IsZero() {
		return
	}
	rec["registrationDate"] = now
}
