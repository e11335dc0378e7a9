package domain

import "errors"

// ErrNotFound marks an article lookup that matched nothing in the cache or
// any provider. It is an expected outcome, not a failure; callers should
// branch on it with errors.Is rather than treat it as exceptional.
var ErrNotFound = errors.New("article not found")
