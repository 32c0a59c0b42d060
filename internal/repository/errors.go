package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrCorrupt is returned when a stored column holds a value the models cannot
// represent.
var ErrCorrupt = errors.New("corrupt record")
