package repository

import "context"

// Transactor runs fn inside a single database transaction. Repositories called
// with the ctx handed to fn take part in that transaction; a nested call joins
// the outer transaction instead of opening a new one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
