package data

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a referenced post or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCategory is returned when a sync request names a category that does not exist.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrSyncFailed is returned when replacing a post's associations fails
	// after validation. The call is idempotent and may be retried.
	ErrSyncFailed = errors.New("category sync failed")
	// ErrTimeout is returned when a storage call runs past its deadline.
	ErrTimeout = errors.New("storage timeout")
	// ErrStorageUnavailable is returned when the database cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// UnknownCategoryError lists the category ids that did not resolve.
type UnknownCategoryError struct {
	IDs []int64
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category ids %v", e.IDs)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// SyncError wraps the cause of a rolled back association replacement.
type SyncError struct {
	PostID int64
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync categories of post %d: %v", e.PostID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

func (e *SyncError) Is(target error) bool {
	return target == ErrSyncFailed
}

// classify maps low-level driver failures onto the storage error taxonomy.
// Errors that already carry a taxonomy sentinel are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownCategory),
		errors.Is(err, ErrTimeout), errors.Is(err, ErrStorageUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// isForeignKeyViolation reports whether err is a referential integrity failure
// from either supported driver.
func isForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1451: parent row still referenced, 1452: child row has no parent.
		return myErr.Number == 1451 || myErr.Number == 1452
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
