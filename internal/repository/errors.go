// Package repository is the MySQL data access layer.  Repositories hold a
// *sql.DB, translate driver errors into the error kinds of package model
// and keep every multi-statement change inside one transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

var (
	ErrMemberNotFound      = fmt.Errorf("%w: member not found", model.ErrNotFound)
	ErrThemeNotFound       = fmt.Errorf("%w: theme not found", model.ErrNotFound)
	ErrTimeNotFound        = fmt.Errorf("%w: reservation time not found", model.ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", model.ErrNotFound)

	ErrEmailExists          = fmt.Errorf("%w: email already exists", model.ErrConflict)
	ErrThemeExists          = fmt.Errorf("%w: theme name already exists", model.ErrConflict)
	ErrTimeExists           = fmt.Errorf("%w: reservation time already exists", model.ErrConflict)
	ErrThemeInUse           = fmt.Errorf("%w: theme is referenced by reservations", model.ErrConflict)
	ErrTimeInUse            = fmt.Errorf("%w: reservation time is referenced by reservations", model.ErrConflict)
	ErrDuplicateReservation = fmt.Errorf("%w: member already holds this slot", model.ErrConflict)

	// ErrRefreshInvalid covers unknown, revoked and expired refresh tokens.
	ErrRefreshInvalid = fmt.Errorf("%w: invalid refresh token", model.ErrAuthorization)
)

// MySQL server error numbers the repositories react to.
const (
	erDupEntry    = 1062
	erRowIsRefd   = 1451
	erLockDeadlck = 1213
)

// Unique index names referenced when classifying duplicate-key errors.
const (
	slotIndex       = "uq_reservations_slot"
	memberSlotIndex = "uq_reservations_member_slot"
)

func mysqlErrNo(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool  { return mysqlErrNo(err) == erDupEntry }
func isReferenced(err error) bool { return mysqlErrNo(err) == erRowIsRefd }
func isDeadlock(err error) bool   { return mysqlErrNo(err) == erLockDeadlck }

// isDuplicateOn reports a duplicate-key error raised by the named index.
func isDuplicateOn(err error, index string) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry && strings.Contains(me.Message, index)
}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// maxTxAttempts bounds the reruns of a transaction chosen as a deadlock
// victim.
const maxTxAttempts = 3

// withRetryTx is withTx that reruns fn when InnoDB aborts it as a deadlock
// victim.  fn must be safe to run more than once.
func withRetryTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = withTx(ctx, db, fn)
		if !isDeadlock(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
