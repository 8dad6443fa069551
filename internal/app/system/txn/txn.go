// Package txn wraps multi-document MongoDB transactions.
//
// Cascading deletes and participant conversion span several collections
// and must commit together. Replica sets support this natively; a
// standalone server rejects session transactions, which WithTransaction
// surfaces as ErrNotSupported so callers can switch to their journaled
// fallback path instead of failing the operation.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotSupported reports that the connected deployment cannot run
// multi-document transactions (standalone server, old wire version).
var ErrNotSupported = errors.New("transactions not supported by this deployment")

// Server error codes that indicate missing transaction support.
//
//	20  IllegalOperation (standalone "Transaction numbers are only allowed...")
//	51  IllegalOperation
//	263 OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err means the deployment cannot run
// transactions, as opposed to a transaction that failed on its merits.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "illegal operation") {
		return true
	}
	if strings.Contains(s, "transaction") &&
		(strings.Contains(s, "replica set") || strings.Contains(s, "session")) {
		return true
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	return false
}

// WithTransaction runs fn inside one transaction. fn receives a context
// bound to the session and must use it for every store call it makes.
// Returns ErrNotSupported when the deployment cannot start transactions;
// any other error is the transaction's own failure after the driver's
// automatic retries.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return ErrNotSupported
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return ErrNotSupported
	}
	return err
}
