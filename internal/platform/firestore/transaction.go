package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// TxFunc is executed within a Firestore transaction.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

// TxPolicy bounds a transaction. Firestore retries contended transactions up
// to Attempts times; Timeout caps the whole run unless the caller's deadline
// is sooner.
type TxPolicy struct {
	Attempts int
	Timeout  time.Duration
}

// DefaultTxPolicy is used when no options are given.
var DefaultTxPolicy = TxPolicy{Attempts: 5, Timeout: 15 * time.Second}

// TxOption adjusts a TxPolicy. Non-positive values are ignored.
type TxOption func(*TxPolicy)

func WithTxAttempts(attempts int) TxOption {
	return func(p *TxPolicy) {
		if attempts > 0 {
			p.Attempts = attempts
		}
	}
}

func WithTxTimeout(timeout time.Duration) TxOption {
	return func(p *TxPolicy) {
		if timeout > 0 {
			p.Timeout = timeout
		}
	}
}

func (p TxPolicy) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= p.Timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.Timeout)
}

// RunTransaction runs fn in a transaction on client. Errors from fn go
// through WrapError, so sentinels raised inside fn still match errors.Is.
func RunTransaction(ctx context.Context, client *firestore.Client, fn TxFunc, opts ...TxOption) error {
	switch {
	case client == nil:
		return WrapError("transaction", errors.New("firestore: client is nil"))
	case fn == nil:
		return WrapError("transaction", errors.New("firestore: transaction function is nil"))
	}

	policy := DefaultTxPolicy
	for _, opt := range opts {
		if opt != nil {
			opt(&policy)
		}
	}
	txCtx, cancel := policy.bound(ctx)
	defer cancel()

	return WrapError("transaction", client.RunTransaction(txCtx, fn, firestore.MaxAttempts(policy.Attempts)))
}
