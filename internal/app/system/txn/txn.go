// Package txn runs catalog writes inside a MongoDB multi-document
// transaction when the deployment supports one, and falls back to
// running them directly on standalone servers.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes functions transactionally against one client.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// New returns a Runner bound to client.
func New(client *mongo.Client, logger *zap.Logger) *Runner {
	return &Runner{client: client, log: logger}
}

// WithTransaction runs fn inside a transaction. The context passed to fn
// carries the session and must be used for every store call in fn.
//
// If the server rejects transactions, fn is run once more without one;
// the caller is then responsible for compensating partial writes.
func (r *Runner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return r.direct(ctx, fn, err)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return r.direct(ctx, fn, err)
	}
	return err
}

func (r *Runner) direct(ctx context.Context, fn func(ctx context.Context) error, cause error) error {
	r.log.Debug("transactions not supported; running without one", zap.Error(cause))
	return fn(ctx)
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone server, old version, etc.).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation: "Transaction numbers are only allowed on a replica set member or mongos"
			51,  // IllegalOperation on older servers
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	// Some drivers and proxies only give us a message. Require two
	// signals so a plain "transaction failed" is not misread.
	msg := strings.ToLower(err.Error())
	signals := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			signals++
		}
	}
	return signals >= 2
}
