package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type mongoTxRunner struct {
	client *mongo.Client
}

func NewTxRunner(db *mongo.Database) TxRunner {
	return &mongoTxRunner{client: db.Client()}
}

// WithTransaction commits when fn returns nil and aborts otherwise. Unlike
// the driver's session.WithTransaction it never retries: a write conflict is
// reported as ErrConflict and the caller decides what to do.
func (t *mongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.Background())

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(txOpts); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if err := fn(sc); err != nil {
			_ = session.AbortTransaction(context.Background())
			return classifyTxError(err)
		}

		if err := session.CommitTransaction(sc); err != nil {
			return classifyTxError(fmt.Errorf("failed to commit transaction: %w", err))
		}
		return nil
	})
}

func classifyTxError(err error) error {
	if errors.Is(err, ErrConflict) || !isWriteConflict(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}
