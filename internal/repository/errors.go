package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

const writeConflictCode = 112

// retryUpsert reruns op while it fails on the _id unique index, which only
// happens when two requests create the same user document at once.
func retryUpsert(op func() error) error {
	var err error
	for attempt := 0; attempt < maxAddAttempts; attempt++ {
		err = op()
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

// isWriteConflict reports whether err means the transaction lost a race
// with another writer and was aborted by the server.
func isWriteConflict(err error) bool {
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel("TransientTransactionError") {
		return true
	}
	var server mongo.ServerError
	return errors.As(err, &server) && server.HasErrorCode(writeConflictCode)
}
