package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn as one atomic unit when the deployment supports
// multi-document transactions.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether WithTransaction really is transactional. When it
	// is false fn runs directly and writes inside it commit one by one.
	Atomic() bool
}

// MongoTransactor implements Transactor with client sessions. Transactions
// need a replica set; set Enabled to false for a standalone server.
type MongoTransactor struct {
	Client  *mongo.Client
	Enabled bool
}

func (t *MongoTransactor) Atomic() bool {
	return t.Enabled
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.Enabled {
		return fn(ctx)
	}

	session, err := t.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
