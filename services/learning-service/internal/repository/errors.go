package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidID    = errors.New("invalid id")
)

// translateError maps driver errors onto the repository's sentinel errors.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	default:
		return err
	}
}

func parseObjectID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return objectID, nil
}

// decodeOne decodes a single-document result, translating driver errors.
func decodeOne[T any](result *mongo.SingleResult) (*T, error) {
	if err := result.Err(); err != nil {
		return nil, translateError(err)
	}

	var doc T
	if err := result.Decode(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func insertedID(result *mongo.InsertOneResult) (bson.ObjectID, error) {
	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return bson.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return objectID, nil
}
