package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/crypto"
)

// mongoRecord is one document per owner. The expiresAt field drives a TTL
// index, so session expiry is enforced by the database itself, independent of
// application logic.
type mongoRecord struct {
	OwnerID   string           `bson:"_id"`
	Envelope  *crypto.Envelope `bson:"envelope"`
	CreatedAt time.Time        `bson:"createdAt"`
	ExpiresAt time.Time        `bson:"expiresAt"`
}

// MongoStore persists encrypted sessions in a document collection with a TTL.
type MongoStore struct {
	coll *mongo.Collection
	key  []byte
	ttl  time.Duration
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore binds a store to database/collection on client and ensures
// the TTL index exists.
func NewMongoStore(ctx context.Context, client *mongo.Client, database, collection string, key []byte, ttl time.Duration) (*MongoStore, error) {
	coll := client.Database(database).Collection(collection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, &StorageError{Op: "init", Err: err}
	}

	return &MongoStore{coll: coll, key: key, ttl: ttl}, nil
}

func (s *MongoStore) Save(ctx context.Context, ownerID string, sess models.Session) error {
	plaintext, err := json.Marshal(sess)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	env, err := crypto.Encrypt(plaintext, s.key)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	now := time.Now().UTC()
	rec := mongoRecord{
		OwnerID:   ownerID,
		Envelope:  env,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": ownerID},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, ownerID string) (*models.Session, error) {
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": ownerID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load", Err: err}
	}

	// The TTL sweeper runs periodically; an expired record may linger a
	// short while, so check the expiry ourselves too.
	if time.Now().UTC().After(rec.ExpiresAt) {
		return nil, ErrNotFound
	}

	plaintext, err := crypto.Decrypt(rec.Envelope, s.key)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	var sess models.Session
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return &sess, nil
}

func (s *MongoStore) Delete(ctx context.Context, ownerID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": ownerID}); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}
