// internal/app/store/snapshots/snapshotstore.go
package snapshotstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for cached snapshot sequences.
const CollectionName = "emission_snapshots"

// ErrNotFound is returned when no sequence is cached for the scope and day.
var ErrNotFound = errors.New("snapshot sequence not found")

// Sequence is the generated snapshot history for one scope on one calendar day.
type Sequence struct {
	Scope     string                     `bson:"scope"`
	Day       string                     `bson:"day"` // YYYY-MM-DD of the newest snapshot
	Snapshots []models.EquipmentSnapshot `bson:"snapshots"`
	CreatedAt time.Time                  `bson:"created_at"`
}

// Store persists snapshot sequences so a restart on the same day reuses
// the numbers already shown.
type Store struct {
	c *mongo.Collection
}

// New creates a snapshot store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// SaveDay replaces the cached sequence for scope and day.
func (s *Store) SaveDay(ctx context.Context, scope, day string, snapshots []models.EquipmentSnapshot) error {
	doc := Sequence{
		Scope:     scope,
		Day:       day,
		Snapshots: snapshots,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"scope": scope, "day": day},
		doc,
		options.Replace().SetUpsert(true))
	return err
}

// LoadDay returns the cached sequence for scope and day. Timestamps are
// returned in loc; a nil loc leaves them in UTC.
func (s *Store) LoadDay(ctx context.Context, scope, day string, loc *time.Location) ([]models.EquipmentSnapshot, error) {
	var doc Sequence
	err := s.c.FindOne(ctx, bson.M{"scope": scope, "day": day}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if loc != nil {
		for i := range doc.Snapshots {
			doc.Snapshots[i].Timestamp = doc.Snapshots[i].Timestamp.In(loc)
		}
	}
	return doc.Snapshots, nil
}

// Prune deletes sequences created before olderThan and reports how many
// were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": olderThan.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
