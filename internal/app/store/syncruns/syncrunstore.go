// internal/app/store/syncruns/syncrunstore.go
package syncrunstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for sync run history.
const CollectionName = "sync_runs"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("sync run not found")

// Store records sync orchestrator runs.
type Store struct {
	c *mongo.Collection
}

// New creates a sync run store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Start inserts a running record and returns it with its id set.
func (s *Store) Start(ctx context.Context, run models.SyncRun) (models.SyncRun, error) {
	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Outcome = models.SyncOutcomeRunning
	if _, err := s.c.InsertOne(ctx, run); err != nil {
		return models.SyncRun{}, err
	}
	return run, nil
}

// FinishFields are the results written when a run ends.
type FinishFields struct {
	Outcome        string
	Error          string
	Mode           string
	EquipmentCount int
	SnapshotCount  int
}

// Finish closes a running record.
func (s *Store) Finish(ctx context.Context, id primitive.ObjectID, f FinishFields) error {
	var run models.SyncRun
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now().UTC()
	set := bson.M{
		"outcome":         f.Outcome,
		"equipment_count": f.EquipmentCount,
		"snapshot_count":  f.SnapshotCount,
		"finished_at":     now,
		"duration_ms":     now.Sub(run.StartedAt).Milliseconds(),
	}
	if f.Error != "" {
		set["error"] = f.Error
	}
	if f.Mode != "" {
		set["mode"] = f.Mode
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// Get returns one run.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.SyncRun, error) {
	var run models.SyncRun
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SyncRun{}, ErrNotFound
		}
		return models.SyncRun{}, err
	}
	return run, nil
}

// Recent returns the newest runs first. A non-positive limit means 20.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	runs := []models.SyncRun{}
	if err := cur.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// PruneBefore deletes runs started before cutoff.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"started_at": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
