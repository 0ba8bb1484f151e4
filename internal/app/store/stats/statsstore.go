// internal/app/store/stats/statsstore.go
package statsstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for daily statistics.
const CollectionName = "daily_stats"

// Stat types.
const (
	TypeSync      = "sync"      // counters keyed by outcome, gauges from the last run
	TypeEmissions = "emissions" // counters for recorded daily emissions rows
)

// DailyStats holds one day's counters and gauges for a stat type.
type DailyStats struct {
	ID        primitive.ObjectID `bson:"_id"`
	Date      time.Time          `bson:"date"` // UTC midnight
	StatType  string             `bson:"stat_type"`
	Counters  map[string]int64   `bson:"counters"`
	Gauges    map[string]float64 `bson:"gauges"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// ErrNotFound is returned when no stats exist for the date and type.
var ErrNotFound = errors.New("stats not found")

// Store provides daily statistics persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a stats store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// truncateToDay returns the date truncated to midnight UTC.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayFilter(date time.Time, statType string) bson.M {
	return bson.M{"date": truncateToDay(date), "stat_type": statType}
}

// Increment atomically adds delta to a counter for the day of date.
func (s *Store) Increment(ctx context.Context, date time.Time, statType, counter string, delta int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, dayFilter(date, statType), bson.M{
		"$inc":         bson.M{"counters." + counter: delta},
		"$set":         bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}, opts)
	return err
}

// Record increments one counter and overwrites gauges in a single upsert.
// The sync orchestrator calls it once per run.
func (s *Store) Record(ctx context.Context, date time.Time, statType, counter string, gauges map[string]float64) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range gauges {
		set["gauges."+k] = v
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, dayFilter(date, statType), bson.M{
		"$inc":         bson.M{"counters." + counter: int64(1)},
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}, opts)
	return err
}

// GetForDate retrieves stats for one day and type.
func (s *Store) GetForDate(ctx context.Context, date time.Time, statType string) (*DailyStats, error) {
	var stats DailyStats
	err := s.c.FindOne(ctx, dayFilter(date, statType)).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// GetRange retrieves stats for a date range (both ends inclusive), oldest first.
func (s *Store) GetRange(ctx context.Context, startDate, endDate time.Time, statType string) ([]DailyStats, error) {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate).Add(24 * time.Hour)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"date":      bson.M{"$gte": start, "$lt": end},
		"stat_type": statType,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var stats []DailyStats
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SumCounters sums counters across a date range.
func (s *Store) SumCounters(ctx context.Context, startDate, endDate time.Time, statType string) (map[string]int64, error) {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate).Add(24 * time.Hour)

	pipeline := []bson.M{
		{"$match": bson.M{
			"date":      bson.M{"$gte": start, "$lt": end},
			"stat_type": statType,
		}},
		{"$project": bson.M{"counters": bson.M{"$objectToArray": "$counters"}}},
		{"$unwind": "$counters"},
		{"$group": bson.M{
			"_id":   "$counters.k",
			"total": bson.M{"$sum": "$counters.v"},
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make(map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			Key   string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		result[doc.Key] = doc.Total
	}
	return result, cur.Err()
}
