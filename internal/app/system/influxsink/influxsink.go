// internal/app/system/influxsink/influxsink.go
package influxsink

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"
)

// Measurement names.
const (
	MeasurementDaily     = "daily_emissions"
	MeasurementEquipment = "equipment_emissions"
)

// Config selects the InfluxDB v2 target.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Rollup is what a sync hands the sink.
type Rollup struct {
	OrganizationID string
	Source         string
	Daily          []models.DailyAggregate
	Equipment      []models.Equipment
	Time           time.Time
}

// Sink receives rollups after each successful sync.
type Sink interface {
	Write(ctx context.Context, r Rollup) error
	Close()
}

// Client writes rollups to InfluxDB.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	loc      *time.Location
	logger   *zap.Logger
}

// New connects to InfluxDB and verifies the server is healthy.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("influx health check: %w", err)
	}
	logger.Info("connected to InfluxDB",
		zap.String("url", cfg.URL),
		zap.String("org", cfg.Org),
		zap.String("bucket", cfg.Bucket))
	return &Client{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		loc:      time.Local,
		logger:   logger,
	}, nil
}

// Write sends one rollup as a batch of points.
func (c *Client) Write(ctx context.Context, r Rollup) error {
	points := Points(r, c.loc)
	if len(points) == 0 {
		return nil
	}
	if err := c.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	c.logger.Debug("rollup written to InfluxDB",
		zap.String("organization_id", r.OrganizationID),
		zap.Int("points", len(points)))
	return nil
}

// Close releases the client.
func (c *Client) Close() {
	c.client.Close()
}

// Points converts a rollup into line-protocol points: one daily_emissions
// point per day (timestamped at local midnight) and one equipment_emissions
// point per item (timestamped at r.Time). Days that fail to parse are skipped.
func Points(r Rollup, loc *time.Location) []*write.Point {
	if loc == nil {
		loc = time.Local
	}
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	scope := r.OrganizationID
	if scope == "" {
		scope = "demo"
	}

	points := make([]*write.Point, 0, len(r.Daily)+len(r.Equipment))
	for _, d := range r.Daily {
		day, err := time.ParseInLocation(timeseries.DateLayout, d.Date, loc)
		if err != nil {
			continue
		}
		points = append(points, write.NewPoint(
			MeasurementDaily,
			map[string]string{
				"organization": scope,
				"source":       r.Source,
			},
			map[string]interface{}{
				"emissions_kg": d.Emissions,
			},
			day,
		))
	}
	for _, eq := range r.Equipment {
		points = append(points, write.NewPoint(
			MeasurementEquipment,
			map[string]string{
				"organization": scope,
				"equipment_id": eq.ID,
				"type":         string(eq.Type),
				"status":       string(eq.Status),
			},
			map[string]interface{}{
				"daily_emissions_kg": eq.DailyEmissions.Value,
				"power_draw_kw":      eq.PowerDraw.Value,
			},
			ts,
		))
	}
	return points
}

// Nop drops every rollup.
type Nop struct{}

func (Nop) Write(context.Context, Rollup) error { return nil }
func (Nop) Close()                              {}
