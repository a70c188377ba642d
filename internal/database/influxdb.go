// Package database exports aggregated results to InfluxDB. Export is an
// optional sink; the aggregation engine itself defines no persistence.
package database

import (
	"context"
	"fmt"
	"time"

	"numa-report/internal/config"
	"numa-report/internal/logging"
	"numa-report/internal/schema"
	"numa-report/internal/store"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

const measurement = "numa_result"

type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewInfluxDBClient(cfg config.DatabaseConfig) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.Host, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		logger.WithField("host", cfg.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, err
	}
	if health.Status != "pass" {
		logger.WithFields(logrus.Fields{
			"host":    cfg.Host,
			"status":  health.Status,
			"message": health.Message,
		}).Error("InfluxDB health check failed")
		return nil, fmt.Errorf("influxdb health status %s", health.Status)
	}

	logger.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"bucket": cfg.Bucket,
		"org":    cfg.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket:   cfg.Bucket,
		org:      cfg.Org,
	}, nil
}

// WriteStore writes one point per aggregated record, tagged by the full
// experiment key. Records without metrics (missing, killed) are exported too:
// the outcome field keeps failed runs visible in dashboards without faking a
// zero measurement.
func (idb *InfluxDBClient) WriteStore(ctx context.Context, category string, st *store.Store, exportedAt time.Time) (int, error) {
	var points []*write.Point

	for key, rec := range st.All(schema.DimPolicy, schema.DimPattern, schema.DimSize) {
		fields := map[string]interface{}{
			"outcome": string(rec.Outcome),
		}
		for name, v := range rec.Metrics {
			fields[name] = v
		}

		point := influxdb2.NewPoint(
			measurement,
			map[string]string{
				"category": category,
				"policy":   string(key.Policy),
				"relation": string(key.Relation),
				"pattern":  string(key.Pattern),
				"size_mb":  fmt.Sprintf("%d", key.SizeMB()),
				"source":   rec.Source,
			},
			fields,
			exportedAt,
		)
		points = append(points, point)
	}

	if len(points) == 0 {
		return 0, nil
	}
	if err := idb.writeAPI.WritePoint(ctx, points...); err != nil {
		return 0, fmt.Errorf("failed to write %d points: %w", len(points), err)
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"category": category,
		"points":   len(points),
		"bucket":   idb.bucket,
	}).Info("Exported aggregated records")

	return len(points), nil
}

func (idb *InfluxDBClient) Close() {
	idb.client.Close()
}
