package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/irbridge/core/events"
	coremetrics "github.com/kilianp07/irbridge/core/metrics"
	"github.com/kilianp07/irbridge/infra/logger"
)

// InfluxConfig addresses an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes bridge events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStatus writes the pin value and publish outcome of one tick.
func (s *InfluxSink) RecordStatus(ev events.StatusEvent) error {
	p := write.NewPointWithMeasurement("pin_status").
		AddTag("component", "bridge")
	if ev.PinErr != nil {
		p = p.AddField("pin_error", ev.PinErr.Error())
	} else {
		p = p.AddField("value", boolToInt(ev.Value)).
			AddField("published", ev.Published)
	}
	if ev.Err != nil {
		p = p.AddField("error", ev.Err.Error())
	}
	return s.writePoint(p.SetTime(ev.Time))
}

// RecordTransmit writes one IR bus transaction.
func (s *InfluxSink) RecordTransmit(ev events.TransmitEvent) error {
	r := ev.Result
	p := write.NewPointWithMeasurement("ir_transaction").
		AddTag("code", r.Code.String()).
		AddTag("result", r.Outcome()).
		AddTag("resynced", strconv.FormatBool(r.Resynced)).
		AddField("id", r.ID).
		AddField("duration_ms", float64(r.Duration.Microseconds())/1000)
	if r.Success && r.ReadErr == nil {
		p = p.AddField("value", int64(r.Value))
	}
	if r.Err != nil {
		p = p.AddField("error", r.Err.Error())
	}
	if r.ReadErr != nil {
		p = p.AddField("read_error", r.ReadErr.Error())
	}
	return s.writePoint(p.SetTime(r.Started))
}

// RecordSession writes a broker session transition.
func (s *InfluxSink) RecordSession(ev events.SessionEvent) error {
	p := write.NewPointWithMeasurement("session_transition").
		AddTag("from", ev.From).
		AddTag("to", ev.To).
		AddTag("trigger", ev.Trigger).
		AddField("attempt", ev.Attempt).
		AddField("session_present", ev.SessionPresent)
	if ev.Err != nil {
		p = p.AddField("error", ev.Err.Error())
	}
	return s.writePoint(p.SetTime(ev.Time))
}

func (s *InfluxSink) writePoint(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
