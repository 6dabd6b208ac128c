// Command genfields generates demo chart requests for the render
// pipeline. It writes them as JSON lines for use as test fixtures, or
// publishes them straight to the request topic when -brokers is set.
//
// Usage:
//
//	go run ./cmd/genfields -out testdata/requests.jsonl
//	go run ./cmd/genfields -brokers localhost:9092 -topic chart-requests
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/windvane/metplot/grid"
	"github.com/windvane/metplot/internal/render"
	"github.com/windvane/metplot/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for JSON-lines request fixture")
	brokers := flag.String("brokers", "", "comma-separated Kafka brokers to publish to")
	topic := flag.String("topic", "chart-requests", "request topic")
	nx := flag.Int("nx", 48, "demo grid width")
	ny := flag.Int("ny", 40, "demo grid height")
	seed := flag.Int64("seed", 1, "random seed for perturbations")
	flag.Parse()

	if *out == "" && *brokers == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out or -brokers")
	}

	requests := demoRequests(*nx, *ny, *seed)

	if *out != "" {
		if err := writeFixture(*out, requests); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d requests to %s\n", len(requests), *out)
	}

	if *brokers != "" {
		if err := publish(strings.Split(*brokers, ","), *topic, requests); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "published %d requests to %s\n", len(requests), *topic)
	}

	return nil
}

// demoRequests builds one request of every chart kind from synthetic
// weather fields.
func demoRequests(nx, ny int, seed int64) []render.Request {
	t2m, mslp := synth.Fields(nx, ny)
	after := synth.Perturbed(t2m, 2.5, seed)
	e := synth.Ensemble(20, 72, seed)
	values, lons, lats := synth.Points(60, seed)

	return []render.Request{
		{
			ID:       "demo-twovar",
			Chart:    render.ChartTwoVar,
			Family:   "temperature",
			Title:    "2m temperature and MSL pressure",
			Label:    "t2m (degC)",
			Field:    gridPayload(t2m),
			Isolines: gridPayload(mslp),
		},
		{
			ID:     "demo-comparison",
			Chart:  render.ChartComparison,
			Family: "temperature",
			Title:  "2m temperature, control vs perturbed",
			Label:  "t2m (degC)",
			Before: gridPayload(t2m),
			After:  gridPayload(after),
		},
		{
			ID:      "demo-plumes",
			Chart:   render.ChartPlumes,
			Title:   "ensemble plumes",
			Label:   "t2m (degC)",
			Members: &render.EnsemblePayload{Steps: e.Steps, Members: e.Members},
		},
		{
			ID:      "demo-quantiles",
			Chart:   render.ChartQuantiles,
			Title:   "ensemble quantiles",
			Label:   "t2m (degC)",
			Members: &render.EnsemblePayload{Steps: e.Steps, Members: e.Members},
		},
		{
			ID:     "demo-scatter",
			Chart:  render.ChartScatter,
			Family: "wind",
			Title:  "station wind reports",
			Label:  "wind speed (kt)",
			Points: &render.PointsPayload{Lons: lons, Lats: lats, Values: values},
		},
	}
}

func gridPayload(g *grid.Grid) *render.GridPayload {
	return &render.GridPayload{Lons: g.Lons, Lats: g.Lats, Values: g.Values}
}

func writeFixture(path string, requests []render.Request) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			f.Close()
			return fmt.Errorf("encode request %s: %w", req.ID, err)
		}
	}
	return f.Close()
}

func publish(brokers []string, topic string, requests []render.Request) error {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	defer w.Close()

	msgs := make([]kafkago.Message, len(requests))
	for i, req := range requests {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal request %s: %w", req.ID, err)
		}
		msgs[i] = kafkago.Message{Key: []byte(req.ID), Value: data}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return w.WriteMessages(ctx, msgs...)
}
