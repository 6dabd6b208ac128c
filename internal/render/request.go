package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/windvane/metplot/grid"
)

// Chart kinds accepted on the request topic.
const (
	ChartTwoVar     = "twovar"
	ChartComparison = "comparison"
	ChartPlumes     = "plumes"
	ChartQuantiles  = "quantiles"
	ChartScatter    = "scatter"
)

// RawJob is an unprocessed message from the request topic.
type RawJob struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// GridPayload carries one gridded field in request JSON.
type GridPayload struct {
	Lons   []float64   `json:"lons"`
	Lats   []float64   `json:"lats"`
	Values [][]float64 `json:"values"`
}

// Grid converts the payload to a validated grid.
func (p *GridPayload) Grid() (*grid.Grid, error) {
	return grid.New(p.Lons, p.Lats, p.Values)
}

// EnsemblePayload carries member time series in request JSON.
type EnsemblePayload struct {
	Steps   []float64   `json:"steps,omitempty"`
	Members [][]float64 `json:"members"`
}

// Ensemble converts the payload to a validated ensemble.
func (p *EnsemblePayload) Ensemble() (*grid.Ensemble, error) {
	return grid.NewEnsemble(p.Steps, p.Members)
}

// PointsPayload carries scattered observations in request JSON.
type PointsPayload struct {
	Lons   []float64 `json:"lons"`
	Lats   []float64 `json:"lats"`
	Values []float64 `json:"values"`
}

// Request is the chart job format consumed from the request topic. Which
// payload fields are required depends on Chart: map charts need Field
// (and comparison a Before/After pair), series charts need Members, and
// scatter needs Points.
type Request struct {
	ID     string `json:"id,omitempty"`
	Chart  string `json:"chart"`
	Family string `json:"family,omitempty"`
	Title  string `json:"title,omitempty"`
	Label  string `json:"label,omitempty"`

	// Projection for map charts: "platecarree" (default) or "mercator".
	Projection string  `json:"projection,omitempty"`
	CentralLon float64 `json:"central_lon,omitempty"`

	Field    *GridPayload     `json:"field,omitempty"`
	Isolines *GridPayload     `json:"isolines,omitempty"`
	Before   *GridPayload     `json:"before,omitempty"`
	After    *GridPayload     `json:"after,omitempty"`
	Members  *EnsemblePayload `json:"members,omitempty"`
	Points   *PointsPayload   `json:"points,omitempty"`

	Quantiles []float64 `json:"quantiles,omitempty"`
}

// ParseRequest deserializes a raw job's value into a Request and fills
// in a deterministic ID when the producer did not set one.
func ParseRequest(raw RawJob) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return Request{}, fmt.Errorf("parse render request: %w", err)
	}
	if req.Chart == "" {
		return Request{}, fmt.Errorf("render request has no chart kind")
	}
	if req.ID == "" {
		req.ID = requestID(raw.Value)
	}
	return req, nil
}

// requestID derives a stable ID from the request body, so replayed
// messages map to the same artifact.
func requestID(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])[:16]
}

// Artifact describes one rendered chart, published to the artifact topic.
type Artifact struct {
	RequestID  string    `json:"request_id"`
	Chart      string    `json:"chart"`
	Family     string    `json:"family,omitempty"`
	Path       string    `json:"path"`
	Bytes      int       `json:"bytes"`
	Cached     bool      `json:"cached,omitempty"`
	RenderedAt time.Time `json:"rendered_at"`
}
