package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/windvane/metplot/charts"
	"github.com/windvane/metplot/geo"
	"github.com/windvane/metplot/grid"
	"github.com/windvane/metplot/internal/observability"
)

// Renderer turns chart requests into image files on disk. It implements
// the pipeline Renderer stage.
type Renderer struct {
	outDir  string
	format  string
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	cache   *artifactCache
}

// NewRenderer creates a renderer writing <id>.<format> files under
// outDir. Format is "png" or "svg".
func NewRenderer(outDir, format string, cacheSize int, clk clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) (*Renderer, error) {
	if format != "png" && format != "svg" {
		return nil, fmt.Errorf("render: unsupported output format %q", format)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create output dir: %w", err)
	}
	return &Renderer{
		outDir:  outDir,
		format:  format,
		clock:   clk,
		logger:  logger,
		metrics: metrics,
		cache:   newArtifactCache(cacheSize),
	}, nil
}

// Render parses one raw job and produces its artifact. Requests already
// rendered this process resolve from the artifact cache as long as the
// file is still on disk.
func (r *Renderer) Render(ctx context.Context, raw RawJob) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	req, err := ParseRequest(raw)
	if err != nil {
		return Artifact{}, err
	}

	if art, ok := r.cache.get(req.ID); ok {
		if _, err := os.Stat(art.Path); err == nil {
			r.metrics.CacheLookups.WithLabelValues("hit").Inc()
			art.Cached = true
			return art, nil
		}
	}
	r.metrics.CacheLookups.WithLabelValues("miss").Inc()

	start := time.Now()
	fig, err := r.buildFigure(req)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s %s: %w", req.Chart, req.ID, err)
	}

	path := filepath.Join(r.outDir, req.ID+"."+r.format)
	if err := fig.Save(path); err != nil {
		return Artifact{}, fmt.Errorf("save %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat %s: %w", path, err)
	}

	r.metrics.RenderDuration.WithLabelValues(req.Chart).Observe(time.Since(start).Seconds())
	r.logger.Debug("chart rendered",
		"id", req.ID, "chart", req.Chart, "family", req.Family,
		"path", path, "bytes", info.Size())

	art := Artifact{
		RequestID:  req.ID,
		Chart:      req.Chart,
		Family:     req.Family,
		Path:       path,
		Bytes:      int(info.Size()),
		RenderedAt: r.clock.Now().UTC(),
	}
	r.cache.put(req.ID, art)
	return art, nil
}

func (r *Renderer) buildFigure(req Request) (*charts.Figure, error) {
	switch req.Chart {
	case ChartTwoVar:
		return r.twoVar(req)
	case ChartComparison:
		return r.comparison(req)
	case ChartPlumes:
		return r.plumes(req)
	case ChartQuantiles:
		return r.quantiles(req)
	case ChartScatter:
		return r.scatter(req)
	default:
		return nil, fmt.Errorf("unknown chart kind %q", req.Chart)
	}
}

func (r *Renderer) twoVar(req Request) (*charts.Figure, error) {
	fill, err := requireGrid(req.Field, "field")
	if err != nil {
		return nil, err
	}
	iso := fill
	if req.Isolines != nil {
		if iso, err = req.Isolines.Grid(); err != nil {
			return nil, fmt.Errorf("isolines: %w", err)
		}
	}
	crs, err := figCRS(req)
	if err != nil {
		return nil, err
	}
	return charts.TwoVar(iso, fill, req.Family, charts.MapOptions{
		FigCRS:        crs,
		Title:         req.Title,
		ColorbarLabel: req.Label,
	})
}

func (r *Renderer) comparison(req Request) (*charts.Figure, error) {
	before, err := requireGrid(req.Before, "before")
	if err != nil {
		return nil, err
	}
	after, err := requireGrid(req.After, "after")
	if err != nil {
		return nil, err
	}
	crs, err := figCRS(req)
	if err != nil {
		return nil, err
	}
	o := charts.ComparisonOptions{FigCRS: crs}
	o.Titles[0][0] = req.Title
	o.ColorbarLabels[0][0] = req.Label
	o.ColorbarLabels[0][1] = req.Label
	return charts.TwoVarComparison(before, after, before, after, req.Family, o)
}

func (r *Renderer) plumes(req Request) (*charts.Figure, error) {
	e, err := requireEnsemble(req.Members)
	if err != nil {
		return nil, err
	}
	o := charts.PlumeOptions{}
	o.Title = req.Title
	o.YLabel = req.Label
	return charts.Plumes(e, o)
}

func (r *Renderer) quantiles(req Request) (*charts.Figure, error) {
	e, err := requireEnsemble(req.Members)
	if err != nil {
		return nil, err
	}
	o := charts.QuantileOptions{Quantiles: req.Quantiles}
	o.Title = req.Title
	o.YLabel = req.Label
	return charts.Quantiles(e, o)
}

func (r *Renderer) scatter(req Request) (*charts.Figure, error) {
	if req.Points == nil {
		return nil, fmt.Errorf("scatter request has no points")
	}
	crs, err := figCRS(req)
	if err != nil {
		return nil, err
	}
	return charts.Scatter(req.Points.Values, req.Points.Lons, req.Points.Lats, req.Family, charts.ScatterOptions{
		FigCRS:        crs,
		Title:         req.Title,
		ColorbarLabel: req.Label,
	})
}

func requireGrid(p *GridPayload, name string) (*grid.Grid, error) {
	if p == nil {
		return nil, fmt.Errorf("request has no %s grid", name)
	}
	g, err := p.Grid()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

func requireEnsemble(p *EnsemblePayload) (*grid.Ensemble, error) {
	if p == nil {
		return nil, fmt.Errorf("request has no ensemble members")
	}
	return p.Ensemble()
}

func figCRS(req Request) (*geo.CRS, error) {
	switch req.Projection {
	case "", "platecarree":
		return geo.PlateCarree(), nil
	case "mercator":
		return geo.Mercator(req.CentralLon), nil
	default:
		return nil, fmt.Errorf("unknown projection %q", req.Projection)
	}
}
