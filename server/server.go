package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/layer"
	"github.com/royalcat/rquadtree/render"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const MaxBodySize = 32 * 1000 * 1000 // 32MB

const maxRenderScale = 8

var meter = otel.Meter("github.com/royalcat/rquadtree/server")

var layersGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "rquadtree",
	Name:      "layers",
	Help:      "Number of layers currently hosted.",
})

// Run serves the layer API on address until ctx is done and returns nil after
// a clean shutdown. Telemetry providers are expected to be installed by the caller.
func Run(ctx context.Context, address string, registry *layer.Registry) error {
	log := slog.Default()

	s, err := newServer(registry)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	server := &fasthttp.Server{
		ReadTimeout:        time.Second,
		MaxRequestBodySize: MaxBodySize,
		Handler:            s.router().Handler,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "address", ln.Addr().String())
		// Serve returns nil once the listener is closed
		serveErr <- server.Serve(ln)
	}()
	log.Info("Server started", "layers", registry.Len())

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	shutdownErr := server.ShutdownWithContext(shutdownCtx)
	// Shutdown only closes listeners Serve has registered
	ln.Close()

	return errors.Join(shutdownErr, <-serveErr)
}

type server struct {
	registry *layer.Registry
	log      *slog.Logger

	metricInsertCallCount metric.Int64Counter
	metricQueryCallCount  metric.Int64Counter
	metricEntriesInserted metric.Int64Counter
	metricEntriesRejected metric.Int64Counter
	metricQueryDuration   metric.Float64Histogram
}

func newServer(registry *layer.Registry) (*server, error) {
	metricInsertCallCount, err := meter.Int64Counter("http_insert_call_total")
	if err != nil {
		return nil, err
	}
	metricQueryCallCount, err := meter.Int64Counter("http_query_call_total")
	if err != nil {
		return nil, err
	}
	metricEntriesInserted, err := meter.Int64Counter("entries_inserted_total")
	if err != nil {
		return nil, err
	}
	metricEntriesRejected, err := meter.Int64Counter("entries_rejected_total")
	if err != nil {
		return nil, err
	}
	metricQueryDuration, err := meter.Float64Histogram("query_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	layersGauge.Set(float64(registry.Len()))

	return &server{
		registry: registry,
		log:      slog.Default().With("component", "server"),

		metricInsertCallCount: metricInsertCallCount,
		metricQueryCallCount:  metricQueryCallCount,
		metricEntriesInserted: metricEntriesInserted,
		metricEntriesRejected: metricEntriesRejected,
		metricQueryDuration:   metricQueryDuration,
	}, nil
}

func (s *server) router() *router.Router {
	r := router.New()
	r.GET("/quadtree/layers", s.ListLayersHandler)
	r.PUT("/quadtree/layers/{layer}", s.CreateLayerHandler)
	r.GET("/quadtree/layers/{layer}", s.StatsHandler)
	r.DELETE("/quadtree/layers/{layer}", s.DeleteLayerHandler)
	r.POST("/quadtree/layers/{layer}/entries", s.InsertHandler)
	r.GET("/quadtree/layers/{layer}/entries", s.EntriesHandler)
	r.GET("/quadtree/layers/{layer}/query/{x}/{y}/{w}/{h}", s.QueryHandler)
	r.POST("/quadtree/layers/{layer}/query", s.QueryManyHandler)
	r.GET("/quadtree/layers/{layer}/boundaries", s.BoundariesHandler)
	r.GET("/quadtree/layers/{layer}/stats", s.StatsHandler)
	r.GET("/quadtree/layers/{layer}/render.png", s.RenderHandler)
	r.Handle(http.MethodGet, "/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	return r
}

var reqRectsPool = sync.Pool{
	New: func() any {
		return &[]geom.Rect{}
	},
}

var bufPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

func (s *server) layer(ctx *fasthttp.RequestCtx) (*layer.Layer, bool) {
	name, _ := ctx.UserValue("layer").(string)
	l, err := s.registry.Get(name)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		ctx.Response.SetBodyString(err.Error())
		return nil, false
	}
	return l, true
}

func layerAttr(l *layer.Layer) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("layer", l.Name()))
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString("failed to marshal response")
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBody(out)
}

func layerResponse(l *layer.Layer) LayerResponse {
	cfg := l.Config()
	return LayerResponse{
		Name:     l.Name(),
		Boundary: l.Boundary(),
		Capacity: cfg.Capacity,
		MaxDepth: cfg.MaxDepth,
		Stats:    l.Stats(),
	}
}

func (s *server) ListLayersHandler(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, http.StatusOK, s.registry.Names())
}

func (s *server) CreateLayerHandler(ctx *fasthttp.RequestCtx) {
	name, _ := ctx.UserValue("layer").(string)

	var req CreateLayerRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}

	l, err := s.registry.Create(name, req.Boundary, layer.Config{
		Capacity: req.Capacity,
		MaxDepth: req.MaxDepth,
	})
	switch {
	case errors.Is(err, layer.ErrLayerExists):
		ctx.Response.SetStatusCode(http.StatusConflict)
		ctx.Response.SetBodyString(err.Error())
		return
	case err != nil:
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}
	layersGauge.Set(float64(s.registry.Len()))

	writeJSON(ctx, http.StatusCreated, layerResponse(l))
}

func (s *server) DeleteLayerHandler(ctx *fasthttp.RequestCtx) {
	name, _ := ctx.UserValue("layer").(string)
	if !s.registry.Delete(name) {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}
	layersGauge.Set(float64(s.registry.Len()))
	ctx.Response.SetStatusCode(http.StatusNoContent)
}

func (s *server) StatsHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}
	writeJSON(ctx, http.StatusOK, layerResponse(l))
}

func (s *server) InsertHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}
	s.metricInsertCallCount.Add(ctx, 1, layerAttr(l))

	req := reqRectsPool.Get().(*[]geom.Rect)
	*req = (*req)[:0]
	defer reqRectsPool.Put(req)

	err := unmarshalRectListFast(ctx.Request.Body(), req)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}

	res := InsertResponse{Results: l.Insert(*req...)}
	for _, ok := range res.Results {
		if ok {
			res.Inserted++
		} else {
			res.Rejected++
		}
	}
	s.metricEntriesInserted.Add(ctx, int64(res.Inserted), layerAttr(l))
	s.metricEntriesRejected.Add(ctx, int64(res.Rejected), layerAttr(l))

	data, err := res.MarshalJSON()
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(data)
}

func (s *server) EntriesHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}

	data, err := l.Entries().MarshalJSON()
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(data)
}

func parseRegion(ctx *fasthttp.RequestCtx) (geom.Rect, error) {
	var v [4]int
	for i, key := range [4]string{"x", "y", "w", "h"} {
		s, _ := ctx.UserValue(key).(string)
		n, err := strconv.Atoi(s)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		v[i] = n
	}
	r := geom.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
	if !r.Valid() {
		return geom.Rect{}, fmt.Errorf("invalid region %s: negative size", r)
	}
	return r, nil
}

func (s *server) QueryHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}
	s.metricQueryCallCount.Add(ctx, 1, layerAttr(l))

	region, err := parseRegion(ctx)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	start := time.Now()
	found, ok := l.Query(region)
	s.metricQueryDuration.Record(ctx, time.Since(start).Seconds(), layerAttr(l))

	if !ok {
		ctx.Response.SetStatusCode(http.StatusNoContent)
		return
	}

	data, err := QueryResponse{Found: true, Entries: found}.MarshalJSON()
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(data)
}

func (s *server) QueryManyHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}
	s.metricQueryCallCount.Add(ctx, 1, layerAttr(l))

	req := reqRectsPool.Get().(*[]geom.Rect)
	*req = (*req)[:0]
	defer reqRectsPool.Put(req)

	err := unmarshalRectListFast(ctx.Request.Body(), req)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}
	for _, r := range *req {
		if !r.Valid() {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(fmt.Sprintf("invalid region %s: negative size", r))
			return
		}
	}

	start := time.Now()
	results, err := l.QueryMany(ctx, *req)
	s.metricQueryDuration.Record(ctx, time.Since(start).Seconds(), layerAttr(l))
	if err != nil {
		s.log.Warn("batch query interrupted", "layer", l.Name(), "error", err.Error())
		ctx.Response.SetStatusCode(http.StatusServiceUnavailable)
		return
	}

	res := make(QueryResponses, len(results))
	for i, r := range results {
		res[i].Found = r.Found
		res[i].Entries = r.Entries
		if res[i].Entries == nil {
			res[i].Entries = geom.Rects{}
		}
	}

	data, err := res.MarshalJSON()
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(data)
}

func (s *server) BoundariesHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, b := range l.Boundaries() {
		f := geojson.NewFeature(b.Rect.Bound().ToPolygon())
		f.Properties["depth"] = b.Depth
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.Header.SetContentType("application/geo+json")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(data)
}

func (s *server) RenderHandler(ctx *fasthttp.RequestCtx) {
	l, ok := s.layer(ctx)
	if !ok {
		return
	}

	var selection geom.Rect
	if arg := ctx.QueryArgs().Peek("selection"); len(arg) > 0 {
		var err error
		selection, err = geom.ParseRect(string(arg))
		if err != nil {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(err.Error())
			return
		}
		if !selection.Valid() {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(fmt.Sprintf("invalid selection %s: negative size", selection))
			return
		}
	}

	scale := 1
	if ctx.QueryArgs().Has("scale") {
		n, err := ctx.QueryArgs().GetUint("scale")
		if err != nil || n < 1 || n > maxRenderScale {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(fmt.Sprintf("scale must be between 1 and %d", maxRenderScale))
			return
		}
		scale = n
	}

	img, err := l.Render(selection, render.WithScale(scale))
	if errors.Is(err, render.ErrTooLarge) {
		ctx.Response.SetStatusCode(http.StatusRequestEntityTooLarge)
		ctx.Response.SetBodyString(err.Error())
		return
	} else if err != nil {
		s.log.Error("failed to render layer", "layer", l.Name(), "error", err.Error())
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := render.EncodePNG(buf, img); err != nil {
		s.log.Error("failed to encode png", "layer", l.Name(), "error", err.Error())
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.Header.SetContentType("image/png")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(buf.Bytes())
}
