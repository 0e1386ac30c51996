package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/layer"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestServer(t testing.TB) (*server, fasthttp.RequestHandler) {
	t.Helper()
	s, err := newServer(layer.NewRegistry())
	require.NoError(t, err)
	return s, s.router().Handler
}

func do(h fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	ctx := getRequestCtx(body)
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	h(ctx)
	return ctx
}

func createLayer(t *testing.T, h fasthttp.RequestHandler, name string) {
	t.Helper()
	ctx := do(h, http.MethodPut, "/quadtree/layers/"+name,
		`{"boundary":{"x":0,"y":0,"w":800,"h":450},"capacity":2,"max_depth":16}`)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))
}

func TestLayerLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	createLayer(t, h, "taxis")
	createLayer(t, h, "clicks")

	ctx := do(h, http.MethodPut, "/quadtree/layers/clicks", `{"boundary":{"x":0,"y":0,"w":10,"h":10},"capacity":1}`)
	require.Equal(t, http.StatusConflict, ctx.Response.StatusCode())

	ctx = do(h, http.MethodPut, "/quadtree/layers/bad", `{"boundary":{"x":0,"y":0,"w":10,"h":10},"capacity":0}`)
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodPut, "/quadtree/layers/bad", `{"boundary":`)
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.JSONEq(t, `["clicks","taxis"]`, string(ctx.Response.Body()))

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/stats", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var stats LayerResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &stats))
	require.Equal(t, "clicks", stats.Name)
	require.Equal(t, geom.Rect{W: 800, H: 450}, stats.Boundary)
	require.Equal(t, 2, stats.Capacity)
	require.Equal(t, 16, stats.MaxDepth)
	require.Equal(t, 1, stats.Stats.Nodes)

	ctx = do(h, http.MethodDelete, "/quadtree/layers/taxis", "")
	require.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())

	ctx = do(h, http.MethodDelete, "/quadtree/layers/taxis", "")
	require.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/taxis/stats", "")
	require.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestInsertAndQuery(t *testing.T) {
	_, h := newTestServer(t)
	createLayer(t, h, "clicks")

	ctx := do(h, http.MethodPost, "/quadtree/layers/clicks/entries", `[[10,10],[900,10],[20,20,4,4],[700,400]]`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	require.JSONEq(t, `{"inserted":3,"rejected":1,"results":[true,false,true,true]}`, string(ctx.Response.Body()))

	ctx = do(h, http.MethodPost, "/quadtree/layers/clicks/entries", `[[1,2,3]]`)
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodPost, "/quadtree/layers/missing/entries", `[[1,2]]`)
	require.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/query/0/0/31/31", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.JSONEq(t,
		`{"found":true,"entries":[{"x":10,"y":10,"w":1,"h":1},{"x":20,"y":20,"w":4,"h":4}]}`,
		string(ctx.Response.Body()))

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/query/5/5/1/1", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.JSONEq(t, `{"found":true,"entries":[]}`, string(ctx.Response.Body()))

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/query/1000/1000/10/10", "")
	require.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/query/0/0/-1/10", "")
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/query/0/0/x/10", "")
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/entries", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var entries geom.Rects
	require.NoError(t, entries.UnmarshalJSON(ctx.Response.Body()))
	require.Len(t, entries, 3)
}

func TestQueryMany(t *testing.T) {
	_, h := newTestServer(t)
	createLayer(t, h, "clicks")

	ctx := do(h, http.MethodPost, "/quadtree/layers/clicks/entries", `[[10,10],[20,20],[700,400]]`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx = do(h, http.MethodPost, "/quadtree/layers/clicks/query", `[[1000,1000,5,5],[0,0,31,31],[5,5]]`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var res QueryResponses
	require.NoError(t, res.UnmarshalJSON(ctx.Response.Body()))
	require.Len(t, res, 3)
	require.False(t, res[0].Found)
	require.Empty(t, res[0].Entries)
	require.True(t, res[1].Found)
	require.Equal(t, geom.Rects{geom.Point(10, 10), geom.Point(20, 20)}, res[1].Entries)
	require.True(t, res[2].Found)
	require.Empty(t, res[2].Entries)

	ctx = do(h, http.MethodPost, "/quadtree/layers/clicks/query", `[[0,0,-5,5]]`)
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestBoundaries(t *testing.T) {
	_, h := newTestServer(t)
	createLayer(t, h, "clicks")

	ctx := do(h, http.MethodPost, "/quadtree/layers/clicks/entries", `[[10,10],[20,20],[700,400]]`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/boundaries", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, "application/geo+json", string(ctx.Response.Header.ContentType()))

	fc, err := geojson.UnmarshalFeatureCollection(ctx.Response.Body())
	require.NoError(t, err)
	require.Len(t, fc.Features, 5)

	depths := []float64{}
	for _, f := range fc.Features {
		depths = append(depths, f.Properties.MustFloat64("depth"))
	}
	require.Equal(t, []float64{0, 1, 1, 1, 1}, depths)

	require.Equal(t, geom.Rect{W: 800, H: 450}, geom.FromBound(fc.Features[0].Geometry.Bound()))
	require.Equal(t, geom.Rect{X: 400, Y: 225, W: 400, H: 225}, geom.FromBound(fc.Features[4].Geometry.Bound()))
}

func TestRender(t *testing.T) {
	_, h := newTestServer(t)
	createLayer(t, h, "clicks")

	ctx := do(h, http.MethodGet, "/quadtree/layers/clicks/render.png?selection=0,0,100,100&scale=2", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	require.Equal(t, "image/png", string(ctx.Response.Header.ContentType()))

	img, err := png.Decode(bytes.NewReader(ctx.Response.Body()))
	require.NoError(t, err)
	require.Equal(t, 801*2, img.Bounds().Dx())
	require.Equal(t, 451*2, img.Bounds().Dy())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/render.png?selection=1,2,3", "")
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/render.png?scale=100", "")
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, http.MethodGet, "/quadtree/layers/clicks/render.png?selection=0,0,-5,5", "")
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestRenderTooLarge(t *testing.T) {
	_, h := newTestServer(t)

	ctx := do(h, http.MethodPut, "/quadtree/layers/big",
		`{"boundary":{"x":0,"y":0,"w":1000000000,"h":1000000000},"capacity":4}`)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	ctx = do(h, http.MethodGet, "/quadtree/layers/big/render.png", "")
	require.Equal(t, http.StatusRequestEntityTooLarge, ctx.Response.StatusCode())

	ctx = do(h, http.MethodPut, "/quadtree/layers/moderate",
		`{"boundary":{"x":0,"y":0,"w":50000,"h":50000},"capacity":4}`)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	ctx = do(h, http.MethodGet, "/quadtree/layers/moderate/render.png?scale=8", "")
	require.Equal(t, http.StatusRequestEntityTooLarge, ctx.Response.StatusCode())

	// the server keeps answering afterwards
	ctx = do(h, http.MethodGet, "/quadtree/layers", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}

func TestCreateLayerOverflowingBoundary(t *testing.T) {
	_, h := newTestServer(t)

	ctx := do(h, http.MethodPut, "/quadtree/layers/edge",
		`{"boundary":{"x":9223372036854775800,"y":0,"w":100,"h":100},"capacity":4}`)
	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	createLayer(t, h, "clicks")

	ctx := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.True(t, strings.Contains(string(ctx.Response.Body()), "rquadtree_layers"))
}

func BenchmarkHandlers(b *testing.B) {
	_, h := newTestServer(b)

	ctx := do(h, http.MethodPut, "/quadtree/layers/bench", `{"boundary":{"x":0,"y":0,"w":100000,"h":100000},"capacity":8}`)
	require.Equal(b, http.StatusCreated, ctx.Response.StatusCode())

	b.ResetTimer()

	b.Run("InsertHandler-10", func(b *testing.B) {
		rects := generateRects(10)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			do(h, http.MethodPost, "/quadtree/layers/bench/entries", rects)
		}
	})

	b.Run("InsertHandler-1000", func(b *testing.B) {
		rects := generateRects(1000)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			do(h, http.MethodPost, "/quadtree/layers/bench/entries", rects)
		}
	})

	b.Run("QueryManyHandler-1000", func(b *testing.B) {
		rects := generateRects(1000)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			do(h, http.MethodPost, "/quadtree/layers/bench/query", rects)
		}
	})
}

func generateRects(n int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := range n {
		sb.WriteString("[")
		sb.WriteString(strconv.Itoa(i * 97 % 100000))
		sb.WriteString(",")
		sb.WriteString(strconv.Itoa(i * 31 % 100000))
		sb.WriteString(",50,50]")
		if i != n-1 {
			sb.WriteString(",")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

func getRequestCtx(body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	if body != "" {
		req.SetBodyString(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}
