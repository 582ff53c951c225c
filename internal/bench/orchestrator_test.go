package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shexpose/shbench/internal/config"
	"github.com/shexpose/shbench/internal/discovery"
)

func testEndpoint() *discovery.Endpoint {
	return &discovery.Endpoint{
		Entity:     "person",
		Attributes: []string{"label", "age"},
		SchemaProperties: map[string]json.RawMessage{
			"label": json.RawMessage(`{"properties": {"value": {"type": "string"}, "language": {"type": "string"}}}`),
			"age":   json.RawMessage(`{"properties": {"value": {"type": "integer"}}}`),
		},
	}
}

func testOrchestrator(t *testing.T, srvURL string, ladder []int) *Orchestrator {
	t.Helper()
	cfg := config.Default()
	cfg.BaseURL = srvURL
	cfg.BatchSizes = ladder
	cfg.VerifySampleCap = 10
	cfg.ValidatePayloads = true

	o := NewOrchestrator(NewExecutor(srvURL, 2*time.Second, zap.NewNop()), cfg, zap.NewNop())
	o.sleep = func(time.Duration) {} // no settle delays in tests
	return o
}

// crudServer is a minimal in-memory CRUD API in the shape the harness
// discovers: POST /{entity}/, GET/DELETE /{entity}/{uri}/, PUT
// /{entity}/{uri}/{attr}.
func crudServer(t *testing.T) *httptest.Server {
	t.Helper()
	var seq atomic.Int64

	r := chi.NewRouter()
	r.Post("/person/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"uri": fmt.Sprintf("http://example.org/p/%d", seq.Add(1)),
		})
	})
	r.Get("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"label": map[string]any{"value": "Ada", "language": "en"},
			"age":   map[string]any{"value": 42},
		})
	})
	r.Put("/person/{uri}/{attr}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Delete("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunEntity(t *testing.T) {
	srv := crudServer(t)
	o := testOrchestrator(t, srv.URL, []int{2, 3})

	var phases []string
	o.OnPhase = func(entity, op string, summaries []Summary) {
		phases = append(phases, op)
	}

	uris := []string{"http://example.org/p/a", "http://example.org/p/b"}
	results := o.RunEntity(context.Background(), testEndpoint(), uris)

	assert.Equal(t, Operations, phases)
	// 4 operations x 2 rungs.
	require.Len(t, results, 8)

	byOp := make(map[string][]Summary)
	for _, s := range results {
		assert.Equal(t, "person", s.Entity)
		byOp[s.Operation] = append(byOp[s.Operation], s)
	}
	for _, op := range Operations {
		rungs := byOp[op]
		require.Len(t, rungs, 2, "operation %s", op)
		assert.Equal(t, 2, rungs[0].BatchSize)
		assert.Equal(t, 3, rungs[1].BatchSize)
		for _, s := range rungs {
			assert.Equal(t, s.BatchSize, s.Total, "operation %s", op)
			assert.Equal(t, s.Total, s.Succeeded)
			assert.Zero(t, s.Failed)
		}
	}
}

func TestRunEntity_SkipsReadUpdateWithoutVerifiedInstances(t *testing.T) {
	r := chi.NewRouter()
	var seq atomic.Int64
	r.Post("/person/", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"uri": fmt.Sprintf("http://example.org/p/%d", seq.Add(1)),
		})
	})
	// Reads fail: nothing verifies.
	r.Get("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	r.Delete("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	o := testOrchestrator(t, srv.URL, []int{2})
	results := o.RunEntity(context.Background(), testEndpoint(), []string{"http://example.org/p/zombie"})

	ops := make(map[string]bool)
	for _, s := range results {
		ops[s.Operation] = true
	}
	assert.True(t, ops[OpCreate])
	assert.True(t, ops[OpDelete])
	assert.False(t, ops[OpRead], "READ must be skipped with an empty pool")
	assert.False(t, ops[OpUpdate], "UPDATE must be skipped with an empty pool")
}

func TestBenchmarkCreate_AllFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := testOrchestrator(t, srv.URL, []int{10})
	summaries := o.benchmarkCreate(context.Background(), testEndpoint())

	require.Len(t, summaries, 1)
	assert.Equal(t, 10, summaries[0].Total)
	assert.Zero(t, summaries[0].Succeeded)
	assert.Equal(t, 10, summaries[0].Failed)
}

func TestBenchmarkDelete_Shortfall(t *testing.T) {
	// Only the first two creates succeed; the rung still runs with what it got.
	var created atomic.Int64
	r := chi.NewRouter()
	r.Post("/person/", func(w http.ResponseWriter, req *http.Request) {
		n := created.Add(1)
		if n > 2 {
			http.Error(w, "full", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"uri": fmt.Sprintf("http://example.org/p/%d", n),
		})
	})
	var deleted atomic.Int64
	r.Delete("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		deleted.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	o := testOrchestrator(t, srv.URL, []int{5})
	summaries := o.benchmarkDelete(context.Background(), testEndpoint())

	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, 5, s.BatchSize, "reported rung keeps the requested size")
	assert.Equal(t, 2, s.Total, "only the created resources are deleted")
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, int64(2), deleted.Load())
}

func TestVerifyInstances(t *testing.T) {
	docs := map[string]map[string]any{
		"http://example.org/p/full": {
			"label": map[string]any{"value": "Ada", "language": "en"},
			"age":   map[string]any{"value": 42},
		},
		"http://example.org/p/partial": {
			"label": map[string]any{"value": ""},
			"age":   map[string]any{"value": 7},
		},
		"http://example.org/p/empty": {
			"label": nil,
			"age":   map[string]any{},
		},
	}

	r := chi.NewRouter()
	r.Get("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		uri, _ := url.PathUnescape(chi.URLParam(req, "uri"))
		doc, ok := docs[uri]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	o := testOrchestrator(t, srv.URL, []int{1})
	instances := o.VerifyInstances(context.Background(), testEndpoint(), []string{
		"http://example.org/p/full",
		"http://example.org/p/partial",
		"http://example.org/p/empty",
		"http://example.org/p/missing",
	})

	byURI := make(map[string][]string)
	for _, inst := range instances {
		byURI[inst.URI] = inst.Attrs
	}
	require.Len(t, byURI, 3, "unreadable instances are excluded")
	assert.Equal(t, []string{"label", "age"}, byURI["http://example.org/p/full"])
	assert.Equal(t, []string{"age"}, byURI["http://example.org/p/partial"], "empty string value does not verify")
	assert.Empty(t, byURI["http://example.org/p/empty"], "null and empty-object values do not verify")
}

func TestPresentAttrs_ZeroValuesCount(t *testing.T) {
	// Numeric zero and boolean false are real data; only null and empty
	// values disqualify an attribute.
	ep := &discovery.Endpoint{Entity: "person", Attributes: []string{"age", "active", "label"}}
	doc := map[string]json.RawMessage{
		"age":    json.RawMessage(`{"value": 0}`),
		"active": json.RawMessage(`{"value": false}`),
		"label":  json.RawMessage(`{"value": ""}`),
	}

	assert.Equal(t, []string{"age", "active"}, presentAttrs(ep, doc))
}

func TestVerifyInstances_HonorsSampleCap(t *testing.T) {
	var reads atomic.Int64
	r := chi.NewRouter()
	r.Get("/person/{uri}/", func(w http.ResponseWriter, req *http.Request) {
		reads.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"label": map[string]any{"value": "x"}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	o := testOrchestrator(t, srv.URL, []int{1})
	o.cfg.VerifySampleCap = 3

	uris := make([]string, 20)
	for i := range uris {
		uris[i] = fmt.Sprintf("http://example.org/p/%d", i)
	}
	instances := o.VerifyInstances(context.Background(), testEndpoint(), uris)

	assert.Len(t, instances, 3)
	assert.Equal(t, int64(3), reads.Load())
}

func TestBenchmarkUpdate_NoAttributesSkips(t *testing.T) {
	o := testOrchestrator(t, "http://127.0.0.1:0", []int{2})
	instances := []Instance{{URI: "http://example.org/p/1", Attrs: nil}}

	assert.Nil(t, o.benchmarkUpdate(context.Background(), testEndpoint(), instances))
}

func TestSampleURIs(t *testing.T) {
	uris := []string{"a", "b", "c", "d", "e"}

	t.Run("below cap returns all", func(t *testing.T) {
		got := sampleURIs(uris, 10)
		assert.ElementsMatch(t, uris, got)
	})

	t.Run("above cap samples without replacement", func(t *testing.T) {
		got := sampleURIs(uris, 3)
		assert.Len(t, got, 3)
		seen := make(map[string]bool)
		for _, u := range got {
			assert.Contains(t, uris, u)
			assert.False(t, seen[u], "duplicate sample %q", u)
			seen[u] = true
		}
	})
}
