package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"importer/models"
	"importer/models/indexes"
	"importer/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCluster answers the handful of endpoints the store uses from memory.
type fakeCluster struct {
	mu       sync.Mutex
	indices  map[string]map[string]interface{}
	docs     map[string]map[string]json.RawMessage
	versions map[string]int
	paths    []string
	failWith int
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{
		indices:  map[string]map[string]interface{}{},
		docs:     map[string]map[string]json.RawMessage{},
		versions: map[string]int{},
	}
}

func (f *fakeCluster) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.paths = append(f.paths, req.Method+" "+req.URL.EscapedPath())
	parts := strings.Split(strings.Trim(req.URL.EscapedPath(), "/"), "/")
	for i, part := range parts {
		unescaped, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		parts[i] = unescaped
	}

	switch {
	case req.URL.Path == "/":
		return respond(http.StatusOK, `{"version":{"number":"7.17.7","build_flavor":"default"},"tagline":"You Know, for Search"}`), nil
	case f.failWith != 0:
		return respond(f.failWith, `{"error":"boom"}`), nil
	case len(parts) == 1 && req.Method == http.MethodHead:
		if _, ok := f.indices[parts[0]]; ok {
			return respond(http.StatusOK, ""), nil
		}
		return respond(http.StatusNotFound, ""), nil
	case len(parts) == 1 && req.Method == http.MethodPut:
		var body map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return nil, err
		}
		f.indices[parts[0]] = body
		f.docs[parts[0]] = map[string]json.RawMessage{}
		return respond(http.StatusOK, `{"acknowledged":true}`), nil
	case len(parts) == 3 && parts[1] == "_doc" && (req.Method == http.MethodPut || req.Method == http.MethodPost):
		index, id := parts[0], parts[2]
		if _, ok := f.docs[index]; !ok {
			f.docs[index] = map[string]json.RawMessage{}
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		f.docs[index][id] = body
		f.versions[index+"/"+id]++
		return respond(http.StatusCreated, fmt.Sprintf(`{"_index":"%s","_id":"%s","_version":%d,"result":"created"}`,
			index, id, f.versions[index+"/"+id])), nil
	case len(parts) == 3 && parts[1] == "_doc" && req.Method == http.MethodGet:
		doc, ok := f.docs[parts[0]][parts[2]]
		if !ok {
			return respond(http.StatusNotFound, `{"found":false}`), nil
		}
		return respond(http.StatusOK, fmt.Sprintf(`{"_index":"%s","_id":"%s","found":true,"_source":%s}`, parts[0], parts[2], doc)), nil
	}
	return respond(http.StatusBadRequest, `{"error":"unsupported"}`), nil
}

func respond(code int, body string) *http.Response {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newStore(t *testing.T) (*Store, *fakeCluster) {
	cluster := newFakeCluster()
	client, err := es7.NewClient(es7.Config{Transport: cluster})
	require.NoError(t, err)
	return NewStore(client, utils.NewSilentLogger()), cluster
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should create every index once", func(t *testing.T) {
		store, cluster := newStore(t)

		require.NoError(t, store.EnsureSchema(ctx))
		require.NoError(t, store.EnsureSchema(ctx))

		assert.Len(t, cluster.indices, 3)
		assert.Contains(t, cluster.indices, indexes.VariationsIndex)
		assert.Contains(t, cluster.indices[indexes.AssembliesIndex], "mappings")
	})

	t.Run("should register and resolve assemblies", func(t *testing.T) {
		store, _ := newStore(t)

		require.NoError(t, store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2"}))
		contigs, err := store.ContigsFor(ctx, "GRCh38")
		require.NoError(t, err)

		assert.Equal(t, models.NewContigSet("chr1", "chr2"), contigs)
	})

	t.Run("should keep slashes of workspace style references inside the document id", func(t *testing.T) {
		store, cluster := newStore(t)

		require.NoError(t, store.PutAssembly(ctx, "18590/2/8", []string{"Chr01"}))
		contigs, err := store.ContigsFor(ctx, "18590/2/8")
		require.NoError(t, err)

		assert.Equal(t, models.NewContigSet("Chr01"), contigs)
		assert.Contains(t, cluster.paths, "PUT /"+indexes.AssembliesIndex+"/_doc/18590%2F2%2F8")
		assert.Contains(t, cluster.docs[indexes.AssembliesIndex], "18590/2/8")
	})

	t.Run("should report unknown assemblies as not found", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.ContigsFor(ctx, "GRCh99")

		var lookupErr *models.AssemblyLookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.True(t, lookupErr.NotFound)
	})

	t.Run("should report failing lookups as lookup errors", func(t *testing.T) {
		store, cluster := newStore(t)
		cluster.failWith = http.StatusInternalServerError

		_, err := store.ContigsFor(ctx, "GRCh38")

		var lookupErr *models.AssemblyLookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.False(t, lookupErr.NotFound)
	})

	t.Run("should save variations with a versioned reference", func(t *testing.T) {
		store, _ := newStore(t)
		variation := &indexes.Variation{
			Name:   "poplar",
			Genome: "Ptrichocarpa_v3",
			Population: models.PopulationRecord{
				Description: "None Provided",
				Strains: []models.StrainInfo{
					{SourceId: "s1", LocationInfo: models.Location{Latitude: 45.5, Longitude: -73.6, Description: "None provided."}},
				},
			},
			Contigs:       []string{"Chr01"},
			FormatVersion: 4.2,
			SampleIds:     []string{"s1"},
		}

		ref, err := store.SaveVariation(ctx, variation)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s/%s/1", indexes.VariationsIndex, variation.Id), ref)

		ref, err = store.SaveVariation(ctx, variation)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s/%s/2", indexes.VariationsIndex, variation.Id), ref)

		stored, err := store.GetVariation(ctx, variation.Id)
		require.NoError(t, err)
		assert.Equal(t, variation, stored)
	})

	t.Run("should surface store failures", func(t *testing.T) {
		store, cluster := newStore(t)
		cluster.failWith = http.StatusServiceUnavailable

		_, err := store.PublishReport(ctx, &indexes.Report{Name: "report_1"})

		var storeErr *models.StoreError
		assert.True(t, errors.As(err, &storeErr))
	})

	t.Run("should publish and read back reports", func(t *testing.T) {
		store, _ := newStore(t)
		report := &indexes.Report{
			Name:    "variation_report_1",
			Message: "Variation object created",
			Html:    "<html></html>",
			FileLinks: []indexes.ReportFile{
				{Path: "/tmp/a.zip", Name: "a.zip", Label: "results", Description: "All output files"},
			},
			IsValid: true,
		}

		ref, err := store.PublishReport(ctx, report)
		require.NoError(t, err)
		assert.Equal(t, indexes.ReportsIndex+"/variation_report_1/1", ref)

		stored, err := store.GetReport(ctx, "variation_report_1")
		require.NoError(t, err)
		assert.Equal(t, report, stored)

		_, err = store.GetReport(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrObjectNotFound)
	})
}
