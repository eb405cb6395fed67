package payload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/mtts/internal/models"
)

const fixture = "testdata/results.json"

func TestParseFixture(t *testing.T) {
	res, raw, err := LoadFile(fixture)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	require.Len(t, res.Data, 2)
	assert.Equal(t, 1, res.PassCount())
	assert.Equal(t, float64(70), res.Metadata.Config.RSThreshold)

	tsmc := res.Data[0]
	assert.Equal(t, models.StatusPass, tsmc.Status)
	assert.Equal(t, int64(28500000), tsmc.VolAvg)
	assert.True(t, tsmc.Details["c8_rs_strength"])
	assert.Equal(t, 905.7, tsmc.Indicators.SMA200Prev)
}

func TestParseRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"data": [`,
		"array":           `[]`,
		"missing data":    `{"metadata": {}}`,
		"data not array":  `{"metadata": {}, "data": {}}`,
		"missing meta":    `{"data": []}`,
		"wrong row types": `{"metadata": {}, "data": [{"price": "cheap"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestParseEmptyData(t *testing.T) {
	res, err := Parse([]byte(`{"metadata": {"timestamp": ""}, "data": []}`))
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestLoadFileMissing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch(t *testing.T) {
	body, err := os.ReadFile(fixture)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	loader := NewLoader(time.Second)

	res, raw, err := loader.Load(context.Background(), srv.URL+"/results.json")
	require.NoError(t, err)
	assert.Equal(t, body, raw)
	assert.Len(t, res.Data, 2)

	_, _, err = loader.Load(context.Background(), srv.URL+"/missing.json")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, 1, calls)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.test/results.json"))
	assert.True(t, IsURL("HTTP://example.test"))
	assert.False(t, IsURL("data/results.json"))
}

func TestStoreReloadKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	body, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, body, 0644))

	store := NewStore(path, NewLoader(time.Second))
	assert.Nil(t, store.Current())
	assert.Equal(t, path, store.Source())

	snap, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, path, snap.Source)
	assert.Same(t, snap, store.Current())

	require.NoError(t, os.WriteFile(path, []byte(`{"data": "broken"}`), 0644))
	kept, err := store.Reload(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Same(t, snap, kept)
	assert.Equal(t, uint64(1), store.Version())
	assert.Len(t, store.Current().Results.Data, 2)
}

func TestStoreSwap(t *testing.T) {
	store := NewStore("memory", NewLoader(0))
	first := store.Swap(&models.Results{}, nil)
	second := store.Swap(&models.Results{Data: []models.StockData{{Ticker: "2330.TW"}}}, nil)

	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, uint64(2), second.Version)
	assert.Same(t, second, store.Current())
}
