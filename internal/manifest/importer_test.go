package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// metadataServer serves /<n>.json with name "Token <n>", delaying low
// numbers longer so completion order differs from input order.
func metadataServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")

		switch base {
		case "missing":
			http.NotFound(w, r)
			return
		case "garbage":
			fmt.Fprint(w, "<html>")
			return
		case "noname":
			fmt.Fprint(w, `{"image":"https://img/x.png"}`)
			return
		}

		n, err := strconv.Atoi(base)
		if err != nil {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}

		time.Sleep(time.Duration(10-n%10) * 5 * time.Millisecond)
		fmt.Fprintf(w, `{"name":"Token %d","image":"https://img/%d.png","attributes":[]}`, n, n)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestImport_PreservesOrder(t *testing.T) {
	srv := metadataServer(t)

	var urls []string
	for i := range 12 {
		urls = append(urls, fmt.Sprintf("%s/%d.json", srv.URL, i))
	}

	items, err := NewImporter(srv.Client(), 4, testLogger(t)).Import(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, items, 12)

	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("Token %d", i), item.Name)
		assert.Equal(t, urls[i], item.MetadataLink)
		assert.Equal(t, fmt.Sprintf("https://img/%d.png", i), item.ImageLink)
		assert.False(t, item.OnChain)
	}
}

func TestImport_SkipsNon2xxAndBlankLines(t *testing.T) {
	srv := metadataServer(t)

	urls := []string{srv.URL + "/0.json", "  ", srv.URL + "/missing.json", srv.URL + "/noname.json"}

	items, err := NewImporter(srv.Client(), 2, testLogger(t)).Import(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Token 0", items[0].Name)
	assert.Equal(t, "Unnamed", items[1].Name)
	assert.Equal(t, "https://img/x.png", items[1].ImageLink)
}

func TestImport_InvalidJSONAborts(t *testing.T) {
	srv := metadataServer(t)

	_, err := NewImporter(srv.Client(), 1, testLogger(t)).
		Import(context.Background(), []string{srv.URL + "/garbage.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestImport_TransportErrorAborts(t *testing.T) {
	srv := metadataServer(t)
	url := srv.URL + "/0.json"
	srv.Close()

	_, err := NewImporter(nil, 0, testLogger(t)).Import(context.Background(), []string{url})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching")
}

func TestImport_Empty(t *testing.T) {
	items, err := NewImporter(nil, 0, testLogger(t)).Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReadURLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a/1.json\n\n# comment\n  https://a/2.json  \n"), 0o644))

	urls, err := ReadURLList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/1.json", "https://a/2.json"}, urls)

	_, err = ReadURLList(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
