package manifest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Importer defaults.
const (
	DefaultParallel     = 4
	defaultFetchTimeout = 30 * time.Second
	maxMetadataBytes    = 4 << 20
	defaultName         = "Unnamed"
)

// Importer builds cache items from NFT metadata documents fetched over HTTP.
type Importer struct {
	client   *http.Client
	parallel int
	logger   *slog.Logger
}

// NewImporter returns an Importer. A nil client gets a 30s timeout; a
// parallel value below 1 uses DefaultParallel.
func NewImporter(client *http.Client, parallel int, logger *slog.Logger) *Importer {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}

	if parallel < 1 {
		parallel = DefaultParallel
	}

	return &Importer{client: client, parallel: parallel, logger: logger}
}

// metadataDoc is the subset of a token metadata document the cache needs.
type metadataDoc struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Import fetches every URL and returns one item per successfully fetched
// document, in input order with contiguous indices. Blank URLs are ignored.
// Non-2xx responses are skipped with a warning; transport and JSON errors
// abort the import.
func (im *Importer) Import(ctx context.Context, urls []string) (Items, error) {
	targets := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			targets = append(targets, u)
		}
	}

	fetched := make([]*Entry, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.parallel)

	for i, u := range targets {
		g.Go(func() error {
			entry, err := im.fetch(gctx, i, u)
			if err != nil {
				return err
			}

			fetched[i] = entry

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make(Items, 0, len(targets))
	for _, e := range fetched {
		if e != nil {
			items = append(items, *e)
		}
	}

	im.logger.Info("imported metadata",
		slog.Int("requested", len(targets)),
		slog.Int("imported", len(items)),
	)

	return items, nil
}

// fetch returns nil, nil for a non-2xx response.
func (im *Importer) fetch(ctx context.Context, index int, url string) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest: building request for %s: %w", url, err)
	}

	req.Header.Set("Accept", "application/json")

	im.logger.Debug("fetching metadata", slog.Int("index", index), slog.String("url", url))

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		im.logger.Warn("skipping metadata URL",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		)

		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxMetadataBytes))

		return nil, nil
	}

	var doc metadataDoc
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("manifest: invalid JSON at %s: %w", url, err)
	}

	name := doc.Name
	if name == "" {
		name = defaultName
	}

	return &Entry{
		Name:         name,
		ImageLink:    doc.Image,
		MetadataLink: url,
	}, nil
}

// ReadURLList reads one URL per line from path. Blank lines and lines
// starting with '#' are skipped.
func ReadURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: opening URL list: %w", err)
	}
	defer f.Close()

	var urls []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("manifest: reading URL list %s: %w", path, err)
	}

	return urls, nil
}
