package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// File and directory permissions for written cache files.
const (
	filePerms = 0o644
	dirPerms  = 0o755
)

//go:embed cache.schema.json
var cacheSchema []byte

// ErrInvalidCache is returned when a cache document fails schema validation.
var ErrInvalidCache = errors.New("manifest: cache does not match schema")

// Program holds the on-chain addresses a deploy fills in later. All are null
// in a freshly generated cache.
type Program struct {
	CandyMachine        *string `json:"candyMachine"`
	CandyMachineCreator *string `json:"candyMachineCreator"`
	CollectionMint      *string `json:"collectionMint"`
}

// Cache is the deployment cache document.
type Cache struct {
	Program Program `json:"program"`
	Items   Items   `json:"items"`
}

// NewCache returns a cache holding items with an empty program section.
func NewCache(items Items) *Cache {
	if items == nil {
		items = Items{}
	}

	return &Cache{Items: items}
}

// Marshal renders the cache as indented JSON and validates it.
func (c *Cache) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding cache: %w", err)
	}

	if err := validate(data); err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// Write validates the cache and writes it to path atomically.
func (c *Cache) Write(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	return save(path, data)
}

// Read loads and validates the cache at path.
func Read(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}

	if err := validate(data); err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("manifest: decoding %s: %w", path, err)
	}

	return &c, nil
}

// validate checks data against the embedded cache schema.
func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(cacheSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("manifest: validating cache: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, "  - "+desc.String())
	}

	return fmt.Errorf("%w:\n%s", ErrInvalidCache, strings.Join(details, "\n"))
}

// save writes data to path atomically (write-to-temp + rename).
func save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return fmt.Errorf("manifest: creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("manifest: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, filePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("manifest: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("manifest: writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("manifest: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("manifest: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("manifest: renaming: %w", err)
	}

	success = true

	return nil
}
