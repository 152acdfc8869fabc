package tables

import (
	"fmt"
	"io/fs"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/unklstewy/b200-landing/pkg/config"
)

// Cache memoizes parsed table sets by fingerprint. Files are still read on
// every Load so edited tables are picked up, but identical data is parsed
// once and the resulting Set shared read-only. Safe for concurrent use.
type Cache struct {
	sets *lru.Cache[uint64, *Set]
}

// NewCache creates a cache holding up to size table sets.
func NewCache(size int) (*Cache, error) {
	sets, err := lru.New[uint64, *Set](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create table cache: %w", err)
	}
	return &Cache{sets: sets}, nil
}

// Load returns the table set for the files in fsys, parsing them only when
// this exact data has not been seen before.
func (c *Cache) Load(fsys fs.FS, cfg config.TablesConfig) (*Set, error) {
	raw, err := readRaw(fsys, cfg)
	if err != nil {
		return nil, err
	}

	key := fingerprint(raw, cfg)
	if set, ok := c.sets.Get(key); ok {
		return set, nil
	}

	set, err := parse(raw, cfg)
	if err != nil {
		return nil, err
	}
	c.sets.Add(key, set)
	return set, nil
}

// LoadConfig is Load against the source the configuration points at.
func (c *Cache) LoadConfig(cfg config.TablesConfig) (*Set, error) {
	return c.Load(Source(cfg), cfg)
}

// Len returns the number of cached table sets.
func (c *Cache) Len() int {
	return c.sets.Len()
}

// Purge drops every cached table set.
func (c *Cache) Purge() {
	c.sets.Purge()
}
