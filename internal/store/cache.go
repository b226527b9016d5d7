package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
)

const keyPrefix = "casewatch:page:"

// Cached wraps a Source with a Redis page cache. Cache errors are logged
// and the call falls through to the wrapped source.
type Cached struct {
	next Source
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCached wraps next. Close closes both next and rdb.
func NewCached(next Source, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) (*Cached, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Cached{
		next:    next,
		rdb:     rdb,
		ttl:     ttl,
		log:     log.With().Str("component", "page_cache").Logger(),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (c *Cached) List(ctx context.Context, obj *schema.ObjectDef, params *query.QueryParams) (*Page, error) {
	key, err := pageKey(obj, params)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache key")
		return c.next.List(ctx, obj, params)
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		page, err := c.decode(data)
		if err == nil {
			c.log.Debug().Str("key", key).Msg("cache hit")
			return page, nil
		}
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry unreadable")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Msg("cache get")
	}

	page, err := c.next.List(ctx, obj, params)
	if err != nil {
		return nil, err
	}

	if data, err := c.encode(page); err != nil {
		c.log.Warn().Err(err).Msg("cache encode")
	} else if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache set")
	}
	return page, nil
}

// Ping checks the wrapped source. An unreachable cache is reported but
// does not fail readiness.
func (c *Cached) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache ping")
	}
	return c.next.Ping(ctx)
}

func (c *Cached) Close() {
	c.next.Close()
	if err := c.rdb.Close(); err != nil {
		c.log.Warn().Err(err).Msg("close redis")
	}
	c.encoder.Close()
	c.decoder.Close()
}

// cacheEntry is the stored form of a Page.
type cacheEntry struct {
	TotalCount int64    `msgpack:"t"`
	Page       int      `msgpack:"p"`
	PageSize   int      `msgpack:"s"`
	Results    [][]byte `msgpack:"r"`
}

func (c *Cached) encode(p *Page) ([]byte, error) {
	e := cacheEntry{
		TotalCount: p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Results:    make([][]byte, len(p.Results)),
	}
	for i, r := range p.Results {
		e.Results[i] = r
	}
	raw, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *Cached) decode(data []byte) (*Page, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	var e cacheEntry
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	p := &Page{
		TotalCount: e.TotalCount,
		Page:       e.Page,
		PageSize:   e.PageSize,
		Results:    make([]json.RawMessage, len(e.Results)),
	}
	for i, r := range e.Results {
		p.Results[i] = r
	}
	return p, nil
}

// pageKey derives the cache key from everything that shapes a page. Map
// keys are sorted so equal parameters always hash the same.
func pageKey(obj *schema.ObjectDef, params *query.QueryParams) (string, error) {
	material := struct {
		Object     string
		Expression string
		Parameters map[string]any
		Select     []string
		Order      *query.OrderClause
		Page       int
		PageSize   int
	}{
		Object:   obj.APIName,
		Select:   params.Select,
		Order:    params.Order,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	if params.Predicate != nil {
		material.Expression = params.Predicate.Expression
		material.Parameters = params.Predicate.Parameters
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&material); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}
