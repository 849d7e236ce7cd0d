package faqcache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-kb/internal/domain/faq"
)

// ValkeyCache stores listings in a Valkey-compatible database. Keys embed a
// generation counter; Invalidate bumps it so older keys are never read again
// and simply expire.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a new cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "faq"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Generation implements faq.Cache. A missing counter reads as zero.
func (c *ValkeyCache) Generation(ctx context.Context) (int64, error) {
	return c.generation(ctx)
}

func (c *ValkeyCache) GetRecords(ctx context.Context, gen int64, key string) ([]faq.Record, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.entryKey(gen, key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var records []faq.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// SaveRecords writes under the caller's generation. When a write has bumped
// the counter meanwhile, the entry lands in an orphaned namespace and expires.
func (c *ValkeyCache) SaveRecords(ctx context.Context, gen int64, key string, records []faq.Record, ttl time.Duration) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(gen, key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) Invalidate(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Incr().Key(c.generationKey()).Build()).Error()
}

func (c *ValkeyCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(c.generationKey()).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cache generation %q: %w", raw, err)
	}
	return gen, nil
}

func (c *ValkeyCache) generationKey() string {
	return fmt.Sprintf("%s:gen", c.prefix)
}

func (c *ValkeyCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:v%d:%s", c.prefix, gen, key)
}

var _ faq.Cache = (*ValkeyCache)(nil)
