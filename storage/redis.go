package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "spacetraveling"

// RedisStore keeps documents as JSON values plus a per-type index set, so
// several front-end instances can share one copy.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type redisEntry struct {
	Body      json.RawMessage `json:"body"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NewRedisStore wraps rdb. Entries expire after ttl; zero keeps them forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisStoreFromURL connects using a redis:// URL and pings the server.
func NewRedisStoreFromURL(rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("storage: redis ping: %w", err)
	}
	return NewRedisStore(rdb, 30*24*time.Hour), nil
}

func docKey(docType, uid string) string {
	return fmt.Sprintf("%s:doc:%s:%s", keyPrefix, docType, uid)
}

func indexKey(docType string) string {
	return fmt.Sprintf("%s:docs:%s", keyPrefix, docType)
}

func typesKey() string {
	return keyPrefix + ":types"
}

func (s *RedisStore) Get(ctx context.Context, docType, uid string) (Entry, error) {
	b, err := s.rdb.Get(ctx, docKey(docType, uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, err
	}
	var re redisEntry
	if err := json.Unmarshal(b, &re); err != nil {
		return Entry{}, err
	}
	return Entry{Type: docType, UID: uid, Body: re.Body, FetchedAt: re.FetchedAt}, nil
}

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	b, err := json.Marshal(redisEntry{Body: e.Body, FetchedAt: e.FetchedAt})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, docKey(e.Type, e.UID), b, s.ttl)
	pipe.SAdd(ctx, indexKey(e.Type), e.UID)
	pipe.SAdd(ctx, typesKey(), e.Type)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) List(ctx context.Context, docType string) ([]Entry, error) {
	uids, err := s.rdb.SMembers(ctx, indexKey(docType)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(uids))
	for _, uid := range uids {
		e, err := s.Get(ctx, docType, uid)
		if errors.Is(err, ErrMiss) {
			// expired; drop the stale index member
			s.rdb.SRem(ctx, indexKey(docType), uid)
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].FetchedAt.Equal(entries[j].FetchedAt) {
			return entries[i].FetchedAt.After(entries[j].FetchedAt)
		}
		return entries[i].UID < entries[j].UID
	})
	return entries, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	types, err := s.rdb.SMembers(ctx, typesKey()).Result()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, t := range types {
		n, err := s.rdb.SCard(ctx, indexKey(t)).Result()
		if err != nil {
			return 0, err
		}
		total += int(n)
	}
	return total, nil
}

func (s *RedisStore) Purge(ctx context.Context) error {
	types, err := s.rdb.SMembers(ctx, typesKey()).Result()
	if err != nil {
		return err
	}
	for _, t := range types {
		uids, err := s.rdb.SMembers(ctx, indexKey(t)).Result()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(uids)+1)
		for _, uid := range uids {
			keys = append(keys, docKey(t, uid))
		}
		keys = append(keys, indexKey(t))
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return s.rdb.Del(ctx, typesKey()).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
