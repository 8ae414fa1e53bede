package player

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	redisHostFlag     = "redis-host"
	redisPortFlag     = "redis-port"
	redisPasswordFlag = "redis-password"
	redisDBFlag       = "redis-db"
	redisPrefix       = "watch-ui:lease:"
)

func RegisterRedisFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   redisHostFlag,
			Usage:  "redis host, leases are kept in memory if empty",
			EnvVar: "REDIS_MASTER_SERVICE_HOST, REDIS_SERVICE_HOST",
		},
		cli.IntFlag{
			Name:   redisPortFlag,
			Usage:  "redis port",
			Value:  6379,
			EnvVar: "REDIS_MASTER_SERVICE_PORT, REDIS_SERVICE_PORT",
		},
		cli.StringFlag{
			Name:   redisPasswordFlag,
			Usage:  "redis password",
			EnvVar: "REDIS_PASSWORD",
		},
		cli.IntFlag{
			Name:   redisDBFlag,
			Usage:  "redis db",
			EnvVar: "REDIS_DB",
		},
	)
}

// NewStore returns a redis backed store if redis is configured and an
// in-process one otherwise. The returned func closes the store.
func NewStore(c *cli.Context) (Store, func()) {
	host := c.String(redisHostFlag)
	if host == "" {
		log.Warn("redis host not set, keeping player leases in memory")
		return NewMemoryStore(), func() {}
	}
	cl := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%v:%v", host, c.Int(redisPortFlag)),
		Password: c.String(redisPasswordFlag),
		DB:       c.Int(redisDBFlag),
	})
	return NewRedisStore(cl), func() {
		_ = cl.Close()
	}
}

type RedisStore struct {
	cl redis.UniversalClient
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

func NewRedisStore(cl redis.UniversalClient) *RedisStore {
	return &RedisStore{cl: cl}
}

func (s *RedisStore) Put(ctx context.Context, l *Lease, ttl time.Duration) error {
	b, err := json.Marshal(l)
	if err != nil {
		return errors.Wrap(err, "failed to marshal lease")
	}
	return s.cl.Set(ctx, redisPrefix+l.ID, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Lease, error) {
	b, err := s.cl.Get(ctx, redisPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var l Lease
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal lease")
	}
	return &l, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cl.Del(ctx, redisPrefix+id).Err()
}

type MemoryStore struct {
	mux    sync.Mutex
	leases map[string]Lease
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leases: map[string]Lease{},
	}
}

func (s *MemoryStore) Put(_ context.Context, l *Lease, ttl time.Duration) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.gc()
	cp := *l
	cp.ExpiresAt = time.Now().Add(ttl)
	s.leases[l.ID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Lease, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	l, ok := s.leases[id]
	if !ok || time.Now().After(l.ExpiresAt) {
		return nil, nil
	}
	return &l, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.leases, id)
	return nil
}

func (s *MemoryStore) gc() {
	now := time.Now()
	for k, v := range s.leases {
		if now.After(v.ExpiresAt) {
			delete(s.leases, k)
		}
	}
}
