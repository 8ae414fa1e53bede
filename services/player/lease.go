package player

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	playerLeaseTTLFlag = "player-lease-ttl"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.DurationFlag{
			Name:   playerLeaseTTLFlag,
			Usage:  "player lease ttl, prolonged while the stream is read",
			Value:  30 * time.Minute,
			EnvVar: "PLAYER_LEASE_TTL",
		},
	)
	return RegisterRedisFlags(f)
}

// Lease binds one local player to one video. Streams are served only
// while the lease is held.
type Lease struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store interface {
	Put(ctx context.Context, l *Lease, ttl time.Duration) error
	// Get returns nil without error when the lease is absent or expired
	Get(ctx context.Context, id string) (*Lease, error)
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
}

func New(c *cli.Context, store Store) *Manager {
	return NewManager(store, c.Duration(playerLeaseTTLFlag))
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
	}
}

func (s *Manager) Acquire(ctx context.Context, videoID string) (*Lease, error) {
	l := &Lease{
		ID:        uuid.NewV4().String(),
		VideoID:   videoID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.store.Put(ctx, l, s.ttl); err != nil {
		return nil, errors.Wrap(err, "failed to store lease")
	}
	log.WithField("lease_id", l.ID).WithField("video_id", videoID).Debug("player lease acquired")
	return l, nil
}

func (s *Manager) Release(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "failed to release lease id=%v", id)
	}
	log.WithField("lease_id", id).Debug("player lease released")
	return nil
}

// Switch releases prevID and acquires a lease for videoID. A failed release
// is logged and does not prevent the new lease, the old one expires anyway.
func (s *Manager) Switch(ctx context.Context, prevID string, videoID string) (*Lease, error) {
	if err := s.Release(ctx, prevID); err != nil {
		log.WithError(err).Warn("failed to release previous player lease")
	}
	return s.Acquire(ctx, videoID)
}

// Active returns the lease if it is still held.
func (s *Manager) Active(ctx context.Context, id string) (*Lease, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get lease id=%v", id)
	}
	if l == nil || time.Now().After(l.ExpiresAt) {
		return nil, nil
	}
	return l, nil
}

// Touch prolongs the lease by the configured ttl.
func (s *Manager) Touch(ctx context.Context, l *Lease) error {
	l.ExpiresAt = time.Now().Add(s.ttl)
	return errors.Wrap(s.store.Put(ctx, l, s.ttl), "failed to touch lease")
}
