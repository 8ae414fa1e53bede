package watch

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const leasesSessionKey = "player_leases"

// Every page playing a local video holds its own lease. The session only
// remembers which leases it holds, oldest first, so that it never holds
// more than maxPlayers of them. Pages release their lease themselves on
// pagehide, leases of pages that never do expire by ttl.

func sessionLeases(session sessions.Session) []string {
	v, _ := session.Get(leasesSessionKey).(string)
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func saveSessionLeases(session sessions.Session, ids []string) error {
	if len(ids) == 0 {
		session.Delete(leasesSessionKey)
	} else {
		session.Set(leasesSessionKey, strings.Join(ids, ","))
	}
	return errors.Wrap(session.Save(), "failed to save session")
}

// activeLeases drops leases that were released or expired meanwhile.
func (s *Handler) activeLeases(ctx context.Context, ids []string) []string {
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		l, err := s.players.Active(ctx, id)
		if err != nil {
			log.WithError(err).WithField("lease_id", id).Warn("failed to check player lease")
			res = append(res, id)
			continue
		}
		if l != nil {
			res = append(res, id)
		}
	}
	return res
}

// acquire gets a new lease for videoID and returns its stream token. When
// the session is at its limit the oldest lease is switched to the new one.
func (s *Handler) acquire(c *gin.Context, videoID string) (string, error) {
	ctx := c.Request.Context()
	session := sessions.Default(c)
	ids := s.activeLeases(ctx, sessionLeases(session))
	evict := ""
	if n := len(ids) - s.maxPlayers + 1; n > 0 {
		for _, id := range ids[1:n] {
			if err := s.players.Release(ctx, id); err != nil {
				log.WithError(err).WithField("lease_id", id).Warn("failed to release player lease")
			}
		}
		evict = ids[0]
		ids = ids[n:]
	}
	l, err := s.players.Switch(ctx, evict, videoID)
	if err != nil {
		return "", err
	}
	if err := saveSessionLeases(session, append(ids, l.ID)); err != nil {
		return "", err
	}
	token, err := s.tokens.Sign(l)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign stream token")
	}
	return token, nil
}

// releaseLease releases lease id and forgets it in the session.
func (s *Handler) releaseLease(c *gin.Context, id string) error {
	if err := s.players.Release(c.Request.Context(), id); err != nil {
		return err
	}
	session := sessions.Default(c)
	ids := sessionLeases(session)
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return saveSessionLeases(session, kept)
}
