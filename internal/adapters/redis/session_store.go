// Package redis provides Redis-based adapters for the portal.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/ports"
)

// DefaultSessionPrefix namespaces session keys when no prefix is configured.
const DefaultSessionPrefix = "vms:session:"

// SessionStore is a Redis-based session store for production use.
// Key TTLs follow each session's ExpiresAt.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix string
	Now    func() time.Time
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	if opts.Prefix == "" {
		opts.Prefix = DefaultSessionPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionStore{
		client: client,
		prefix: opts.Prefix,
		now:    opts.Now,
	}
}

var _ ports.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

// Get loads a session. Unknown and expired sessions return ports.ErrSessionNotFound;
// a record that cannot be decoded is deleted and reported as an error.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		if delErr := s.Delete(ctx, id); delErr != nil {
			return domainauth.Session{}, errors.Join(fmt.Errorf("unmarshal session: %w", unmarshalErr), delErr)
		}
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	if sess.Expired(s.now()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// Touch rewrites the record with the new expiry and key TTL. SET XX keeps a
// concurrent logout from being undone.
func (s *SessionStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session expiry must be in the future")
	}
	sess.ExpiresAt = expiresAt

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.prefix+id, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis touch: %w", err)
	}
	if !ok {
		return ports.ErrSessionNotFound
	}
	return nil
}

// StoredSession is a session as found by Each, with the key's remaining TTL.
type StoredSession struct {
	Session domainauth.Session
	TTL     time.Duration
}

const scanBatch = 100

// Each calls fn for every decodable session under the store's prefix. Keys
// that vanish or fail to decode mid-scan are skipped. On a cluster every
// master is scanned.
func (s *SessionStore) Each(ctx context.Context, fn func(StoredSession) error) error {
	if cc, ok := s.client.(*redis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return s.scanNode(ctx, node, fn)
		})
	}
	return s.scanNode(ctx, s.client, fn)
}

func (s *SessionStore) scanNode(ctx context.Context, node redis.Cmdable, fn func(StoredSession) error) error {
	iter := node.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := node.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("redis get %s: %w", key, err)
		}
		var sess domainauth.Session
		if json.Unmarshal(data, &sess) != nil || sess.ID == "" {
			continue
		}
		ttl, err := node.TTL(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis ttl %s: %w", key, err)
		}
		if err := fn(StoredSession{Session: sess, TTL: ttl}); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}
