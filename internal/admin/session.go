package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
)

const SessionTTL = 24 * time.Hour

type SessionStore struct {
	kv  storage.Store
	ttl time.Duration
}

func NewSessionStore(kv storage.Store) *SessionStore {
	return &SessionStore{kv: kv, ttl: SessionTTL}
}

func (s *SessionStore) Save(ctx context.Context, sess models.AdminSession) error {
	if err := storage.SetJSON(ctx, s.kv, storage.KeyAdminSession, sess); err != nil {
		return fmt.Errorf("save admin session: %w", err)
	}
	return nil
}

// Check returns the stored session if it is younger than the TTL. An expired
// session is deleted before ErrSessionExpired is returned.
func (s *SessionStore) Check(ctx context.Context, now time.Time) (*models.AdminSession, error) {
	var sess models.AdminSession
	ok, err := storage.GetJSON(ctx, s.kv, storage.KeyAdminSession, &sess)
	if err != nil {
		return nil, fmt.Errorf("read admin session: %w", err)
	}
	if !ok {
		return nil, ErrNoSession
	}

	age := now.Sub(time.UnixMilli(sess.Timestamp))
	if age >= s.ttl {
		if err := s.Delete(ctx); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.KeyAdminSession); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}
