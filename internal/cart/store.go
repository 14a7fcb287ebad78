package cart

import (
	"context"
	"errors"
	"time"

	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/redis"
)

const defaultSessionTTL = 24 * time.Hour

// Store сохраняет снимки корзин по идентификатору сессии. Запись выполняется
// по принципу fire-and-forget: ошибка хранилища логируется и не откатывает
// состояние корзины в памяти.
type Store struct {
	redis *redis.Client
	log   *logger.Logger
	ttl   time.Duration
}

// NewStore создает хранилище корзин поверх Redis.
func NewStore(redisClient *redis.Client, log *logger.Logger, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{
		redis: redisClient,
		log:   log,
		ttl:   ttl,
	}
}

// Save записывает снимок корзины. Ошибка не возвращается вызывающему.
func (s *Store) Save(ctx context.Context, sessionID string, c *Cart) {
	if s.redis == nil {
		return
	}

	key := redis.GenerateKey(redis.KeyPrefixCart, sessionID)
	if err := s.redis.Set(ctx, key, c.Items(), s.ttl); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("Failed to persist cart snapshot")
	}
}

// Load читает сохраненную корзину сессии. Отсутствующая сессия дает пустую
// корзину.
func (s *Store) Load(ctx context.Context, sessionID string) (*Cart, error) {
	c := New()
	if s.redis == nil {
		return c, nil
	}

	key := redis.GenerateKey(redis.KeyPrefixCart, sessionID)
	var items []LineItem
	if err := s.redis.Get(ctx, key, &items); err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return c, nil
		}
		return nil, err
	}

	c.Replace(items)
	return c, nil
}

// Clear удаляет сохраненную корзину сессии.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Delete(ctx, redis.GenerateKey(redis.KeyPrefixCart, sessionID))
}
