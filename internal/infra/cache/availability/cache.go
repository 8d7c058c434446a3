package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

const keyPrefix = "availability:doctor:"

// Cache хранит проекции доступности врачей в redis
// Проекция, посчитанная для другого "сегодня", считается промахом
type Cache struct {
	client Client
	ttl    time.Duration
}

// NewCache создает кэш проекций поверх redis клиента
func NewCache(client Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Generation текущее поколение проекций врача; Invalidate увеличивает его
// Проекция пишется под ключом поколения, прочитанного до чтения записей,
// поэтому расчет, обогнанный инвалидацией, попадает в ключ, который уже никто не читает
func (c *Cache) Generation(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(doctorID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Generation - %v", ErrCacheRead, err)
	}
	return gen, nil
}

// Get возвращает проекцию врача текущего поколения, если она посчитана для today
func (c *Cache) Get(ctx context.Context, doctorID uuid.UUID, today time.Time) (*domain.Projection, bool, error) {
	gen, err := c.Generation(ctx, doctorID)
	if err != nil {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, key(doctorID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: Get - %v", ErrCacheRead, err)
	}

	var projection domain.Projection
	if err := json.Unmarshal(raw, &projection); err != nil {
		return nil, false, fmt.Errorf("%w: Get - decode: %v", ErrCacheRead, err)
	}

	if !projection.Today.Equal(today) {
		return nil, false, nil
	}

	return &projection, true, nil
}

// Set сохраняет проекцию поколения generation с TTL из конфигурации
func (c *Cache) Set(ctx context.Context, projection *domain.Projection, generation int64) error {
	raw, err := json.Marshal(projection)
	if err != nil {
		return fmt.Errorf("%w: Set - encode: %v", ErrCacheWrite, err)
	}

	if err := c.client.Set(ctx, key(projection.DoctorID, generation), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set - %v", ErrCacheWrite, err)
	}

	return nil
}

// Invalidate переводит врачей на новое поколение; старые проекции доживают TTL непрочитанными
func (c *Cache) Invalidate(ctx context.Context, doctorIDs ...uuid.UUID) error {
	for _, id := range doctorIDs {
		if err := c.client.Incr(ctx, generationKey(id)).Err(); err != nil {
			return fmt.Errorf("%w: Invalidate - %v", ErrCacheWrite, err)
		}
	}

	return nil
}

func key(doctorID uuid.UUID, generation int64) string {
	return keyPrefix + doctorID.String() + ":" + strconv.FormatInt(generation, 10)
}

func generationKey(doctorID uuid.UUID) string {
	return keyPrefix + doctorID.String() + ":gen"
}

// NoopCache используется, когда redis выключен в конфигурации
type NoopCache struct{}

func (NoopCache) Get(context.Context, uuid.UUID, time.Time) (*domain.Projection, bool, error) {
	return nil, false, nil
}

func (NoopCache) Generation(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (NoopCache) Set(context.Context, *domain.Projection, int64) error {
	return nil
}

func (NoopCache) Invalidate(context.Context, ...uuid.UUID) error {
	return nil
}
