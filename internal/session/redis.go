package session

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const (
	recordKeyPrefix   = "ekla:session:"
	directoryKey      = "ekla:users"
	directoryOrderKey = "ekla:users:order"
)

// NewRedisClient parses url and checks the server answers before returning
// the client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisRecords keeps each session identity as a JSON string that expires
// after ttl without activity.
type RedisRecords struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRecords(client *redis.Client, ttl time.Duration) *RedisRecords {
	return &RedisRecords{client: client, ttl: ttl}
}

func (r *RedisRecords) recordKey(key string) string {
	return recordKeyPrefix + key
}

func (r *RedisRecords) Load(ctx context.Context, key string) (*domain.User, error) {
	data, err := r.client.Get(ctx, r.recordKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session record: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}

	if r.ttl > 0 {
		if err := r.client.Expire(ctx, r.recordKey(key), r.ttl).Err(); err != nil {
			return nil, fmt.Errorf("refresh session record: %w", err)
		}
	}
	return &user, nil
}

func (r *RedisRecords) Save(ctx context.Context, key string, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := r.client.Set(ctx, r.recordKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (r *RedisRecords) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.recordKey(key)).Err(); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

// RedisDirectory stores accounts in one hash keyed by normalized email. A
// companion list remembers insertion order for listing.
type RedisDirectory struct {
	client *redis.Client
}

func NewRedisDirectory(client *redis.Client) *RedisDirectory {
	return &RedisDirectory{client: client}
}

// Seed adds users that are not in the directory yet. Existing entries are
// left untouched.
func (d *RedisDirectory) Seed(ctx context.Context, users ...domain.User) error {
	for _, u := range users {
		if _, err := d.add(ctx, u); err != nil {
			return fmt.Errorf("seed directory: %w", err)
		}
	}
	return nil
}

func (d *RedisDirectory) add(ctx context.Context, user domain.User) (bool, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return false, fmt.Errorf("encode user: %w", err)
	}

	email := normalizeEmail(user.Email)
	added, err := d.client.HSetNX(ctx, directoryKey, email, data).Result()
	if err != nil || !added {
		return false, err
	}
	if err := d.client.RPush(ctx, directoryOrderKey, email).Err(); err != nil {
		return true, err
	}
	return true, nil
}

func (d *RedisDirectory) Lookup(ctx context.Context, email string) (*domain.User, error) {
	data, err := d.client.HGet(ctx, directoryKey, normalizeEmail(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (d *RedisDirectory) Put(ctx context.Context, user domain.User) error {
	added, err := d.add(ctx, user)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	if added {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := d.client.HSet(ctx, directoryKey, normalizeEmail(user.Email), data).Err(); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (d *RedisDirectory) List(ctx context.Context) ([]domain.User, error) {
	all, err := d.client.HGetAll(ctx, directoryKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	order, err := d.client.LRange(ctx, directoryOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list user order: %w", err)
	}

	rank := make(map[string]int, len(order))
	for i, email := range order {
		if _, seen := rank[email]; !seen {
			rank[email] = i
		}
	}

	type entry struct {
		email string
		user  domain.User
	}
	entries := make([]entry, 0, len(all))
	for email, data := range all {
		var user domain.User
		if err := json.Unmarshal([]byte(data), &user); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", email, err)
		}
		entries = append(entries, entry{email: email, user: user})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		ra, okA := rank[a.email]
		rb, okB := rank[b.email]
		switch {
		case okA && okB:
			return cmp.Compare(ra, rb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return cmp.Compare(a.email, b.email)
	})

	users := make([]domain.User, len(entries))
	for i, e := range entries {
		users[i] = e.user
	}
	return users, nil
}
