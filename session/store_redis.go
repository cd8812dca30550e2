package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deleteRecordScript = `
local subject = redis.call("GET", KEYS[1])
if not subject then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SREM", ARGV[1] .. subject, ARGV[2])
return 1
`

var deleteRecordLua = redis.NewScript(deleteRecordScript)

// RedisStore keeps refresh records as plain keys holding the subject, expiring
// with the token, plus one set per subject indexing its token hashes.
//
// Key layout:
//
//	<prefix>:rt:<sha256(token)>  -> subject (TTL = token lifetime)
//	<prefix>:rs:<subject>        -> set of token hashes
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a [RedisStore]. An empty prefix defaults to "gs".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gs"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for record validation and TTLs.
// A nil now is ignored. Call it before the store is shared.
func (s *RedisStore) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *RedisStore) tokenKey(hash string) string {
	return s.prefix + ":rt:" + hash
}

func (s *RedisStore) subjectKeyPrefix() string {
	return s.prefix + ":rs:"
}

func (s *RedisStore) subjectKey(subject string) string {
	return s.subjectKeyPrefix() + subject
}

// Insert stores rec until rec.ExpiresAt. The record and its index entry are
// written in one MULTI/EXEC.
func (s *RedisStore) Insert(ctx context.Context, rec Record) error {
	now := s.now()
	if err := validateRecord(rec, now); err != nil {
		return err
	}

	ttl := rec.ExpiresAt.Sub(now)
	hash := HashToken(rec.Token)
	subjectKey := s.subjectKey(rec.Subject)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(hash), rec.Subject, ttl)
		pipe.SAdd(ctx, subjectKey, hash)
		// Refresh TTLs are uniform, so the newest record outlives the others.
		pipe.Expire(ctx, subjectKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Exists reports whether a live record for token is present.
func (s *RedisStore) Exists(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, s.tokenKey(HashToken(token))).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

// Delete removes the record for token and its index entry atomically.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	hash := HashToken(token)
	_, err := deleteRecordLua.Run(ctx, s.redis, []string{s.tokenKey(hash)}, s.subjectKeyPrefix(), hash).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteAllForSubject removes every record indexed for subject.
//
// A record inserted between the index read and the delete survives; it is
// caught by the next call or expires on its own.
func (s *RedisStore) DeleteAllForSubject(ctx context.Context, subject string) error {
	subjectKey := s.subjectKey(subject)

	hashes, err := s.redis.SMembers(ctx, subjectKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	keys := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		keys = append(keys, s.tokenKey(hash))
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, subjectKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Count returns the number of live records indexed for subject.
func (s *RedisStore) Count(ctx context.Context, subject string) (int, error) {
	hashes, err := s.redis.SMembers(ctx, s.subjectKey(subject)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.IntCmd, len(hashes))
	for i, hash := range hashes {
		cmds[i] = pipe.Exists(ctx, s.tokenKey(hash))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	total := 0
	for _, cmd := range cmds {
		total += int(cmd.Val())
	}
	return total, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
