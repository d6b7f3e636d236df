package matchmaker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRepo keeps the match pools in redis so several server nodes can
// feed the same queue.
//
// Keys:
//
//	set mm:pool:{pool}      -> Set(identity, ...)
//	kv  mm:player:{id}      -> pool name, with TTL so stale entries expire
type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

func poolKey(pool string) string {
	return fmt.Sprintf("mm:pool:%s", pool)
}

func playerKey(identity string) string {
	return fmt.Sprintf("mm:player:%s", identity)
}

func (r *redisRepo) Enqueue(ctx context.Context, pool, identity string, ttlSeconds int) error {
	p := r.rdb.Pipeline()
	p.SAdd(ctx, poolKey(pool), identity)
	p.Set(ctx, playerKey(identity), pool, time.Duration(ttlSeconds)*time.Second)
	_, err := p.Exec(ctx)
	return err
}

// popScript pops n random members only once the set holds at least n,
// so a short pool is never drained partially.
var popScript = redis.NewScript(`
if redis.call('SCARD', KEYS[1]) < tonumber(ARGV[1]) then
	return {}
end
return redis.call('SPOP', KEYS[1], ARGV[1])
`)

func (r *redisRepo) PopN(ctx context.Context, pool string, n int) ([]string, error) {
	raw, err := popScript.Run(ctx, r.rdb, []string{poolKey(pool)}, n).Slice()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	if len(ids) > 0 {
		p := r.rdb.Pipeline()
		for _, id := range ids {
			p.Del(ctx, playerKey(id))
		}
		_, _ = p.Exec(ctx)
	}
	return ids, nil
}

func (r *redisRepo) Remove(ctx context.Context, identity string) error {
	pool, err := r.rdb.Get(ctx, playerKey(identity)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	p := r.rdb.Pipeline()
	p.SRem(ctx, poolKey(pool), identity)
	p.Del(ctx, playerKey(identity))
	if _, err := p.Exec(ctx); err != nil {
		return err
	}
	if n, _ := r.rdb.SCard(ctx, poolKey(pool)).Result(); n == 0 {
		_ = r.rdb.Del(ctx, poolKey(pool)).Err()
	}
	return nil
}

func (r *redisRepo) Count(ctx context.Context, pool string) (int64, error) {
	return r.rdb.SCard(ctx, poolKey(pool)).Result()
}
