package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists entries as redis hashes of value and timestamp.
// Writes go through a Lua script so the timestamp check and the update are
// one atomic step; reads and writes are pipelined per call.
type RedisStore[TState any] struct {
	client     redis.UniversalClient
	marshaller marshaller
}

func NewRedisStore[TState any](client redis.UniversalClient) *RedisStore[TState] {
	if client == nil {
		panic("client should not be nil")
	}
	return &RedisStore[TState]{
		client:     client,
		marshaller: jsonMarshaller{},
	}
}

func (r *RedisStore[TState]) Get(ctx context.Context, keys ...string) ([]StateEntry[TState], error) {
	pipe := r.client.Pipeline()

	cmds := make([]*redis.SliceCmd, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, pipe.HMGet(ctx, key, "value", "timestamp"))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	results := make([]StateEntry[TState], 0, len(cmds))
	for _, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil {
			return nil, err
		}
		if values[0] == nil {
			continue
		}

		var envelope stateEnvelope[TState]
		if str, ok := values[0].(string); ok && str != "" {
			if err := r.marshaller.Deserialize(str, &envelope); err != nil {
				return nil, err
			}
		}

		var timestamp *int64
		if str, ok := values[1].(string); ok && str != "" {
			i, err := strconv.ParseInt(str, 10, 64)
			if err != nil {
				return nil, err
			}
			timestamp = &i
		}

		results = append(results, StateEntry[TState]{
			Key:       cmd.Args()[1].(string),
			State:     envelope.V,
			Timestamp: timestamp,
		})
	}

	return results, nil
}

const setStateScript = `
local key = KEYS[1]
local value = ARGV[1]
local expectedTimestamp = ARGV[2]
local expire = tonumber(ARGV[3])
local nextTimestamp = ARGV[4]
local currentTimestamp = redis.call('HGET', key, 'timestamp')

-- A changed timestamp means some other writer got here first
if not currentTimestamp or currentTimestamp == expectedTimestamp then
	if value == "nil" then
		redis.call('DEL', key)
	else
		redis.call('HMSET', key, 'value', value, 'timestamp', nextTimestamp)
		if expire > 0 then
			redis.call('EXPIRE', key, expire)
		end
	end
	return "ok"
else
	return "conflict"
end
`

func (r *RedisStore[TState]) Set(ctx context.Context, entries ...StateEntry[TState]) error {
	pipe := r.client.Pipeline()

	cmds := make([]*redis.Cmd, 0, len(entries))
	for _, entry := range entries {
		stateJson := "nil"
		if entry.State != nil {
			var err error
			stateJson, err = r.marshaller.Serialize(&stateEnvelope[TState]{V: entry.State})
			if err != nil {
				return err
			}
		}

		var currentTimestamp int64 = -1
		if entry.Timestamp != nil {
			currentTimestamp = *entry.Timestamp
		}

		var expiration int64 = -1
		if entry.Expiry != nil {
			expiration = int64(entry.Expiry.Seconds())
		}

		cmds = append(cmds, pipe.Eval(
			ctx,
			setStateScript,
			[]string{entry.Key},
			stateJson,
			currentTimestamp,
			expiration,
			time.Now().UnixNano(),
		))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	conflicts := make([]string, 0)
	for _, cmd := range cmds {
		resp, err := cmd.Result()
		if err != nil {
			return err
		}
		if result, ok := resp.(string); ok && result == "conflict" {
			conflicts = append(conflicts, cmd.Args()[3].(string))
		}
	}

	if len(conflicts) > 0 {
		return &StateStoreConflict{conflicts: conflicts}
	}
	return nil
}
