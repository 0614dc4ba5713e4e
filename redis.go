package main

import (
	"net/url"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

const redisDialTimeout = 5 * time.Second

func dialRedis(rawURL string) (redis.Conn, error) {
	conn, err := redis.DialURL(rawURL, redis.DialConnectTimeout(redisDialTimeout))
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", redactURL(rawURL))
	}
	return conn, nil
}

// splitListURL splits "redis://host:port/db#key" into the server URL and
// the list key.
func splitListURL(raw string) (server, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", errors.Wrap(err, "parse redis url")
	}
	if u.Fragment == "" {
		return "", "", errors.Errorf("redis url %s has no #listkey", redactURL(raw))
	}
	key = u.Fragment
	u.Fragment, u.RawFragment = "", ""
	return u.String(), key, nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func isRedisURL(s string) bool {
	return strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

// readList returns every element of the list at key.
func readList(conn redis.Conn, key string) ([]string, error) {
	values, err := redis.Strings(conn.Do("LRANGE", key, 0, -1))
	if err != nil {
		return nil, errors.Wrapf(err, "LRANGE %s", key)
	}
	return values, nil
}

// popJob blocks up to timeout seconds on BRPOP. ok is false on timeout.
func popJob(conn redis.Conn, queue string, timeout int) (payload string, ok bool, err error) {
	reply, err := redis.Strings(conn.Do("BRPOP", queue, timeout))
	if errors.Is(err, redis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "BRPOP %s", queue)
	}
	if len(reply) != 2 {
		return "", false, errors.Errorf("unexpected BRPOP reply of %d elements", len(reply))
	}
	return reply[1], true, nil
}
