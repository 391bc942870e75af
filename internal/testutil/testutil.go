// Package testutil provides shared helpers for portal tests: Redis setup,
// fixed clocks and ready-made sessions.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
)

// envBool parses common truthy values from env vars.
func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// FixedTimeFunc returns a function that always returns the same time.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// AdminUser returns a backend admin principal.
func AdminUser() domainauth.User {
	return domainauth.User{
		ID:        "1",
		Username:  "admin",
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     "admin@example.com",
		Role:      domainauth.RoleAdmin,
		UserType:  domainauth.UserTypeAdmin,
	}
}

// VolunteerUser returns a backend volunteer principal.
func VolunteerUser() domainauth.User {
	return domainauth.User{
		ID:         "42",
		Username:   "vera",
		FirstName:  "Vera",
		LastName:   "Volunteer",
		Email:      "vera@example.com",
		Role:       domainauth.RoleVolunteer,
		UserType:   domainauth.UserTypeVolunteer,
		TotalHours: 12.5,
	}
}

// NewSession builds a session for user that expires ttl after now.
func NewSession(id string, user domainauth.User, now time.Time, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		Token:     "token-" + id,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Redis

const (
	redisDialTimeout = 2 * time.Second
	// Test databases are leased from this range; DB 0 only holds the leases.
	firstTestDB = 1
	lastTestDB  = 15
	leaseTTL    = 30 * time.Minute
)

// redisCandidates lists where a test Redis may be listening, most specific first.
func redisCandidates() []string {
	var out []string
	for _, key := range []string{"TEST_REDIS_ADDR", "REDIS_ADDR"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			out = append(out, v)
		}
	}
	return append(out, "localhost:6379", "redis:6379", "localhost:56379")
}

// GetTestRedisAddr returns the first candidate address that answers PING.
func GetTestRedisAddr(t testing.TB) (string, bool) {
	t.Helper()
	for _, addr := range redisCandidates() {
		if err := pingRedis(addr); err != nil {
			t.Logf("redis not reachable at %s: %v", addr, err)
			continue
		}
		return addr, true
	}
	return "", false
}

func pingRedis(addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}

// leaseTestDB reserves a database index so concurrently running test
// packages never flush each other's keys. TEST_REDIS_DB pins the index.
func leaseTestDB(t testing.TB, addr string) int {
	t.Helper()
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil && db >= 0 {
			return db
		}
		t.Logf("ignoring invalid TEST_REDIS_DB=%q", v)
	}

	leases := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	t.Cleanup(func() { _ = leases.Close() })

	owner := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
	for db := firstTestDB; db <= lastTestDB; db++ {
		key := fmt.Sprintf("vms-portal:test-lease:%d", db)
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		won, err := leases.SetNX(ctx, key, owner, leaseTTL).Result()
		cancel()
		if err != nil || !won {
			continue
		}
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
			defer cancel()
			if err := leases.Del(ctx, key).Err(); err != nil {
				t.Logf("release redis lease %s: %v", key, err)
			}
		})
		return db
	}
	t.Logf("no free redis test db at %s; sharing DB %d", addr, firstTestDB)
	return firstTestDB
}

// SetupTestRedis returns a client on an empty, leased database. The test is
// skipped when no Redis answers, or fails if TEST_REQUIRE_REDIS is set.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr, ok := GetTestRedisAddr(t)
	if !ok {
		if requireRedis() {
			t.Fatal("Redis not available for testing")
		}
		t.Skip("Redis not available for testing")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: leaseTestDB(t, addr)})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("flush redis test db at %s: %v", addr, err)
	}
	return client
}
