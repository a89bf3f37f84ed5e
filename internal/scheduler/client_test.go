package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type schedulerConfig struct {
	redisURL string
	queue    string
}

func (c schedulerConfig) GetRedisURL() string          { return c.redisURL }
func (c schedulerConfig) GetRedisTLSInsecure() bool    { return false }
func (c schedulerConfig) GetAsynqQueueName() string    { return c.queue }
func (c schedulerConfig) GetAsynqConcurrency() int     { return 1 }
func (c schedulerConfig) GetFollowUpSweepCron() string { return "@every 1h" }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(schedulerConfig{}); err == nil {
		t.Fatal("expected error without REDIS_URL")
	}
}

func TestClientEnqueuesFollowUpTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(schedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "crm"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := client.EnqueueFollowUpSweep(ctx); err != nil {
		t.Fatalf("EnqueueFollowUpSweep returned error: %v", err)
	}
	tenant := uuid.New()
	if err := client.EnqueueFollowUpTenant(ctx, tenant); err != nil {
		t.Fatalf("EnqueueFollowUpTenant returned error: %v", err)
	}
	// A second fan-out for the same tenant is absorbed by the uniqueness lock.
	if err := client.EnqueueFollowUpTenant(ctx, tenant); err != nil {
		t.Fatalf("duplicate EnqueueFollowUpTenant returned error: %v", err)
	}

	if ok, _ := mr.SIsMember("asynq:queues", "crm"); !ok {
		t.Fatalf("expected queue crm to be registered, keys: %v", mr.Keys())
	}
	pending, err := mr.List("asynq:{crm}:pending")
	if err != nil {
		t.Fatalf("read pending list: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(pending))
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:pw@cache.internal:6380/2", true)
	if err != nil {
		t.Fatalf("redisClientOpt returned error: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "pw" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config for rediss with REDIS_TLS_INSECURE")
	}

	if _, err := redisClientOpt("not a url", false); err == nil {
		t.Fatal("expected parse error")
	}
}
