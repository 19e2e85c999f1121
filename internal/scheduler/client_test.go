package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"leadnest/platform/logger"

	"github.com/google/uuid"
)

func TestRedisOptionsTLS(t *testing.T) {
	opt, err := RedisOptions("redis://:secret@localhost:6379/2", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.Addr != "localhost:6379" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatal("expected no TLS for redis://")
	}

	opt, err = RedisOptions("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS for rediss:// with insecure flag")
	}
}

func TestRedisOptionsRejectsBadURL(t *testing.T) {
	if _, err := RedisOptions("http://localhost", false); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}

func TestNilClientScheduleIsNoop(t *testing.T) {
	var c *Client
	if err := c.ScheduleEventReminder(context.Background(), uuid.New(), uuid.New(), time.Time{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type purgerStub struct {
	deleted int64
	err     error
}

func (p purgerStub) PurgeResetTokens(context.Context) (int64, error) { return p.deleted, p.err }

func TestResetTokenCleanupPropagatesErrors(t *testing.T) {
	log := logger.NewWithWriter("test", io.Discard)

	if err := NewResetTokenCleanup(purgerStub{deleted: 3}, log).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	boom := errors.New("boom")
	if err := NewResetTokenCleanup(purgerStub{err: boom}, log).Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
