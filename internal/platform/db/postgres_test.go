package db

import (
	"testing"
	"time"
)

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := Connect("", PoolSettings{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestPoolSettingsFillDefaults(t *testing.T) {
	got := PoolSettings{}.withDefaults()
	if got != DefaultPoolSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}

	got = PoolSettings{MaxOpenConns: 4, MaxIdleConns: 10, ConnMaxLifetime: time.Minute}.withDefaults()
	want := PoolSettings{MaxOpenConns: 4, MaxIdleConns: 4, ConnMaxLifetime: time.Minute}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
