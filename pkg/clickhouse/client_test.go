package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{
			name: "native defaults",
			cfg:  ClientConfig{Host: "localhost", Database: "stockcast"},
			want: "clickhouse://localhost:9000/stockcast",
		},
		{
			name: "http with credentials",
			cfg:  ClientConfig{Host: "ch", UseHTTP: true, Database: "db", User: "app", Password: "p@ss"},
			want: "http://app:p%40ss@ch:8123/db",
		},
		{
			name: "settings",
			cfg: ClientConfig{
				Host:         "ch",
				Port:         9440,
				Database:     "db",
				DialTimeout:  5 * time.Second,
				ReadTimeout:  10 * time.Second,
				MaxExecTime:  30 * time.Second,
				AsyncInsert:  true,
				WaitForAsync: true,
			},
			want: "clickhouse://ch:9440/db?async_insert=1&dial_timeout=5s&max_execution_time=30&read_timeout=10s&wait_for_async_insert=1",
		},
		{
			name: "wait ignored without async",
			cfg:  ClientConfig{Host: "ch", Port: 9000, Database: "db", WaitForAsync: true},
			want: "clickhouse://ch:9000/db",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.cfg))
		})
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(WithDatabase("db"))
	assert.Error(t, err)
}
