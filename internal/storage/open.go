package storage

import "fmt"

// Options selects and configures a KV backend
type Options struct {
	Backend       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open creates the KV backend named by opts.Backend: memory, redis or
// postgres.
func Open(opts Options) (KV, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryKV(), nil
	case "redis":
		return NewRedisKV(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "postgres":
		return NewPostgresKV(opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}
