// Package storage provides optional sinks and caches for pipeline runs: a
// Cassandra table of per-sentence probability rows and a Redis cache of
// out-of-sample predictions. The pipeline runs fine without either service.
package storage

import (
	"os"
	"strings"
)

// CassandraConfig holds Cassandra connection settings.
type CassandraConfig struct {
	Hosts    []string
	Keyspace string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host string
	Port string
}

// LoadCassandraConfig reads Cassandra settings from environment variables.
func LoadCassandraConfig() *CassandraConfig {
	hostsEnv := os.Getenv("CASSANDRA_HOSTS")
	var hosts []string
	if hostsEnv == "" {
		hosts = []string{"localhost"}
	} else {
		hosts = strings.Split(hostsEnv, ",")
	}

	keyspace := os.Getenv("CASSANDRA_KEYSPACE")
	if keyspace == "" {
		keyspace = "pred_probs_db"
	}

	return &CassandraConfig{
		Hosts:    hosts,
		Keyspace: keyspace,
	}
}

// LoadRedisConfig reads Redis settings from environment variables.
func LoadRedisConfig() *RedisConfig {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	return &RedisConfig{Host: host, Port: port}
}
