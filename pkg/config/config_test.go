package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, 8080, GetInt("server.port"))
	assert.Equal(t, ":8080", GetServerAddress())
	assert.Equal(t, 32, GetInt("render.max_depth"))
	assert.Equal(t, 5*time.Second, GetSeconds("preview.timeout"))
	assert.False(t, GetBool("cache.redis.enabled"))
}

func TestGetDSN(t *testing.T) {
	defer Set("database.type", "sqlite")

	Set("database.type", "sqlite")
	assert.Equal(t, "data/blog.db", GetDSN())

	Set("database.type", "postgres")
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=notion_blog sslmode=disable", GetDSN())

	Set("database.type", "oracle")
	assert.Empty(t, GetDSN())
	assert.ErrorIs(t, Validate(), ErrInvalidDatabaseConfig)
}
