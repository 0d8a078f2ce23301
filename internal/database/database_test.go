package database

import (
	"testing"

	"pulse/internal/config"
	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDialector_UnknownDriver(t *testing.T) {
	_, err := openDialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnect_SQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBName:   "file::memory:",
		Env:      "test",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "expected table for %T", model)
	}

	user := models.User{ID: "u1", Username: "ada", Points: 50}
	require.NoError(t, db.Create(&user).Error)

	var loaded models.User
	require.NoError(t, db.First(&loaded, "id = ?", "u1").Error)
	assert.Equal(t, "ada", loaded.Username)
	assert.Equal(t, 50, loaded.Points)
}
