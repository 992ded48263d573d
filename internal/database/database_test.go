package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/killallgit/guidepack/internal/models"
	"github.com/killallgit/guidepack/pkg/config"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{"in-memory database", ":memory:"},
		{"file database", filepath.Join(t.TempDir(), "test.db")},
		{"nested directory is created", filepath.Join(t.TempDir(), "data", "jobs.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.dbPath, false)
			require.NoError(t, err)
			require.NotNil(t, conn.DB)
			defer conn.Close()

			assert.NoError(t, conn.HealthCheck())
		})
	}
}

func TestDB_HealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		setupConn func() *DB
		wantErr   bool
	}{
		{
			name: "healthy connection",
			setupConn: func() *DB {
				conn, _ := Initialize(":memory:", false)
				t.Cleanup(func() { conn.Close() })
				return conn
			},
		},
		{
			name: "closed connection",
			setupConn: func() *DB {
				conn, _ := Initialize(":memory:", false)
				conn.Close()
				return conn
			},
			wantErr: true,
		},
		{
			name:      "nil connection",
			setupConn: func() *DB { return nil },
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setupConn().HealthCheck()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDB_AutoMigrate(t *testing.T) {
	type TestModel struct {
		gorm.Model
		Name string
	}

	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.AutoMigrate(&TestModel{}))

	var count int64
	err = conn.DB.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='test_models'").Scan(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, conn.AutoMigrate(), "no models is a no-op")
}

func TestMigrateCreatesJobTable(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Migrate())

	job := models.Job{
		Type:    models.JobTypeRender,
		Status:  models.JobStatusPending,
		Payload: models.JobPayload{models.PayloadGuidepackID: "8f14e45f-ceea-4e67-a8b9-0d9a1c4e7a11"},
	}
	require.NoError(t, conn.DB.Create(&job).Error)

	var loaded models.Job
	require.NoError(t, conn.DB.First(&loaded, job.ID).Error)
	id, ok := loaded.GetPayloadString(models.PayloadGuidepackID)
	assert.True(t, ok)
	assert.Equal(t, "8f14e45f-ceea-4e67-a8b9-0d9a1c4e7a11", id)
}

func TestOpen(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Open(&config.Config{})
		assert.EqualError(t, err, "database path is not configured")
	})

	t.Run("file database is migrated", func(t *testing.T) {
		cfg := &config.Config{Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "jobs.db")}}
		conn, err := Open(cfg)
		require.NoError(t, err)
		defer conn.Close()

		assert.True(t, conn.DB.Migrator().HasTable(&models.Job{}))
	})
}
