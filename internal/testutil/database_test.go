package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDSN(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		envKey string
		env    string
		want   string
	}{
		{name: "postgres default", driver: "postgres", envKey: "TEST_POSTGRES_DSN", want: defaultPostgresTestDSN},
		{
			name:   "postgres from env",
			driver: "postgres",
			envKey: "TEST_POSTGRES_DSN",
			env:    "postgres://u:p@db:5432/x?sslmode=disable",
			want:   "postgres://u:p@db:5432/x?sslmode=disable",
		},
		{name: "mysql default", driver: "mysql", envKey: "TEST_MYSQL_DSN", want: defaultMySQLTestDSN},
		{
			name:   "mysql from env",
			driver: "mysql",
			envKey: "TEST_MYSQL_DSN",
			env:    "u:p@tcp(db:3306)/x?parseTime=true",
			want:   "u:p@tcp(db:3306)/x?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.env)
			assert.Equal(t, tt.want, GetTestDSN(tt.driver))
		})
	}
}

func TestGetMigrationsPath(t *testing.T) {
	t.Run("found from package dir", func(t *testing.T) {
		for _, dbType := range []string{"postgresql", "mysql"} {
			path, err := GetMigrationsPath(dbType)
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(path))
			assert.Equal(t, dbType, filepath.Base(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := GetMigrationsPath("postgresql")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrations directory not found")
	})
}

func TestUUIDToDriverValue(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	value, err := uuidToDriverValue(id, "postgres")
	require.NoError(t, err)
	assert.Equal(t, id, value)

	value, err = uuidToDriverValue(id, "mysql")
	require.NoError(t, err)
	raw, ok := value.([]byte)
	require.True(t, ok)
	assert.Len(t, raw, 16)
	assert.Equal(t, id[:], raw)
}

func TestTeardownDBWithNilDB(t *testing.T) {
	assert.NotPanics(t, func() {
		TeardownDB(t, nil)
	})
}

func TestDatabaseHelpers(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			SkipIfNoDB(t, driver)

			db := SetupDB(t, driver)
			defer TeardownDB(t, db)

			organizationID := uuid.Must(uuid.NewV7())
			secretID := CreateTestSecret(t, db, driver, organizationID, "DB_PASSWORD")
			assert.NotEqual(t, uuid.Nil, secretID)
			assert.Equal(t, 1, CountRows(t, db, "secrets"))

			CleanupDB(t, db, driver)
			assert.Equal(t, 0, CountRows(t, db, "secrets"))
		})
	}
}
