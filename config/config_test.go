package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("AGENCYOPS_TEST_INT", "42")
	t.Setenv("AGENCYOPS_TEST_BAD_INT", "forty-two")
	t.Setenv("AGENCYOPS_TEST_BOOL", "true")
	t.Setenv("AGENCYOPS_TEST_DURATION", "90s")
	t.Setenv("AGENCYOPS_TEST_LIST", " http://a.test , ,http://b.test")

	assert.Equal(t, "fallback", getEnv("AGENCYOPS_TEST_MISSING", "fallback"))
	assert.Equal(t, 42, getEnvAsInt("AGENCYOPS_TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("AGENCYOPS_TEST_BAD_INT", 1))
	assert.True(t, getEnvAsBool("AGENCYOPS_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, getEnvAsDuration("AGENCYOPS_TEST_DURATION", time.Minute))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getEnvAsList("AGENCYOPS_TEST_LIST", nil))
}

func TestLoadConfigDefaults(t *testing.T) {
	previous := AppConfig
	t.Cleanup(func() { AppConfig = previous })
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TASK_DUE_DAYS", "")

	require.NoError(t, LoadConfig())
	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, 7, AppConfig.TaskDueDays)
	assert.Equal(t, 24*time.Hour, AppConfig.JWTExpiry)
	assert.False(t, AppConfig.Redis.Enabled)
}

func TestValidate(t *testing.T) {
	valid := Config{DBDriver: "postgres", DBPassword: "pw", JWTSecret: "secret", TaskDueDays: 7}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing db password", func(c *Config) { c.DBPassword = "" }, "DB_PASSWORD is required"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, `unsupported DB_DRIVER "mysql"`},
		{"sqlite without path", func(c *Config) { c.DBDriver = "sqlite" }, "SQLITE_PATH is required when DB_DRIVER=sqlite"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short production secret", func(c *Config) { c.Environment = "production" }, "JWT_SECRET must be at least 32 characters in production"},
		{"zero due days", func(c *Config) { c.TaskDueDays = 0 }, "TASK_DUE_DAYS must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "host=db password=***** dbname=x", maskPassword("host=db password=hunter2 dbname=x"))
	assert.Equal(t, "host=db password=*****", maskPassword("host=db password=hunter2"))
	assert.Equal(t, "host=db", maskPassword("host=db"))
}
