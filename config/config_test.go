package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var c Config
	c.Server.HTTPPort = "8080"
	c.Storage.Driver = StorageMemory
	c.Auth.Users = []UserConfig{{Name: "user", PasswordHash: "$2a$10$hash", Roles: []string{"USER"}}}
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"PostgresDriver", func(c *Config) { c.Storage.Driver = StoragePostgres }, false},
		{"UnknownDriver", func(c *Config) { c.Storage.Driver = "h2" }, true},
		{"MissingPort", func(c *Config) { c.Server.HTTPPort = "" }, true},
		{"UserWithoutName", func(c *Config) { c.Auth.Users[0].Name = "" }, true},
		{"UserWithoutHash", func(c *Config) { c.Auth.Users[0].PasswordHash = "" }, true},
		{"NoUsers", func(c *Config) { c.Auth.Users = nil }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateDefaultsDriver(t *testing.T) {
	c := validConfig()
	c.Storage.Driver = ""
	require.NoError(t, c.Validate())
	assert.Equal(t, StoragePostgres, c.Storage.Driver)
}

func TestInitConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.HTTPPort)
		assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
		assert.Equal(t, "owtChallenge", cfg.JWT.Issuer)
		assert.Equal(t, 10*time.Hour, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, 5*time.Minute, cfg.Auth.CredentialTTL)
		require.Len(t, cfg.Auth.Users, 2)
		assert.Equal(t, []string{"USER"}, cfg.Auth.Users[0].Roles)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("JWT_SECRETKEY", "from-the-environment-0123456789abcdef")
		t.Setenv("STORAGE_DRIVER", StorageMemory)
		t.Setenv("SERVER_HTTPPORT", "9999")

		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "from-the-environment-0123456789abcdef", cfg.JWT.SecretKey)
		assert.Equal(t, StorageMemory, cfg.Storage.Driver)
		assert.Equal(t, "9999", cfg.Server.HTTPPort)
	})

	t.Run("BadDriverFromEnv", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")

		_, err := InitConfig()
		assert.Error(t, err)
	})
}

func TestDecodeRejectsUnusedKeys(t *testing.T) {
	load := func(t *testing.T, extra string) *viper.Viper {
		t.Helper()
		v := viper.New()
		v.SetConfigType("yml")
		require.NoError(t, v.ReadConfig(bytes.NewReader(append(append([]byte{}, embeddedConfig...), extra...))))
		return v
	}

	t.Run("EmbeddedConfigIsExact", func(t *testing.T) {
		_, err := decode(load(t, ""))
		assert.NoError(t, err)
	})

	t.Run("StrayKey", func(t *testing.T) {
		_, err := decode(load(t, "\ndotenv: .env\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dotenv")
	})
}
