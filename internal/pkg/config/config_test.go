package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-dashboard/internal/pkg/config"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")

	cfg, err := config.Load(helpers.TestLogger())

	require.NoError(t, err)
	assert.Equal(t, "resell-dashboard", cfg.App.Name)
	assert.Equal(t, "http://localhost:3000/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Dashboard.PageSize)
	assert.Equal(t, "per_item", cfg.Dashboard.BulkPolicy)
	assert.Equal(t, 2, cfg.API.RetryMax)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddress())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("API_BASE_URL", "https://dash.example.com/api/")
	t.Setenv("DASHBOARD_PAGE_SIZE", "10")
	t.Setenv("BULK_DELETE_POLICY", "all_or_nothing")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := config.Load(helpers.TestLogger())

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Dashboard.PageSize)
	assert.Equal(t, "all_or_nothing", cfg.Dashboard.BulkPolicy)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Redis.Enabled)

	u, err := cfg.ResourceURL("/suppliers/")
	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.com/api/suppliers", u.String())
}

func TestLoad_ConfigFile(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard_page_size: 8\nlog_level: debug\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load(helpers.TestLogger())

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Dashboard.PageSize)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{name: "unknown_bulk_policy", env: map[string]string{"BULK_DELETE_POLICY": "sometimes"}, want: config.ErrInvalidConfig},
		{name: "relative_base_url", env: map[string]string{"API_BASE_URL": "/api"}, want: config.ErrInvalidConfig},
		{name: "zero_page_size", env: map[string]string{"DASHBOARD_PAGE_SIZE": "0"}, want: config.ErrInvalidConfig},
		{name: "aws_secrets_without_name", env: map[string]string{"SECRETS_PROVIDER": "aws"}, want: config.ErrMissingRequiredConfig},
		{name: "unknown_storage", env: map[string]string{"STORAGE_PROVIDER": "ftp"}, want: config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("APP_ENV", "test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(helpers.TestLogger())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_Production(t *testing.T) {
	cfg := helpers.LoadTestConfig()
	cfg.App.Environment = "production"

	assert.ErrorContains(t, cfg.Validate(), "https")

	cfg.API.BaseURL = "https://dash.example.com/api"
	assert.NoError(t, cfg.Validate())
}

type fakeSecrets struct {
	calls int
	value string
	err   error
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: aws.String(f.value)}, nil
}

func TestAWSSecretsManager_CachesValues(t *testing.T) {
	fake := &fakeSecrets{value: `{"API_USERNAME":"ops","API_PASSWORD":"s3cret"}`}
	sm := config.NewAWSSecretsManagerWithClient(fake, "dashboard/api", time.Minute, helpers.TestLogger())
	ctx := context.Background()

	pw, err := sm.GetSecret(ctx, config.SecretAPIPassword)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	_, err = sm.GetSecret(ctx, config.SecretAPIUsername)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)

	require.NoError(t, sm.RefreshSecrets(ctx))
	assert.Equal(t, 2, fake.calls)

	_, err = sm.GetSecret(ctx, "MISSING")
	assert.ErrorContains(t, err, "not found")
}

func TestAWSSecretsManager_Errors(t *testing.T) {
	ctx := context.Background()

	sm := config.NewAWSSecretsManagerWithClient(&fakeSecrets{err: errors.New("access denied")}, "x", 0, helpers.TestLogger())
	_, err := sm.GetSecrets(ctx, []string{"A"})
	assert.ErrorContains(t, err, "access denied")

	sm = config.NewAWSSecretsManagerWithClient(&fakeSecrets{value: "not json"}, "x", 0, helpers.TestLogger())
	_, err = sm.GetSecrets(ctx, []string{"A"})
	assert.ErrorContains(t, err, "failed to parse secret JSON")
}

func TestResolveCredentials(t *testing.T) {
	t.Setenv(config.SecretAPIUsername, "env-user")
	t.Setenv(config.SecretAPIPassword, "env-pass")

	cfg := helpers.LoadTestConfig()
	cfg.API.Username = "flag-user"

	require.NoError(t, config.ResolveCredentials(context.Background(), cfg, config.NewEnvSecretsManager()))
	assert.Equal(t, "flag-user", cfg.API.Username)
	assert.Equal(t, "env-pass", cfg.API.Password)
}
