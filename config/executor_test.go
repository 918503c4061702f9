package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/AnirudhB3000/buildaquery/config"
	"github.com/AnirudhB3000/buildaquery/testutils"
	"github.com/creasty/defaults"
	"github.com/stretchr/testify/require"
)

func TestExecutor(t *testing.T) {
	var defaultRetry config.RetryPolicy
	require.NoError(t, defaults.Set(&defaultRetry), "setting default retry policy")

	var defaultObservability config.ObservabilitySettings
	require.NoError(t, defaults.Set(&defaultObservability), "setting default observability settings")

	executorTests := []testutils.TestCase[config.Executor, testutils.ConfigTestData]{
		{
			Name: "dialect missing",
			Data: testutils.ConfigTestData{
				Yaml: `dialect:`,
			},
			Error: testutils.ErrorContains("dialect missing"),
		},
		{
			Name: "unknown dialect",
			Data: testutils.ConfigTestData{
				Yaml: `
dialect: db2
connection:
  host: localhost`,
				Env: map[string]string{
					"DIALECT":         "db2",
					"CONNECTION_HOST": "localhost",
				},
			},
			Error: testutils.ErrorContains(`unknown dialect "db2"`),
		},
		{
			Name: "oracle has no driver adapter",
			Data: testutils.ConfigTestData{
				Yaml: `
dialect: oracle
connection:
  host: localhost`,
				Env: map[string]string{
					"DIALECT":         "oracle",
					"CONNECTION_HOST": "localhost",
				},
			},
			Error: testutils.ErrorContains("dialect oracle has no driver adapter"),
		},
		{
			Name: "postgres host missing",
			Data: testutils.ConfigTestData{
				Yaml: `dialect: postgres`,
				Env:  map[string]string{"DIALECT": "postgres"},
			},
			Error: testutils.ErrorContains("host missing"),
		},
		{
			Name: "sqlite path missing",
			Data: testutils.ConfigTestData{
				Yaml: `dialect: sqlite`,
				Env:  map[string]string{"DIALECT": "sqlite"},
			},
			Error: testutils.ErrorContains("path must be set for the sqlite dialect"),
		},
		{
			Name: "minimal sqlite config",
			Data: testutils.ConfigTestData{
				Yaml: `
dialect: sqlite
connection:
  path: /tmp/test.db`,
				Env: map[string]string{
					"DIALECT":         "sqlite",
					"CONNECTION_PATH": "/tmp/test.db",
				},
			},
			Expected: config.Executor{
				Dialect: "sqlite",
				Connection: config.ConnectionParams{
					Path:           "/tmp/test.db",
					MaxConnections: 16,
					ConnectTimeout: 5 * time.Minute,
				},
				Retry:         defaultRetry,
				Observability: defaultObservability,
			},
		},
		{
			Name: "event_bus enabled without stream_key",
			Data: testutils.ConfigTestData{
				Yaml: `
dialect: sqlite
connection:
  path: /tmp/test.db
observability:
  event_bus: true
  stream_key: ""`,
				Env: map[string]string{
					"DIALECT":                  "sqlite",
					"CONNECTION_PATH":          "/tmp/test.db",
					"OBSERVABILITY_EVENT_BUS":  "1",
					"OBSERVABILITY_STREAM_KEY": "",
				},
			},
			Error: testutils.ErrorContains("stream_key must be set when event_bus is enabled"),
		},
		{
			Name: "retry policy customized",
			Data: testutils.ConfigTestData{
				Yaml: `
dialect: postgres
connection:
  host: localhost
retry:
  max_attempts: 5
  base_delay: 50ms
  max_delay: 10s
  backoff_multiplier: 1.5`,
				Env: map[string]string{
					"DIALECT":                  "postgres",
					"CONNECTION_HOST":           "localhost",
					"RETRY_MAX_ATTEMPTS":        "5",
					"RETRY_BASE_DELAY":          "50ms",
					"RETRY_MAX_DELAY":           "10s",
					"RETRY_BACKOFF_MULTIPLIER":  "1.5",
				},
			},
			Expected: config.Executor{
				Dialect: "postgres",
				Connection: config.ConnectionParams{
					Host:           "localhost",
					MaxConnections: 16,
					ConnectTimeout: 5 * time.Minute,
				},
				Retry: config.RetryPolicy{
					MaxAttempts:       5,
					BaseDelay:         50 * time.Millisecond,
					MaxDelay:          10 * time.Second,
					BackoffMultiplier: 1.5,
				},
				Observability: defaultObservability,
			},
		},
	}

	t.Run("FromEnv", func(t *testing.T) {
		for _, tc := range executorTests {
			t.Run(tc.Name, tc.F(func(data testutils.ConfigTestData) (config.Executor, error) {
				var actual config.Executor

				err := config.FromEnv(&actual, config.EnvOptions{Environment: data.Env})

				return actual, err
			}))
		}
	})

	t.Run("FromYAMLFile", func(t *testing.T) {
		for _, tc := range executorTests {
			t.Run(tc.Name+"/FromYAMLFile", tc.F(func(data testutils.ConfigTestData) (config.Executor, error) {
				var actual config.Executor

				var err error
				testutils.WithYAMLFile(t, data.Yaml, func(file *os.File) {
					err = config.FromYAMLFile(file.Name(), &actual)
				})

				return actual, err
			}))
		}
	})
}
