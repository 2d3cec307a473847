package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/config"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(values map[string]string) config.Lookup {
	return func(key string) (string, bool) {
		value, ok := values[key]

		return value, ok
	}
}

func TestLoadConfigStruct_BenchDefaults(t *testing.T) {
	t.Parallel()

	var bench config.Bench

	require.Nil(t, config.LoadConfigStruct(&bench, mapLookup(nil), nil))

	want := config.Bench{
		BitWidthLow:         10,
		BitWidthHigh:        11,
		BatchSize:           190,
		SampleInterval:      10 * time.Millisecond,
		MaxPrimeAttempts:    1 << 20,
		MaxExponentAttempts: 1 << 16,
		LogLevel:            yalogger.InfoLevel,
		Baselines:           []string{},
		Redis: config.Redis{
			ConnectAttempts: 3,
			ConnectBackoff:  200 * time.Millisecond,
		},
	}

	if diff := cmp.Diff(want, bench); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	assert.Nil(t, bench.Validate())
}

func TestLoadConfigStruct_BenchFromKeys(t *testing.T) {
	t.Parallel()

	var bench config.Bench

	err := config.LoadConfigStruct(&bench, mapLookup(map[string]string{
		"BATCH_SIZE":      "64",
		"SAMPLE_INTERVAL": "2ms",
		"LOG_LEVEL":       "debug",
		"BASELINES":       "aes, rsa-oaep",
		"SEED":            "bench-seed",
		"SQLITE_PATH":     "bench.db",
		"REDIS_ADDR":      "localhost:6379",
		"REDIS_DB":        "3",
		"REDIS_TTL":       "1h",
	}), nil)
	require.Nil(t, err)

	assert.Equal(t, 64, bench.BatchSize)
	assert.Equal(t, 2*time.Millisecond, bench.SampleInterval)
	assert.Equal(t, yalogger.DebugLevel, bench.LogLevel)
	assert.Equal(t, []string{"aes", "rsa-oaep"}, bench.Baselines)
	assert.Equal(t, "bench.db", bench.SqlitePath)
	assert.Equal(t, "localhost:6379", bench.Redis.Addr)
	assert.Equal(t, 3, bench.Redis.DB)
	assert.Equal(t, time.Hour, bench.Redis.TTL)

	opts := bench.KeyOpts()
	assert.Equal(t, []byte("bench-seed"), opts.Seed)
	assert.Equal(t, uint(11), opts.BitWidthHigh)
}

func TestLoadConfigStruct_PresetValueWins(t *testing.T) {
	t.Parallel()

	bench := config.Bench{BatchSize: 500}

	require.Nil(t, config.LoadConfigStruct(&bench, mapLookup(nil), nil))
	assert.Equal(t, 500, bench.BatchSize)

	require.Nil(t, config.LoadConfigStruct(&bench, mapLookup(map[string]string{"BATCH_SIZE": "7"}), nil))
	assert.Equal(t, 7, bench.BatchSize)
}

func TestLoadConfigStruct_Errors(t *testing.T) {
	t.Parallel()

	t.Run("[Loader] required", func(t *testing.T) {
		t.Parallel()

		var cfg struct {
			Token string
		}

		err := config.LoadConfigStruct(&cfg, mapLookup(nil), nil)

		assert.ErrorIs(t, err, config.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "TOKEN")
	})

	t.Run("[Loader] invalid value", func(t *testing.T) {
		t.Parallel()

		var bench config.Bench

		err := config.LoadConfigStruct(&bench, mapLookup(map[string]string{"BIT_WIDTH_LOW": "ten"}), nil)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "BIT_WIDTH_LOW")
	})

	t.Run("[Loader] not a struct", func(t *testing.T) {
		t.Parallel()

		value := 5

		err := config.LoadConfigStruct(&value, mapLookup(nil), nil)

		assert.ErrorIs(t, err, config.ErrConfigStructMustBeStruct)
	})
}

func TestBench_Validate(t *testing.T) {
	t.Parallel()

	valid := func() config.Bench {
		return config.Bench{
			BitWidthLow:         10,
			BitWidthHigh:        11,
			BatchSize:           190,
			SampleInterval:      time.Millisecond,
			MaxPrimeAttempts:    1,
			MaxExponentAttempts: 1,
		}
	}

	cases := map[string]func(*config.Bench){
		"[Validate] batch size":   func(b *config.Bench) { b.BatchSize = 0 },
		"[Validate] empty window": func(b *config.Bench) { b.BitWidthLow = 11 },
		"[Validate] too wide":     func(b *config.Bench) { b.BitWidthHigh = 64 },
		"[Validate] interval":     func(b *config.Bench) { b.SampleInterval = 0 },
		"[Validate] workers":      func(b *config.Bench) { b.Workers = -1 },
		"[Validate] ceilings":     func(b *config.Bench) { b.MaxPrimeAttempts = 0 },
	}

	base := valid()
	require.Nil(t, base.Validate())

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bench := valid()
			mutate(&bench)

			assert.ErrorIs(t, bench.Validate(), yaerrors.ErrConfiguration)
		})
	}
}

func TestLoadConfigStructFromEnv_DotEnvAndEnvironment(t *testing.T) {
	dir := t.TempDir()

	dotEnv := "# benchmark settings\n" +
		"export BATCH_SIZE=32\n" +
		"SEED=\"from dotenv\"\n" +
		"\n" +
		"REDIS_ADDR='127.0.0.1:6379'\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DotEnvFile), []byte(dotEnv), 0o600))

	t.Chdir(dir)
	t.Setenv("BATCH_SIZE", "48")

	var bench config.Bench

	require.Nil(t, config.LoadConfigStructFromEnvHandlingError(&bench, nil))

	assert.Equal(t, 48, bench.BatchSize, "environment beats .env")
	assert.Equal(t, "from dotenv", bench.Seed)
	assert.Equal(t, "127.0.0.1:6379", bench.Redis.Addr)
}

func TestLoadConfigStructFromEnv_MalformedDotEnvIsIgnored(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DotEnvFile), []byte("NOT A PAIR\n"), 0o600))

	t.Chdir(dir)

	var bench config.Bench

	require.Nil(t, config.LoadConfigStructFromEnvHandlingError(&bench, nil))
	assert.Equal(t, 190, bench.BatchSize)
}
