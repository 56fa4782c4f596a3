package memcbin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{Addr: testAddr}.withDefaults()

	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultBatchBytes, opts.BatchBytes)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.NewSocket)
}

func TestOptionsWithDefaultsKeepsOverrides(t *testing.T) {
	opts := Options{
		Addr:       testAddr,
		Timeout:    250 * time.Millisecond,
		BatchBytes: 64,
	}.withDefaults()

	assert.Equal(t, 250*time.Millisecond, opts.Timeout)
	assert.Equal(t, 64, opts.BatchBytes)
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("MEMCBIN_ADDR", "127.0.0.1:11211")
	t.Setenv("MEMCBIN_TIMEOUT", "750ms")
	t.Setenv("MEMCBIN_BATCH_BYTES", "2048")

	opts, err := OptionsFromEnv(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:11211", opts.Addr)
	assert.Equal(t, 750*time.Millisecond, opts.Timeout)
	assert.Equal(t, 2048, opts.BatchBytes)
}

func TestOptionsFromEnvEmpty(t *testing.T) {
	t.Setenv("MEMCBIN_ADDR", "")
	t.Setenv("MEMCBIN_TIMEOUT", "")
	t.Setenv("MEMCBIN_BATCH_BYTES", "")

	opts, err := OptionsFromEnv(context.Background())
	require.NoError(t, err)

	opts2 := opts.withDefaults()
	assert.Equal(t, DefaultTimeout, opts2.Timeout)
	assert.Equal(t, DefaultBatchBytes, opts2.BatchBytes)
}
