package memcbin

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"

	"github.com/arpel/memcbin/evloop"
)

// Defaults for Options fields left zero.
const (
	// DefaultTimeout is the connect timeout and read-idle timeout. A
	// single timer covers both; it is rearmed on every successful read
	// or write and firing it forces a full disconnect.
	DefaultTimeout = 10 * time.Second

	// DefaultBatchBytes is the soft cap on the bytes staged into one
	// scatter-gather write. Chosen to fit comfortably under common
	// path MTU assumptions and avoid excessive buffering latency.
	DefaultBatchBytes = 1300
)

// Options configures a Conn.
type Options struct {
	// Addr is the backend address as an IP literal with port,
	// for example "127.0.0.1:11211". Required.
	Addr string `env:"MEMCBIN_ADDR"`

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration `env:"MEMCBIN_TIMEOUT"`

	// BatchBytes overrides DefaultBatchBytes.
	BatchBytes int `env:"MEMCBIN_BATCH_BYTES"`

	// Logger receives connection lifecycle and protocol violation
	// logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// NewSocket builds the socket for each connection attempt.
	// Defaults to evloop.NewTCPSocket.
	NewSocket func() evloop.Socket
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BatchBytes <= 0 {
		o.BatchBytes = DefaultBatchBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.NewSocket == nil {
		o.NewSocket = func() evloop.Socket { return evloop.NewTCPSocket() }
	}
	return o
}

// OptionsFromEnv loads Options from the process environment, reading a
// .env.local file first when present.
func OptionsFromEnv(ctx context.Context) (*Options, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	opts := Options{}
	if err := envconfig.Process(ctx, &opts); err != nil {
		return nil, err
	}

	return &opts, nil
}
