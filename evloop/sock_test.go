package evloop

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestResolveSockaddr(t *testing.T) {
	t.Run("ipv4", func(t *testing.T) {
		sa, family, err := resolveSockaddr("127.0.0.1:11211")
		require.NoError(t, err)
		assert.Equal(t, unix.AF_INET, family)

		sa4, ok := sa.(*unix.SockaddrInet4)
		require.True(t, ok)
		assert.Equal(t, 11211, sa4.Port)
		assert.Equal(t, [4]byte{127, 0, 0, 1}, sa4.Addr)
	})

	t.Run("ipv6", func(t *testing.T) {
		sa, family, err := resolveSockaddr("[::1]:9090")
		require.NoError(t, err)
		assert.Equal(t, unix.AF_INET6, family)

		sa6, ok := sa.(*unix.SockaddrInet6)
		require.True(t, ok)
		assert.Equal(t, 9090, sa6.Port)
	})

	t.Run("hostname rejected", func(t *testing.T) {
		_, _, err := resolveSockaddr("localhost:11211")
		assert.Error(t, err)
	})

	t.Run("missing port", func(t *testing.T) {
		_, _, err := resolveSockaddr("127.0.0.1")
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		_, _, err := resolveSockaddr("127.0.0.1:notaport")
		assert.Error(t, err)

		_, _, err = resolveSockaddr("127.0.0.1:70000")
		assert.Error(t, err)
	})
}

func TestTCPSocketReadWrite(t *testing.T) {
	sock, peer := socketPair(t)

	n, err := sock.Writev([][]byte{[]byte("hello "), []byte("world")})
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	buf := make([]byte, 64)
	rn, err := unix.Read(peer, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), buf[:rn])

	_, err = unix.Write(peer, []byte("pong"))
	require.NoError(t, err)

	rn, err = sock.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), buf[:rn])
}

func TestTCPSocketReadWouldBlock(t *testing.T) {
	sock, _ := socketPair(t)

	n, err := sock.Read(make([]byte, 16))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTCPSocketReadEOF(t *testing.T) {
	sock, peer := socketPair(t)
	require.NoError(t, unix.Close(peer))

	// The cleanup closes peer again; harmless for the assertion here.
	_, err := sock.Read(make([]byte, 16))
	assert.ErrorIs(t, err, io.EOF)
}

func TestTCPSocketCloseIdempotent(t *testing.T) {
	s := NewTCPSocket()
	assert.Equal(t, -1, s.Fd())
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestTCPSocketConnectRejectsHostname(t *testing.T) {
	s := NewTCPSocket()
	err := s.Connect("cache.internal:11211")
	assert.Error(t, err)
	assert.Equal(t, -1, s.Fd())
}
