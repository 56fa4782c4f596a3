package evloop

import (
	"errors"
	"io"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// TCPSocket is a non-blocking TCP socket backed by raw syscalls, so
// that reads and writes surface would-block conditions to the loop
// instead of parking a goroutine.
type TCPSocket struct {
	fd int
}

func NewTCPSocket() *TCPSocket {
	return &TCPSocket{fd: -1}
}

func (s *TCPSocket) Fd() int { return s.fd }

// Connect opens a non-blocking socket and starts connecting to addr.
// addr must be an IP literal with port ("127.0.0.1:11211"); name
// resolution would block the loop and belongs to the caller.
func (s *TCPSocket) Connect(addr string) error {
	sa, family, err := resolveSockaddr(addr)
	if err != nil {
		return err
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return err
	}

	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return err
	}

	s.fd = fd
	return nil
}

// ConnectCheck reads SO_ERROR to learn the outcome of an in-progress
// connect once the socket reports writable.
func (s *TCPSocket) ConnectCheck() error {
	v, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if v != 0 {
		return unix.Errno(v)
	}
	return nil
}

func (s *TCPSocket) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(s.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, nil
		case err != nil:
			return 0, err
		case n == 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

func (s *TCPSocket) Writev(bufs [][]byte) (int, error) {
	for {
		n, err := unix.Writev(s.fd, bufs)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, nil
		case err != nil:
			return 0, err
		}
		return n, nil
	}
}

func (s *TCPSocket) Close() error {
	if s.fd == -1 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

func resolveSockaddr(addr string) (unix.Sockaddr, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, 0, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, 0, errors.New("evloop: invalid port in address " + addr)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, 0, errors.New("evloop: address must be an IP literal, got " + host)
	}

	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip4)
		return sa, unix.AF_INET, nil
	}

	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], ip.To16())
	return sa, unix.AF_INET6, nil
}
