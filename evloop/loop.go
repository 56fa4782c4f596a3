package evloop

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var ErrLoopClosed = errors.New("evloop: loop closed")

// Loop is a single-threaded epoll reactor. All handler callbacks and
// all Registration method calls happen on the goroutine running Run;
// other goroutines interact with the loop only through Submit.
type Loop struct {
	epfd   int
	wakefd int

	mu    sync.Mutex
	tasks []func()

	// loop-goroutine state
	regs    map[int]*registration
	stopped bool
}

func NewLoop() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, err
	}

	return &Loop{
		epfd:   epfd,
		wakefd: wakefd,
		regs:   make(map[int]*registration),
	}, nil
}

// Submit schedules fn to run on the loop goroutine and wakes the loop.
// It is the only Loop method safe to call from other goroutines.
func (l *Loop) Submit(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.wake()
}

// Stop makes Run return after the current iteration.
func (l *Loop) Stop() {
	l.Submit(func() { l.stopped = true })
}

func (l *Loop) wake() {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], 1)
	unix.Write(l.wakefd, b[:])
}

func (l *Loop) drainWake() {
	var b [8]byte
	for {
		_, err := unix.Read(l.wakefd, b[:])
		if err != nil {
			return
		}
	}
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
}

// Register adds s to the loop with no readiness interest; the caller
// enables read or write on the returned Registration.
func (l *Loop) Register(s Socket, h Handler) (Registration, error) {
	fd := s.Fd()
	ev := unix.EpollEvent{Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return nil, err
	}

	r := &registration{loop: l, fd: fd, h: h}
	l.regs[fd] = r
	return r, nil
}

// Run dispatches events until Stop is called. It must not be called
// concurrently with itself.
func (l *Loop) Run() error {
	events := make([]unix.EpollEvent, 64)

	for !l.stopped {
		n, err := unix.EpollWait(l.epfd, events, l.nextTimeoutMillis())
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)

			if fd == l.wakefd {
				l.drainWake()
				continue
			}

			reg := l.regs[fd]
			if reg == nil {
				continue
			}
			if ev.Events&(unix.EPOLLOUT|unix.EPOLLERR) != 0 {
				reg.h.OnWritable()
			}
			// The handler may have deregistered itself.
			if l.regs[fd] != reg {
				continue
			}
			if ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
				reg.h.OnReadable()
			}
		}

		l.fireTimers(time.Now())
		l.runTasks()
	}

	return nil
}

// Close releases the loop's descriptors. Call after Run has returned.
func (l *Loop) Close() error {
	if err := unix.Close(l.wakefd); err != nil {
		return err
	}
	return unix.Close(l.epfd)
}

// nextTimeoutMillis returns the epoll timeout until the nearest armed
// timer, or -1 to block indefinitely. The handful of registrations a
// proxy keeps per loop makes a linear scan cheaper than a heap.
func (l *Loop) nextTimeoutMillis() int {
	var nearest time.Time
	for _, r := range l.regs {
		if r.deadline.IsZero() {
			continue
		}
		if nearest.IsZero() || r.deadline.Before(nearest) {
			nearest = r.deadline
		}
	}
	if nearest.IsZero() {
		return -1
	}

	ms := int(time.Until(nearest) / time.Millisecond)
	if ms < 0 {
		return 0
	}
	return ms + 1
}

func (l *Loop) fireTimers(now time.Time) {
	var due []*registration
	for _, r := range l.regs {
		if !r.deadline.IsZero() && !r.deadline.After(now) {
			due = append(due, r)
		}
	}

	for _, r := range due {
		if l.regs[r.fd] != r {
			continue // deregistered by an earlier timer callback
		}
		r.deadline = time.Time{}
		r.h.OnTimeout()
	}
}

type registration struct {
	loop *Loop
	fd   int
	h    Handler

	wantRead  bool
	wantWrite bool
	deadline  time.Time
	dead      bool
}

func (r *registration) EnableRead(on bool) {
	if r.dead || r.wantRead == on {
		return
	}
	r.wantRead = on
	r.update()
}

func (r *registration) EnableWrite(on bool) {
	if r.dead || r.wantWrite == on {
		return
	}
	r.wantWrite = on
	r.update()
}

func (r *registration) update() {
	var events uint32
	if r.wantRead {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if r.wantWrite {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(r.fd)}
	unix.EpollCtl(r.loop.epfd, unix.EPOLL_CTL_MOD, r.fd, &ev)
}

func (r *registration) RearmTimer(d time.Duration) {
	if r.dead {
		return
	}
	r.deadline = time.Now().Add(d)
}

func (r *registration) StopTimer() {
	r.deadline = time.Time{}
}

func (r *registration) Deregister() {
	if r.dead {
		return
	}
	r.dead = true
	r.deadline = time.Time{}
	delete(r.loop.regs, r.fd)
	unix.EpollCtl(r.loop.epfd, unix.EPOLL_CTL_DEL, r.fd, nil)
}
