package juju

import (
	"time"

	jujuclock "github.com/juju/clock"
	jujumutex "github.com/juju/mutex"

	"kgeyst.com/iris/pkg/iris/domain"
)

// NamedMutexAcquirer is backed by an OS-wide mutex, so that two processes (say, the web server and the console)
// never grab frames from the same capture device at once.
type NamedMutexAcquirer struct {
	clock jujuclock.Clock
	delay time.Duration
}

type namedMutex struct {
	releaser jujumutex.Releaser
}

func NewNamedMutexAcquirer() *NamedMutexAcquirer {
	return &NamedMutexAcquirer{
		clock: jujuclock.WallClock,
		delay: 50 * time.Millisecond,
	}
}

func (n *NamedMutexAcquirer) AcquireNamedMutex(name string, timeout time.Duration) (domain.NamedMutex, error) {
	jujuReleaser, err := jujumutex.Acquire(jujumutex.Spec{
		Name:    name,
		Clock:   n.clock,
		Delay:   n.delay,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return &namedMutex{
		releaser: jujuReleaser,
	}, nil
}

func (n *namedMutex) Release() {
	n.releaser.Release()
}
