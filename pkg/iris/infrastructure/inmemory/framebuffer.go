package inmemory

import (
	"sync"
	"time"

	"kgeyst.com/iris/pkg/iris/domain"
)

// FrameBuffer is a frame source for cameras which live elsewhere (for example, in a browser): the client pushes
// frames and a snapshot returns the latest one. Frames older than `maxAge` are considered stale, so that a
// disconnected client doesn't get an old scene described as if it were current.
type FrameBuffer struct {
	mutex      sync.Mutex
	frame      domain.Frame
	receivedAt time.Time
	maxAge     time.Duration
	now        func() time.Time
}

func NewFrameBuffer(maxAge time.Duration) *FrameBuffer {
	return &FrameBuffer{
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (f *FrameBuffer) PushFrame(frame domain.Frame) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.frame = frame
	f.receivedAt = f.now()
	return nil
}

func (f *FrameBuffer) CaptureFrame() (domain.Frame, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.frame.Data) == 0 {
		return domain.Frame{}, false
	}
	if f.maxAge > 0 && f.now().Sub(f.receivedAt) > f.maxAge {
		return domain.Frame{}, false
	}
	return f.frame, true
}

// Cameras the client owns the device, there's nothing to choose from here.
func (f *FrameBuffer) Cameras() []string {
	return []string{"remote"}
}

func (f *FrameBuffer) ActiveCamera() int {
	return 0
}

func (f *FrameBuffer) SwitchCamera(index int) error {
	if index != 0 {
		return domain.ErrNoSuchCamera
	}
	return nil
}
