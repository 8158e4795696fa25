package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/apex/log"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
)

const (
	// ConfigKeyCameras the capture devices (e.g. "/dev/video0"); image files are accepted as well, which is handy
	// for demos and tests
	ConfigKeyCameras = "cameras"
	// ConfigKeyBinary the path to ffmpeg
	ConfigKeyBinary = "ffmpegBinary"
	// ConfigKeyInputFormat ffmpeg's input format; depends on the OS
	ConfigKeyInputFormat = "ffmpegInputFormat"
	// ConfigKeyCaptureTimeout the deadline (in milliseconds) of a single snapshot
	ConfigKeyCaptureTimeout = "captureTimeout"
)

const (
	DefaultBinary         = "ffmpeg"
	DefaultCaptureTimeout = 5 * time.Second
	deviceMutexTimeout    = 2 * time.Second
)

var DefaultCameras = []string{"/dev/video0"}

// Camera grabs single frames from the active capture device by running ffmpeg. Switching cameras only changes which
// device the next snapshot comes from.
type Camera struct {
	mutex              sync.Mutex
	devices            []string
	active             int
	binary             string
	inputFormat        string
	captureTimeout     time.Duration
	namedMutexAcquirer domain.NamedMutexAcquirer
	logger             log.Interface
}

func NewCamera(namedMutexAcquirer domain.NamedMutexAcquirer, config *common.Config, logger log.Interface) *Camera {
	return &Camera{
		devices:            config.GetStringSliceOrDefault(ConfigKeyCameras, DefaultCameras),
		binary:             config.GetStringOrDefault(ConfigKeyBinary, DefaultBinary),
		inputFormat:        config.GetStringOrDefault(ConfigKeyInputFormat, defaultInputFormat()),
		captureTimeout:     config.GetDurationOrDefault(ConfigKeyCaptureTimeout, DefaultCaptureTimeout),
		namedMutexAcquirer: namedMutexAcquirer,
		logger:             logger,
	}
}

func (c *Camera) Cameras() []string {
	return append([]string(nil), c.devices...)
}

func (c *Camera) ActiveCamera() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.active
}

func (c *Camera) SwitchCamera(index int) error {
	if index < 0 || index >= len(c.devices) {
		return fmt.Errorf("%w: index %d (%d cameras available)", domain.ErrNoSuchCamera, index, len(c.devices))
	}
	c.mutex.Lock()
	c.active = index
	c.mutex.Unlock()
	c.logger.WithField("device", c.devices[index]).Info("switched camera")
	return nil
}

// CaptureFrame is best-effort: any problem is logged and reported as "nothing to see".
func (c *Camera) CaptureFrame() (domain.Frame, bool) {
	c.mutex.Lock()
	device := c.devices[c.active]
	c.mutex.Unlock()
	logger := c.logger.WithField("device", device)
	frame, err := c.capture(device)
	if err != nil {
		logger.WithError(err).Warn("failed to capture a frame")
		return domain.Frame{}, false
	}
	if !hasDimensions(frame.Data) {
		logger.Warn("the device produced an empty frame")
		return domain.Frame{}, false
	}
	return frame, true
}

func (c *Camera) capture(device string) (domain.Frame, error) {
	if common.IsImageFormat(device) {
		data, err := os.ReadFile(device)
		if err != nil {
			return domain.Frame{}, err
		}
		return domain.Frame{Data: data, MIMEType: common.ImageMIMEType(device)}, nil
	}
	deviceMutex, err := c.namedMutexAcquirer.AcquireNamedMutex(mutexName(c.devices, device), deviceMutexTimeout)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("device is busy: %w", err)
	}
	defer deviceMutex.Release()
	ctx, cancel := context.WithTimeout(context.Background(), c.captureTimeout)
	defer cancel()
	cmd := buildExecCommand(ctx, c.binary, c.inputFormat, device)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return domain.Frame{Data: out.Bytes(), MIMEType: "image/jpeg"}, nil
}

func buildExecCommand(ctx context.Context, binary, inputFormat, device string) *exec.Cmd {
	return exec.CommandContext(
		ctx,
		binary,
		"-hide_banner",
		"-loglevel", "error",
		"-f", inputFormat,
		"-i", device,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
}

func defaultInputFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "v4l2"
	}
}

// Names must be valid juju mutex names: lowercase letters, digits, dots and dashes.
func mutexName(devices []string, device string) string {
	for index, d := range devices {
		if d == device {
			return fmt.Sprintf("iris-camera-%d", index)
		}
	}
	return "iris-camera"
}

func hasDimensions(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false
	}
	return config.Width > 0 && config.Height > 0
}
