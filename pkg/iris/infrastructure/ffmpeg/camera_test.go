package ffmpeg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
)

type failingAcquirer struct {
	names []string
}

func (f *failingAcquirer) AcquireNamedMutex(name string, _ time.Duration) (domain.NamedMutex, error) {
	f.names = append(f.names, name)
	return nil, errors.New("timed out")
}

func writeTestPNG(t *testing.T, path string, width int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, img))
	require.NoError(t, os.WriteFile(path, buffer.Bytes(), 0600))
	return buffer.Bytes()
}

func newTestCamera(acquirer domain.NamedMutexAcquirer, devices ...any) *Camera {
	return NewCamera(acquirer, common.NewConfig(map[string]any{ConfigKeyCameras: devices}), common.NewDiscardLogger())
}

func TestCamera_CapturesImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.png")
	data := writeTestPNG(t, path, 4)

	frame, ok := newTestCamera(&failingAcquirer{}, path).CaptureFrame()

	require.True(t, ok)
	assert.Equal(t, domain.Frame{Data: data, MIMEType: "image/png"}, frame)
}

func TestCamera_EmptyImageIsNothingToSee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0600))

	_, ok := newTestCamera(&failingAcquirer{}, path).CaptureFrame()

	assert.False(t, ok)
}

func TestCamera_BusyDeviceIsNothingToSee(t *testing.T) {
	acquirer := &failingAcquirer{}

	_, ok := newTestCamera(acquirer, "/dev/video0", "/dev/video1").CaptureFrame()

	assert.False(t, ok)
	assert.Equal(t, []string{"iris-camera-0"}, acquirer.names)
}

func TestCamera_SwitchCamera(t *testing.T) {
	dir := t.TempDir()
	front := filepath.Join(dir, "front.png")
	back := filepath.Join(dir, "back.png")
	writeTestPNG(t, front, 4)
	backData := writeTestPNG(t, back, 8)
	camera := newTestCamera(&failingAcquirer{}, front, back)

	require.NoError(t, camera.SwitchCamera(1))
	frame, ok := camera.CaptureFrame()

	require.True(t, ok)
	assert.Equal(t, backData, frame.Data)
	assert.Equal(t, 1, camera.ActiveCamera())
	assert.Equal(t, []string{front, back}, camera.Cameras())
	assert.ErrorIs(t, camera.SwitchCamera(2), domain.ErrNoSuchCamera)
	assert.Error(t, camera.SwitchCamera(-1))
	assert.Equal(t, 1, camera.ActiveCamera())
}

func TestCamera_DefaultDevice(t *testing.T) {
	camera := NewCamera(&failingAcquirer{}, common.NewConfig(nil), common.NewDiscardLogger())
	assert.Equal(t, DefaultCameras, camera.Cameras())
}
