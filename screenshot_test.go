package matrixview

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"attn", "attn"},
		{"layer.0-q", "layer.0-q"},
		{"q 2 X 3", "q_2_X_3"},
		{"blocks/0/attn", "blocks_0_attn"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"héllo", "h_llo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeLabel(tt.in), "sanitizeLabel(%q)", tt.in)
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 255, // opaque red
		64, 32, 0, 128, // half-transparent
		0, 0, 0, 0, // transparent
	}
	img := unpremultiply(pixels, 3, 1)
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pix[0:4])
	assert.Equal(t, []byte{127, 63, 0, 128}, img.Pix[4:8])
	assert.Equal(t, []byte{0, 0, 0, 0}, img.Pix[8:12])
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, writePNG(path, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, writePNG(filepath.Join(t.TempDir(), "missing", "out.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1))))
}

func TestScreenshotQueueAdd(t *testing.T) {
	q := newScreenshotQueue("shots")
	q.add("a")
	q.add("b")
	assert.Equal(t, []string{"a", "b"}, q.labels)
	assert.Equal(t, "shots", q.dir)
}
