package resizable

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
)

func TestResizeCommitsWidth(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)

	drag, err := m.BeginResize(300)
	require.NoError(t, err)
	assert.Equal(t, Resizing, m.State())

	require.NoError(t, drag.Move(50, 0))
	assert.Equal(t, "350px", node.Width)

	require.NoError(t, drag.Move(120, 0))
	assert.Equal(t, "420px", node.Width)

	drag.End()
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, "420px", node.Width)
}

func TestResizeFloor(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)

	drag, err := m.BeginResize(300)
	require.NoError(t, err)

	// Любое отрицательное смещение не опускает ширину ниже минимума
	for _, dx := range []int{-250, -300, -10000} {
		require.NoError(t, drag.Move(dx, 0))
		assert.Equal(t, "100px", node.Width)
	}
	drag.End()
}

func TestGesturesAreMutuallyExclusive(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)
	m.Select()
	require.NoError(t, m.ToggleCropMode())

	drag, err := m.BeginResize(200)
	require.NoError(t, err)

	_, err = m.BeginResize(200)
	assert.ErrorIs(t, err, ErrGestureActive)

	_, err = m.BeginCrop(CropLeft, 200, 100)
	assert.ErrorIs(t, err, ErrGestureActive)

	drag.End()

	// После завершения жеста машина снова в Idle
	crop, err := m.BeginCrop(CropLeft, 200, 100)
	require.NoError(t, err)
	crop.End()
}

func TestCropRequiresSelectionAndMode(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)

	_, err := m.BeginCrop(CropTop, 200, 100)
	assert.ErrorIs(t, err, ErrNotSelected)

	m.Select()
	_, err = m.BeginCrop(CropTop, 200, 100)
	assert.ErrorIs(t, err, ErrCropModeOff)

	require.NoError(t, m.ToggleCropMode())
	_, err = m.BeginCrop(CropTop, 200, 100)
	require.NoError(t, err)
}

func TestDeselectExitsCropMode(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)
	m.Select()
	require.NoError(t, m.ToggleCropMode())

	m.Deselect()
	assert.False(t, m.CropMode())
}

func TestCropSides(t *testing.T) {
	tests := []struct {
		name string
		side CropSide
		dx   int
		dy   int
		want func(*schema.Image) int
	}{
		{name: "left drags right", side: CropLeft, dx: 40, want: func(n *schema.Image) int { return n.CropLeft }},
		{name: "right sign inverted", side: CropRight, dx: -40, want: func(n *schema.Image) int { return n.CropRight }},
		{name: "top drags down", side: CropTop, dy: 20, want: func(n *schema.Image) int { return n.CropTop }},
		{name: "bottom sign inverted", side: CropBottom, dy: -20, want: func(n *schema.Image) int { return n.CropBottom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := schema.NewImage("/uploads/pic.png")
			m := NewManipulator(node)
			m.Select()
			require.NoError(t, m.ToggleCropMode())

			drag, err := m.BeginCrop(tt.side, 200, 100)
			require.NoError(t, err)

			require.NoError(t, drag.Move(tt.dx, tt.dy))
			drag.End()

			assert.Equal(t, 20, tt.want(node))
		})
	}
}

func TestCropClampAfterArbitraryDrags(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)
	m.Select()
	require.NoError(t, m.ToggleCropMode())

	rnd := rand.New(rand.NewSource(42))
	sides := []CropSide{CropTop, CropRight, CropBottom, CropLeft}

	for i := 0; i < 200; i++ {
		side := sides[rnd.Intn(len(sides))]
		drag, err := m.BeginCrop(side, 300, 200)
		require.NoError(t, err)

		for j := 0; j < 5; j++ {
			require.NoError(t, drag.Move(rnd.Intn(2001)-1000, rnd.Intn(2001)-1000))
		}
		drag.End()

		for _, v := range []int{node.CropTop, node.CropRight, node.CropBottom, node.CropLeft} {
			assert.GreaterOrEqual(t, v, schema.CropMin)
			assert.LessOrEqual(t, v, schema.CropMax)
		}
	}
}

func TestCropZeroDimensionNoOp(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	node.CropLeft = 10
	m := NewManipulator(node)
	m.Select()
	require.NoError(t, m.ToggleCropMode())

	drag, err := m.BeginCrop(CropLeft, 0, 0)
	require.NoError(t, err)

	require.NoError(t, drag.Move(500, 0))
	drag.End()

	assert.Equal(t, 10, node.CropLeft)
}

func TestMoveAfterEnd(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	m := NewManipulator(node)

	drag, err := m.BeginResize(200)
	require.NoError(t, err)
	drag.End()

	assert.ErrorIs(t, drag.Move(10, 0), ErrGestureEnded)
}

func TestClipComposition(t *testing.T) {
	node := schema.NewImage("/uploads/pic.png")
	node.CropTop = 5
	node.CropRight = 10
	node.CropBottom = 15
	node.CropLeft = 20
	m := NewManipulator(node)

	clip := m.Clip()

	assert.Equal(t, "inset(5% 10% 15% 20%)", clip.InsetCSS())
	assert.InDelta(t, 1.30, clip.ScaleX, 0.0001)
	assert.InDelta(t, 1.20, clip.ScaleY, 0.0001)
}
