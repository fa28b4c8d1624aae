// Пакет resizable реализует протокол интерактивного изменения размеров и
// обрезки ноды изображения: машину состояний Idle/Resizing/Cropping и объекты
// жестов перетаскивания, независимые от событийного цикла UI.
//
// Основные возможности:
//   - Изменение ширины изображения с нижней границей 100 логических пикселей.
//   - Независимая обрезка каждой из четырех сторон с ограничением [0, 45]%.
//   - Взаимоисключающие жесты: новый жест начинается только из Idle.
//   - Запись атрибутов в ноду на каждом движении, без промежуточных состояний.
package resizable

import (
	"errors"

	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
)

// MinWidth - минимальная ширина изображения в логических пикселях.
const MinWidth = 100

var (
	ErrGestureActive = errors.New("another gesture is already active")
	ErrNotSelected   = errors.New("image node is not selected")
	ErrCropModeOff   = errors.New("crop mode is not enabled")
	ErrGestureEnded  = errors.New("drag gesture already ended")
	ErrUnknownSide   = errors.New("unknown crop side")
)

type State int

const (
	Idle State = iota
	Resizing
	Cropping
)

type CropSide int

const (
	CropTop CropSide = iota
	CropRight
	CropBottom
	CropLeft
)

// Manipulator управляет жестами изменения размера и обрезки одной ноды
// изображения. Не потокобезопасен: рассчитан на однопоточный событийный цикл.
type Manipulator struct {
	node *schema.Image

	state    State
	selected bool
	cropMode bool
}

func NewManipulator(node *schema.Image) *Manipulator {
	return &Manipulator{node: node}
}

func (m *Manipulator) State() State { return m.state }

func (m *Manipulator) Selected() bool { return m.selected }

func (m *Manipulator) CropMode() bool { return m.cropMode }

func (m *Manipulator) Select() { m.selected = true }

// Deselect снимает выделение и выключает режим обрезки.
func (m *Manipulator) Deselect() {
	m.selected = false
	m.cropMode = false
}

// ToggleCropMode переключает режим обрезки. Доступен только для выделенной ноды.
func (m *Manipulator) ToggleCropMode() error {
	if !m.selected {
		return ErrNotSelected
	}
	if m.state != Idle {
		return ErrGestureActive
	}
	m.cropMode = !m.cropMode
	return nil
}

// Drag - один жест перетаскивания. Move вызывается на каждое движение
// указателя, End завершает жест. После End жест использовать нельзя.
type Drag struct {
	m     *Manipulator
	ended bool

	// resize
	startWidth int

	// crop
	side       CropSide
	startValue int
	renderedW  int
	renderedH  int
}

// BeginResize начинает жест изменения ширины.
// startWidth - текущая отображаемая ширина изображения в пикселях.
func (m *Manipulator) BeginResize(startWidth int) (*Drag, error) {
	if m.state != Idle {
		return nil, ErrGestureActive
	}

	m.state = Resizing
	return &Drag{m: m, startWidth: startWidth}, nil
}

// BeginCrop начинает жест обрезки стороны side.
// renderedWidth и renderedHeight - текущие отображаемые размеры; нулевой
// размер допустим (изображение еще не загружено), движения тогда игнорируются.
func (m *Manipulator) BeginCrop(side CropSide, renderedWidth, renderedHeight int) (*Drag, error) {
	if !m.selected {
		return nil, ErrNotSelected
	}
	if !m.cropMode {
		return nil, ErrCropModeOff
	}
	if m.state != Idle {
		return nil, ErrGestureActive
	}
	if side < CropTop || side > CropLeft {
		return nil, ErrUnknownSide
	}

	m.state = Cropping
	return &Drag{
		m:          m,
		side:       side,
		startValue: m.cropValue(side),
		renderedW:  renderedWidth,
		renderedH:  renderedHeight,
	}, nil
}

// Move применяет накопленное смещение указателя от точки начала жеста.
// Результат записывается в атрибуты ноды немедленно.
func (d *Drag) Move(dx, dy int) error {
	if d.ended {
		return ErrGestureEnded
	}

	switch d.m.state {
	case Resizing:
		d.m.node.Width = formatWidth(clampWidth(d.startWidth + dx))
	case Cropping:
		d.moveCrop(dx, dy)
	}

	return nil
}

// End завершает жест и возвращает машину в Idle. Последнее записанное
// значение атрибута остается зафиксированным.
func (d *Drag) End() {
	if d.ended {
		return
	}
	d.ended = true
	d.m.state = Idle
}

func (d *Drag) moveCrop(dx, dy int) {
	var delta, dimension int
	switch d.side {
	case CropLeft:
		delta, dimension = dx, d.renderedW
	case CropRight:
		// перетаскивание внутрь увеличивает обрезку
		delta, dimension = -dx, d.renderedW
	case CropTop:
		delta, dimension = dy, d.renderedH
	case CropBottom:
		delta, dimension = -dy, d.renderedH
	}

	// Размер недоступен - движение игнорируется, деления на ноль нет
	if dimension == 0 {
		return
	}

	percent := d.startValue + delta*100/dimension
	d.m.setCropValue(d.side, clampCrop(percent))
}

func (m *Manipulator) cropValue(side CropSide) int {
	switch side {
	case CropTop:
		return m.node.CropTop
	case CropRight:
		return m.node.CropRight
	case CropBottom:
		return m.node.CropBottom
	default:
		return m.node.CropLeft
	}
}

func (m *Manipulator) setCropValue(side CropSide, v int) {
	switch side {
	case CropTop:
		m.node.CropTop = v
	case CropRight:
		m.node.CropRight = v
	case CropBottom:
		m.node.CropBottom = v
	case CropLeft:
		m.node.CropLeft = v
	}
}

func clampWidth(w int) int {
	if w < MinWidth {
		return MinWidth
	}
	return w
}

func clampCrop(v int) int {
	if v < schema.CropMin {
		return schema.CropMin
	}
	if v > schema.CropMax {
		return schema.CropMax
	}
	return v
}
