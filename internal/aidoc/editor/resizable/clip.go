package resizable

import "fmt"

// Clip описывает презентационное окно обрезанного изображения:
// процент среза каждой стороны и компенсирующее масштабирование,
// при котором видимая область заполняет рамку целиком.
// Исходные байты изображения не изменяются.
type Clip struct {
	Top    int
	Right  int
	Bottom int
	Left   int

	ScaleX float64
	ScaleY float64
}

// Clip вычисляет окно отображения по текущим атрибутам ноды.
func (m *Manipulator) Clip() Clip {
	n := m.node
	return Clip{
		Top:    n.CropTop,
		Right:  n.CropRight,
		Bottom: n.CropBottom,
		Left:   n.CropLeft,

		ScaleX: 1 + float64(n.CropLeft+n.CropRight)/100,
		ScaleY: 1 + float64(n.CropTop+n.CropBottom)/100,
	}
}

// InsetCSS возвращает значение clip-path: inset(...) для рендера.
func (c Clip) InsetCSS() string {
	return fmt.Sprintf("inset(%d%% %d%% %d%% %d%%)", c.Top, c.Right, c.Bottom, c.Left)
}

func formatWidth(px int) string {
	return fmt.Sprintf("%dpx", px)
}
