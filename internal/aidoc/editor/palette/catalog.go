package palette

// Kind - вид команды из закрытого каталога.
type Kind int

const (
	KindText Kind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindBulletList
	KindOrderedList
	KindImage
	KindVideo
	KindFile
)

// Item - элемент каталога команд палитры.
type Item struct {
	Kind        Kind
	Title       string
	Description string
	Icon        string
}

// NeedsUpload сообщает, что команда зависит от результата загрузки файла.
func (i Item) NeedsUpload() bool {
	return i.Kind == KindImage || i.Kind == KindFile
}

// catalog - статический закрытый каталог команд в объявленном порядке.
// Пересчитывается фильтром на каждое нажатие, сам список неизменен.
var catalog = []Item{
	{Kind: KindText, Title: "Text", Description: "Just start writing with plain text", Icon: "text"},
	{Kind: KindHeading1, Title: "Heading 1", Description: "Big section heading", Icon: "h-1"},
	{Kind: KindHeading2, Title: "Heading 2", Description: "Medium section heading", Icon: "h-2"},
	{Kind: KindHeading3, Title: "Heading 3", Description: "Small section heading", Icon: "h-3"},
	{Kind: KindBulletList, Title: "Bullet List", Description: "Create a simple bullet list", Icon: "list"},
	{Kind: KindOrderedList, Title: "Numbered List", Description: "Create a list with numbering", Icon: "list-ordered"},
	{Kind: KindImage, Title: "Image", Description: "Upload an image from your computer", Icon: "image"},
	{Kind: KindVideo, Title: "Video", Description: "Embed a YouTube video", Icon: "video"},
	{Kind: KindFile, Title: "File", Description: "Upload a file attachment", Icon: "paperclip"},
}

// Catalog возвращает копию каталога команд.
func Catalog() []Item {
	items := make([]Item, len(catalog))
	copy(items, catalog)
	return items
}
