package palette

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
	"github.com/aisa-it/aidoc/internal/aidoc/uploads"
)

// recordingEditor записывает вызовы командного интерфейса.
type recordingEditor struct {
	calls []string
}

func (e *recordingEditor) record(call string) { e.calls = append(e.calls, call) }

func (e *recordingEditor) DeleteRange(r Range)     { e.record("deleteRange") }
func (e *recordingEditor) SetParagraph()           { e.record("setParagraph") }
func (e *recordingEditor) SetHeading(level int)    { e.record("setHeading") }
func (e *recordingEditor) ToggleBulletList()       { e.record("bulletList") }
func (e *recordingEditor) ToggleOrderedList()      { e.record("orderedList") }
func (e *recordingEditor) InsertImage(src string)  { e.record("insertImage:" + src) }
func (e *recordingEditor) InsertVideo(src string)  { e.record("insertVideo:" + src) }
func (e *recordingEditor) InsertFileLink(href string, displayName string) {
	e.record("insertFileLink:" + displayName)
}

type stubUploader struct {
	result *uploads.Result
	err    error
}

func (u *stubUploader) Upload(ctx context.Context, reader io.Reader, size int64, filename string, contentType string, metadata *filestorage.Metadata) (*uploads.Result, error) {
	if u.err != nil {
		return nil, u.err
	}
	return u.result, nil
}

func openPalette(t *testing.T, uploader Uploader) *Palette {
	t.Helper()
	p := New(uploader, uploads.NewTracker())
	require.True(t, p.HandleTrigger(true))
	return p
}

func TestTriggerRequiresBlockStart(t *testing.T) {
	p := New(&stubUploader{}, uploads.NewTracker())

	assert.False(t, p.HandleTrigger(false))
	assert.False(t, p.IsOpen())

	assert.True(t, p.HandleTrigger(true))
	assert.True(t, p.IsOpen())

	// Повторный триггер при открытой палитре игнорируется
	assert.False(t, p.HandleTrigger(true))
}

func TestCatalogHasNineItems(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	assert.Len(t, p.Filtered(), 9)
}

func TestFilterHead(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	p.SetQuery("head")

	items := p.Filtered()
	require.Len(t, items, 3)
	assert.Equal(t, "Heading 1", items[0].Title)
	assert.Equal(t, "Heading 2", items[1].Title)
	assert.Equal(t, "Heading 3", items[2].Title)
}

func TestFilterCaseInsensitive(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	p.SetQuery("LIST")

	items := p.Filtered()
	require.Len(t, items, 2)
	assert.Equal(t, "Bullet List", items[0].Title)
	assert.Equal(t, "Numbered List", items[1].Title)
}

func TestQueryChangeResetsSelection(t *testing.T) {
	p := openPalette(t, &stubUploader{})

	p.MoveDown()
	p.MoveDown()
	assert.Equal(t, 2, p.SelectedIndex())

	p.SetQuery("head")
	assert.Equal(t, 0, p.SelectedIndex())

	// Тот же запрос не сбрасывает выбор
	p.MoveDown()
	p.SetQuery("head")
	assert.Equal(t, 1, p.SelectedIndex())
}

func TestNavigationWraps(t *testing.T) {
	p := openPalette(t, &stubUploader{})

	// Вверх с первого элемента - на последний
	p.MoveUp()
	assert.Equal(t, 8, p.SelectedIndex())

	// Вниз с последнего - на первый
	p.MoveDown()
	assert.Equal(t, 0, p.SelectedIndex())
}

func TestNavigationEmptyListNoOp(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	p.SetQuery("zzz")

	require.Empty(t, p.Filtered())
	p.MoveUp()
	p.MoveDown()
	assert.Equal(t, 0, p.SelectedIndex())
}

func TestApplyHeading(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	p.SetQuery("head")
	p.MoveDown()

	ed := &recordingEditor{}
	require.NoError(t, p.Apply(context.Background(), ed, Range{From: 0, To: 5}, Input{}))

	assert.Equal(t, []string{"deleteRange", "setHeading"}, ed.calls)
	assert.False(t, p.IsOpen())
}

func TestApplyEmptyFilteredClosesWithoutEffect(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	p.SetQuery("zzz")

	ed := &recordingEditor{}
	require.NoError(t, p.Apply(context.Background(), ed, Range{}, Input{}))

	assert.Empty(t, ed.calls)
	assert.False(t, p.IsOpen())
}

func TestCheckContextCancels(t *testing.T) {
	p := openPalette(t, &stubUploader{})
	p.SetQuery("hea")

	// Контекст сохранен
	p.CheckContext("/hea")
	assert.True(t, p.IsOpen())

	// Текст блока больше не начинается с /hea
	p.CheckContext("x/hea")
	assert.False(t, p.IsOpen())
}

func TestApplyImageInsertsOnSuccess(t *testing.T) {
	uploader := &stubUploader{result: &uploads.Result{
		Key:       "uploads/a1b2c3d4e5f6_1699999999999.pic.png",
		PublicURL: "https://cdn.example.com/uploads/a1b2c3d4e5f6_1699999999999.pic.png",
	}}
	p := openPalette(t, uploader)
	p.SetQuery("image")

	ed := &recordingEditor{}
	err := p.Apply(context.Background(), ed, Range{}, Input{File: &File{
		Reader:      strings.NewReader("png"),
		Size:        3,
		Name:        "pic.png",
		ContentType: "image/png",
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"deleteRange",
		"insertImage:https://cdn.example.com/uploads/a1b2c3d4e5f6_1699999999999.pic.png",
	}, ed.calls)
}

func TestApplyFileDerivesDisplayName(t *testing.T) {
	uploader := &stubUploader{result: &uploads.Result{
		Key:       "uploads/a1b2c3d4e5f6_1699999999999.my report.pdf",
		PublicURL: "https://cdn.example.com/uploads/a1b2c3d4e5f6_1699999999999.my report.pdf",
	}}
	p := openPalette(t, uploader)
	p.SetQuery("file")

	ed := &recordingEditor{}
	err := p.Apply(context.Background(), ed, Range{}, Input{File: &File{
		Reader: strings.NewReader("pdf"), Size: 3, Name: "my report.pdf", ContentType: "application/pdf",
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"deleteRange", "insertFileLink:my report.pdf"}, ed.calls)
}

func TestUploadFailureLeavesTreeUnchanged(t *testing.T) {
	uploader := &stubUploader{err: &uploads.UploadError{Reason: uploads.ReasonBucketMissing}}
	tracker := uploads.NewTracker()
	p := New(uploader, tracker)
	require.True(t, p.HandleTrigger(true))
	p.SetQuery("image")

	ed := &recordingEditor{}
	err := p.Apply(context.Background(), ed, Range{}, Input{File: &File{
		Reader: strings.NewReader("png"), Size: 3, Name: "pic.png", ContentType: "image/png",
	}})
	require.Error(t, err)

	// Нода не вставлена, удален только диапазон триггера
	assert.Equal(t, []string{"deleteRange"}, ed.calls)
}
