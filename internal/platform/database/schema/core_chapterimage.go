package schema

// CoreChapterImageTable represents the 'core.chapterimage' table
type CoreChapterImageTable struct {
	Table     string
	ID        string
	ChapterID string
	ImageURL  string
	Order     string
	Width     string
	Height    string
	SizeBytes string
	MimeType  string
	CreatedAt string
}

// CoreChapterImage is the schema definition for core.chapterimage.
// "order" is a reserved word and is always quoted.
var CoreChapterImage = CoreChapterImageTable{
	Table:     "core.chapterimage",
	ID:        "id",
	ChapterID: "chapterid",
	ImageURL:  "imageurl",
	Order:     `"order"`,
	Width:     "width",
	Height:    "height",
	SizeBytes: "sizebytes",
	MimeType:  "mimetype",
	CreatedAt: "createdat",
}

func (t CoreChapterImageTable) Columns() []string {
	return []string{
		t.ID, t.ChapterID, t.ImageURL, t.Order, t.Width, t.Height, t.SizeBytes, t.MimeType, t.CreatedAt,
	}
}
