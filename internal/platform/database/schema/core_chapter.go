package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table         string
	ID            string
	SeriesID      string
	Title         string
	ChapterNumber string
	PublishDate   string
	ScheduledAt   string
	IsPublished   string
	Views         string
	CreatedAt     string
	UpdatedAt     string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:         "core.chapter",
	ID:            "id",
	SeriesID:      "seriesid",
	Title:         "title",
	ChapterNumber: "chapternumber",
	PublishDate:   "publishdate",
	ScheduledAt:   "scheduledat",
	IsPublished:   "ispublished",
	Views:         "views",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.SeriesID, t.Title, t.ChapterNumber, t.PublishDate, t.ScheduledAt,
		t.IsPublished, t.Views, t.CreatedAt, t.UpdatedAt,
	}
}
