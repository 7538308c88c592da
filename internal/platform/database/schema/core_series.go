package schema

// CoreSeriesTable represents the 'core.series' table
type CoreSeriesTable struct {
	Table       string
	ID          string
	Title       string
	Slug        string
	Author      string
	Description string
	CoverURL    string
	Status      string
	Views       string
	IsFeatured  string
	CreatedAt   string
	UpdatedAt   string
}

// CoreSeries is the schema definition for core.series
var CoreSeries = CoreSeriesTable{
	Table:       "core.series",
	ID:          "id",
	Title:       "title",
	Slug:        "slug",
	Author:      "author",
	Description: "description",
	CoverURL:    "coverurl",
	Status:      "status",
	Views:       "views",
	IsFeatured:  "isfeatured",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CoreSeriesTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Author, t.Description, t.CoverURL,
		t.Status, t.Views, t.IsFeatured, t.CreatedAt, t.UpdatedAt,
	}
}
