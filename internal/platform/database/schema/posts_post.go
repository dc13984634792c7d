package schema

// PostTable represents the 'posts.post' table
type PostTable struct {
	Table       string
	ID          string
	Title       string
	Slug        string
	Description string
	TimeStart   string
	TimeEnd     string
	Images      string
	CreatedBy   string
	CreatedAt   string
}

// Post is the schema definition for posts.post
var Post = PostTable{
	Table:       "posts.post",
	ID:          "id",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	TimeStart:   "timestart",
	TimeEnd:     "timeend",
	Images:      "images",
	CreatedBy:   "createdby",
	CreatedAt:   "createdat",
}

func (t PostTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.TimeStart, t.TimeEnd,
		t.Images, t.CreatedBy, t.CreatedAt,
	}
}
