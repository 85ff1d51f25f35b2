package comicvine

// DateField selects which issue date a range query filters and sorts on.
type DateField string

const (
	DateFieldStore DateField = "store_date"
	DateFieldCover DateField = "cover_date"
)

func (f DateField) Valid() bool {
	return f == DateFieldStore || f == DateFieldCover
}

// Image holds the cover art variants. Any of them may be empty.
type Image struct {
	SmallURL  string `json:"small_url"`
	ThumbURL  string `json:"thumb_url"`
	IconURL   string `json:"icon_url"`
	MediumURL string `json:"medium_url"`
	SuperURL  string `json:"super_url"`
}

type VolumeRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Issue struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	IssueNumber string     `json:"issue_number"`
	Volume      *VolumeRef `json:"volume"`
	CoverDate   string     `json:"cover_date"`
	StoreDate   string     `json:"store_date"`
	Image       *Image     `json:"image"`
	Description string     `json:"description"`
	Deck        string     `json:"deck"`
}

type Publisher struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Volume struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Publisher *Publisher `json:"publisher"`
}

// IssuesPage is one page of a date-range query. Total is the size of the
// whole result set, not of this page.
type IssuesPage struct {
	Issues []*Issue
	Total  int
	Limit  int
	Offset int
}

type envelope struct {
	StatusCode           int    `json:"status_code"`
	Error                string `json:"error"`
	Limit                int    `json:"limit"`
	Offset               int    `json:"offset"`
	NumberOfTotalResults int    `json:"number_of_total_results"`
}
