package comicsync

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/comicfinder/comicfinder/pkg/comicvine"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
)

const untitled = "Untitled"

// MapIssue turns a catalog issue and its resolved volume (which may be nil)
// into a comic record. Malformed fields are dropped rather than reported. The
// returned external id is 0 when the issue has none, and such issues should
// be skipped.
func MapIssue(issue *comicvine.Issue, vol *comicvine.Volume) (*models.Comic, int) {
	comic := &models.Comic{
		Title:        issueTitle(issue, vol),
		OnsaleDate:   onsaleDate(issue),
		Format:       pointerutil.String(models.ComicFormatComic),
		ThumbnailURL: thumbnail(issue.Image),
		Description:  description(issue),
		IssueNumber:  issueNumber(issue.IssueNumber),
	}
	if issue.ID != 0 {
		comic.ExternalID = pointerutil.Int(issue.ID)
	}
	return comic, issue.ID
}

func issueTitle(issue *comicvine.Issue, vol *comicvine.Volume) string {
	volumeName := ""
	if issue.Volume != nil {
		volumeName = strings.TrimSpace(issue.Volume.Name)
	}
	if volumeName == "" && vol != nil {
		volumeName = strings.TrimSpace(vol.Name)
	}
	number := strings.TrimSpace(issue.IssueNumber)

	if volumeName != "" && number != "" {
		return fmt.Sprintf("%s #%s", volumeName, formatIssueNumber(number))
	}
	if name := strings.TrimSpace(issue.Name); name != "" {
		return name
	}
	return untitled
}

// formatIssueNumber renders whole numbers without a fraction ("1.0" is "1")
// and leaves everything else as the catalog sent it.
func formatIssueNumber(number string) string {
	f, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return number
	}
	// Past int64 range the float is still whole, so print it in full.
	if math.Abs(f) >= 1<<63 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatInt(int64(f), 10)
}

func issueNumber(number string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// onsaleDate prefers the store date and falls back to the cover date. A value
// that doesn't parse counts as missing.
func onsaleDate(issue *comicvine.Issue) *models.Date {
	for _, s := range []string{issue.StoreDate, issue.CoverDate} {
		if d, ok := parseDay(s); ok {
			return &d
		}
	}
	return nil
}

func parseDay(s string) (models.Date, bool) {
	if len(s) < len(models.DateLayout) {
		return models.Date{}, false
	}
	d, err := models.ParseDate(s[:len(models.DateLayout)])
	if err != nil {
		return models.Date{}, false
	}
	return d, true
}

func thumbnail(img *comicvine.Image) *string {
	if img == nil {
		return nil
	}
	for _, u := range []string{img.SmallURL, img.ThumbURL, img.IconURL, img.MediumURL, img.SuperURL} {
		if u != "" {
			return pointerutil.String(u)
		}
	}
	return nil
}

func description(issue *comicvine.Issue) *string {
	if d := strings.TrimSpace(issue.Description); d != "" {
		return &d
	}
	if d := strings.TrimSpace(issue.Deck); d != "" {
		return &d
	}
	return nil
}
