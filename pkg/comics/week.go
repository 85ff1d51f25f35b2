package comics

import (
	"time"

	"github.com/comicfinder/comicfinder/pkg/models"
)

// Release weeks run Wednesday through the following Tuesday.
const weekLength = 7

// WeekWindow returns the inclusive Wednesday..Tuesday window that contains
// day. A day that isn't a Wednesday snaps back to the previous one.
func WeekWindow(day models.Date) (models.Date, models.Date) {
	delta := (int(day.Weekday()) - int(time.Wednesday) + weekLength) % weekLength
	start := models.NewDate(day.AddDate(0, 0, -delta))
	end := models.NewDate(start.AddDate(0, 0, weekLength-1))
	return start, end
}
