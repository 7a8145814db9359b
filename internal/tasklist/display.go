package tasklist

import (
	"fmt"
	"strings"
	"time"
)

// View is one of the fixed task windows
type View struct {
	Name      string
	DaysAhead int
	Title     string
}

// Views lists the windows offered by the application
var Views = []View{
	{Name: "today", DaysAhead: 0, Title: "Today"},
	{Name: "tomorrow", DaysAhead: 1, Title: "Tomorrow"},
	{Name: "week", DaysAhead: 7, Title: "Week"},
	{Name: "month", DaysAhead: 30, Title: "Month"},
}

// ViewByName finds a view, case-insensitively
func ViewByName(name string) (View, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range Views {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// Palette maps color keys to accent colors
var Palette = map[string]string{
	"today":    "#B13B44",
	"tomorrow": "#C9742E",
	"week":     "#15721E",
	"month":    "#1631BE",
}

// bucket maps daysAhead to its display bucket; every unlisted offset is
// displayed like the month view.
func bucket(daysAhead int) string {
	switch daysAhead {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case 7:
		return "week"
	default:
		return "month"
	}
}

// ImageKey returns the background image of a window
func ImageKey(daysAhead int) string {
	return bucket(daysAhead) + ".jpg"
}

// ColorKey returns the accent color key of a window
func ColorKey(daysAhead int) string {
	return bucket(daysAhead)
}

// Title returns the heading of a window
func Title(daysAhead int) string {
	for _, v := range Views {
		if v.DaysAhead == daysAhead {
			return v.Title
		}
	}
	return fmt.Sprintf("Next %d days", daysAhead)
}

// Subtitle formats today's date for the heading, e.g. "Sun, 18 October"
func Subtitle(now time.Time) string {
	return now.Format("Mon, 2 January")
}
