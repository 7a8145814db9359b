package tasklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

func sampleTasks() []types.Task {
	done := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	return []types.Task{
		{ID: 1, Desc: "Buy milk"},
		{ID: 2, Desc: "Pay bills", DoneAt: &done},
		{ID: 3, Desc: "Call mom"},
		{ID: 4, Desc: "Water plants", DoneAt: &done},
		{ID: 5, Desc: "Read book"},
	}
}

func ids(tasks []types.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestVisibleShowDoneKeepsEverything(t *testing.T) {
	tasks := sampleTasks()
	visible := Visible(tasks, true)

	assert.Equal(t, ids(tasks), ids(visible))

	visible[0].Desc = "changed"
	assert.Equal(t, "Buy milk", tasks[0].Desc, "visible tasks must not alias the source")
}

func TestVisibleHideDoneKeepsPendingInOrder(t *testing.T) {
	visible := Visible(sampleTasks(), false)
	assert.Equal(t, []int64{1, 3, 5}, ids(visible))
	for _, task := range visible {
		assert.Nil(t, task.DoneAt)
	}
}

func TestVisibleEmpty(t *testing.T) {
	assert.NotNil(t, Visible(nil, false))
	assert.Empty(t, Visible(nil, true))
}

func TestMaxDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 3, 7, 0, time.Local)

	tests := []struct {
		daysAhead int
		want      string
	}{
		{0, "2026-10-18 23:59:59"},
		{1, "2026-10-19 23:59:59"},
		{7, "2026-10-25 23:59:59"},
		{30, "2026-11-17 23:59:59"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaxDate(now, tt.daysAhead), "daysAhead=%d", tt.daysAhead)
	}

	newYearsEve := time.Date(2026, 12, 31, 23, 0, 0, 0, time.Local)
	assert.Equal(t, "2027-01-01 23:59:59", MaxDate(newYearsEve, 1))
}

func TestMaxDateTodayIsEndOfToday(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.Format("2006-01-02")+" 23:59:59", MaxDate(now, 0))
}

func TestDisplayHelpers(t *testing.T) {
	tests := []struct {
		daysAhead int
		image     string
		color     string
		title     string
	}{
		{0, "today.jpg", "today", "Today"},
		{1, "tomorrow.jpg", "tomorrow", "Tomorrow"},
		{7, "week.jpg", "week", "Week"},
		{30, "month.jpg", "month", "Month"},
		{3, "month.jpg", "month", "Next 3 days"},
		{-1, "month.jpg", "month", "Next -1 days"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.image, ImageKey(tt.daysAhead))
		assert.Equal(t, tt.color, ColorKey(tt.daysAhead))
		assert.Equal(t, tt.title, Title(tt.daysAhead))
		assert.Contains(t, Palette, ColorKey(tt.daysAhead))
	}
}

func TestViewByName(t *testing.T) {
	v, ok := ViewByName(" Week ")
	assert.True(t, ok)
	assert.Equal(t, 7, v.DaysAhead)

	v, ok = ViewByName("month")
	assert.True(t, ok)
	assert.Equal(t, 30, v.DaysAhead)

	_, ok = ViewByName("year")
	assert.False(t, ok)
}

func TestSubtitle(t *testing.T) {
	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sun, 18 October", Subtitle(now))
}
