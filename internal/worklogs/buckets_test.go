package worklogs

import (
	"testing"
	"time"

	"jira-sprint-worklogs/internal/common"
	"jira-sprint-worklogs/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datedSprint(t *testing.T, id, start, end string) *models.Sprint {
	s, e := day(t, start), day(t, end)
	return &models.Sprint{ID: id, StartDate: &s, EndDate: &e}
}

func worklogOn(t *testing.T, id, date string) *models.Worklog {
	return &models.Worklog{ID: id, IssueKey: "ABC-1", TimeSpentSeconds: 3600, LogDate: day(t, date)}
}

func TestFillDaysKeepsExistingWorklogs(t *testing.T) {
	sprint := datedSprint(t, "1", "2024-02-27", "2024-03-02")
	sprint.AddWorklog(worklogOn(t, "a", "2024-02-29"))
	sprint.AddWorklog(worklogOn(t, "b", "2024-02-29"))
	sprint.AddWorklog(worklogOn(t, "c", "2024-03-02"))

	require.NoError(t, FillDays(sprint))

	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, dayKeys(sprint))
	d, _ := sprint.Day("2024-02-29")
	require.Len(t, d.Worklogs, 2)
	assert.Equal(t, "a", d.Worklogs[0].ID)
	assert.Equal(t, "b", d.Worklogs[1].ID)
	empty, _ := sprint.Day("2024-02-28")
	assert.NotNil(t, empty.Worklogs)
	assert.Empty(t, empty.Worklogs)
}

func TestFillDaysIsIdempotent(t *testing.T) {
	sprint := datedSprint(t, "1", "2024-01-01", "2024-01-07")
	sprint.AddWorklog(worklogOn(t, "a", "2024-01-03"))

	require.NoError(t, FillDays(sprint))
	firstKeys := dayKeys(sprint)
	firstCount := len(sprint.Worklogs())

	require.NoError(t, FillDays(sprint))

	assert.Equal(t, firstKeys, dayKeys(sprint))
	assert.Equal(t, firstCount, len(sprint.Worklogs()))
	d, _ := sprint.Day("2024-01-03")
	assert.Len(t, d.Worklogs, 1)
}

func TestFillDaysSingleDaySprint(t *testing.T) {
	sprint := datedSprint(t, "1", "2024-01-01", "2024-01-01")
	require.NoError(t, FillDays(sprint))
	assert.Equal(t, []string{"2024-01-01"}, dayKeys(sprint))
}

func TestFillDaysLeavesOpenSprintUntouched(t *testing.T) {
	start := day(t, "2024-01-01")
	sprint := &models.Sprint{ID: "1", StartDate: &start}
	sprint.AddWorklog(worklogOn(t, "a", "2024-01-05"))

	require.NoError(t, FillDays(sprint))

	assert.Equal(t, []string{"2024-01-05"}, dayKeys(sprint))
}

func TestFillDaysRejectsBucketOutsideWindow(t *testing.T) {
	sprint := datedSprint(t, "1", "2024-01-01", "2024-01-07")
	sprint.AddWorklog(worklogOn(t, "a", "2024-01-09"))

	err := FillDays(sprint)
	require.Error(t, err)
	assert.True(t, common.IsErrorType(err, common.ErrorTypeInternal))
}

func TestBucketWorklogsFailsOnUndiscoveredSprint(t *testing.T) {
	cache := NewSprintCache(newFakeTracker(), testLogger())
	stray := datedSprint(t, "99", "2024-01-01", "2024-01-07")
	w := worklogOn(t, "a", "2024-01-02")
	w.Sprint = stray

	_, err := bucketWorklogs(cache, []*models.Worklog{w})

	require.Error(t, err)
	assert.True(t, common.IsErrorType(err, common.ErrorTypeInternal))
}

func TestBucketWorklogsSplitsSprintless(t *testing.T) {
	tracker := newFakeTracker()
	tracker.addSprint("1", "S1", "2024-01-01", "2024-01-07")
	cache := NewSprintCache(tracker, testLogger())
	sprint, err := cache.Resolve(t.Context(), "1")
	require.NoError(t, err)

	attributed := worklogOn(t, "a", "2024-01-02")
	attributed.Sprint = sprint
	loose := worklogOn(t, "b", "2024-02-02")

	sprintless, err := bucketWorklogs(cache, []*models.Worklog{attributed, loose})

	require.NoError(t, err)
	assert.Equal(t, []*models.Worklog{loose}, sprintless)
	assert.Equal(t, []string{"2024-01-02"}, dayKeys(sprint))
}

func TestSortSprints(t *testing.T) {
	a := datedSprint(t, "10", "2024-03-01", "2024-03-14")
	b := &models.Sprint{ID: "11"}
	c := datedSprint(t, "12", "2024-02-15", "2024-02-28")
	d := datedSprint(t, "9", "2024-02-15", "2024-02-20")
	sprints := []*models.Sprint{a, b, c, d}

	SortSprints(sprints)

	assert.Equal(t, []string{"11", "9", "12", "10"}, sprintIDs(sprints))
}

func TestSprintCacheMemoizesAndConvertsDates(t *testing.T) {
	tracker := newFakeTracker()
	tracker.addSprint("7", "Sprint 7", "2024-01-01T22:30:00.000-0500", "None")
	cache := NewSprintCache(tracker, testLogger())

	first, err := cache.Resolve(t.Context(), "7")
	require.NoError(t, err)
	second, err := cache.Resolve(t.Context(), "7")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, tracker.fetches["7"])
	assert.Equal(t, 1, cache.Len())
	require.NotNil(t, first.StartDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *first.StartDate)
	assert.Nil(t, first.EndDate)
	assert.Equal(t, "Sprint 7", first.Name)
	assert.Equal(t, "closed", first.State)
}

func TestFillDaysSkipsOverlongWindows(t *testing.T) {
	sprint := datedSprint(t, "1", "2024-01-01", "9999-12-31")
	sprint.AddWorklog(worklogOn(t, "a", "2024-01-05"))

	require.Greater(t, WindowDays(sprint), MaxWindowDays)
	require.NoError(t, FillDays(sprint))
	assert.Equal(t, []string{"2024-01-05"}, dayKeys(sprint))
}

func TestWindowDays(t *testing.T) {
	assert.Equal(t, 1, WindowDays(datedSprint(t, "1", "2024-03-01", "2024-03-01")))
	assert.Equal(t, 366, WindowDays(datedSprint(t, "2", "2024-01-01", "2024-12-31")))
	assert.Equal(t, 0, WindowDays(datedSprint(t, "3", "2024-03-02", "2024-03-01")))
	assert.Equal(t, 0, WindowDays(&models.Sprint{ID: "4"}))
}
