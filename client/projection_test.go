package client_test

import (
	"testing"
	"time"

	"taskhub/client"

	"github.com/stretchr/testify/assert"
)

func projTasks() []client.Task {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	due := func(d time.Duration) *time.Time {
		t := base.Add(d)
		return &t
	}
	return []client.Task{
		{ID: 1, Title: "Buy milk", Description: "from the corner shop", Priority: "low", CreatedAt: base, DueDate: due(72 * time.Hour)},
		{ID: 2, Title: "File taxes", Priority: "high", CreatedAt: base.Add(time.Hour), Completed: true},
		{ID: 3, Title: "Call plumber", Description: "kitchen sink", Priority: "medium", CreatedAt: base.Add(2 * time.Hour), DueDate: due(24 * time.Hour)},
		{ID: 4, Title: "Read book", Priority: "high", CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(tasks []client.Task) []uint {
	out := make([]uint, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestProject_DefaultSortNewestFirst(t *testing.T) {
	got := client.Project(projTasks(), client.Query{Filter: client.FilterAll, Sort: client.SortCreated})

	assert.Equal(t, []uint{4, 3, 2, 1}, ids(got))
}

func TestProject_FilterPending(t *testing.T) {
	got := client.Project(projTasks(), client.Query{Filter: client.FilterPending, Sort: client.SortCreated})

	assert.Equal(t, []uint{4, 3, 1}, ids(got))
}

func TestProject_FilterCompleted(t *testing.T) {
	got := client.Project(projTasks(), client.Query{Filter: client.FilterCompleted, Sort: client.SortCreated})

	assert.Equal(t, []uint{2}, ids(got))
}

func TestProject_SearchMatchesTitleAndDescription(t *testing.T) {
	// Case-insensitive, matches either field
	got := client.Project(projTasks(), client.Query{Filter: client.FilterAll, Search: "KITCHEN"})
	assert.Equal(t, []uint{3}, ids(got))

	got = client.Project(projTasks(), client.Query{Filter: client.FilterAll, Search: "buy"})
	assert.Equal(t, []uint{1}, ids(got))

	got = client.Project(projTasks(), client.Query{Filter: client.FilterAll, Search: "zzz"})
	assert.Empty(t, got)
}

func TestProject_SortByPriority(t *testing.T) {
	got := client.Project(projTasks(), client.Query{Filter: client.FilterAll, Sort: client.SortPriority})

	// high > medium > low; the two high tasks keep input order
	assert.Equal(t, []uint{2, 4, 3, 1}, ids(got))
}

func TestProject_SortByDueDateNilLast(t *testing.T) {
	got := client.Project(projTasks(), client.Query{Filter: client.FilterAll, Sort: client.SortDueDate})

	// earliest due date first, tasks without one at the end
	assert.Equal(t, uint(3), got[0].ID)
	assert.Equal(t, uint(1), got[1].ID)
	assert.Nil(t, got[2].DueDate)
	assert.Nil(t, got[3].DueDate)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	input := projTasks()
	_ = client.Project(input, client.Query{Filter: client.FilterAll, Sort: client.SortPriority})

	assert.Equal(t, []uint{1, 2, 3, 4}, ids(input))
}

func TestTask_Overdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	assert.True(t, client.Task{DueDate: &past}.Overdue(now))
	assert.False(t, client.Task{DueDate: &past, Completed: true}.Overdue(now))
	assert.False(t, client.Task{DueDate: &future}.Overdue(now))
	assert.False(t, client.Task{}.Overdue(now))
}
