package client

import (
	"sort"
	"strings"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

type Sort string

const (
	SortCreated  Sort = "created"
	SortDueDate  Sort = "dueDate"
	SortPriority Sort = "priority"
)

// Query describes a projection over a task snapshot.
type Query struct {
	Filter Filter
	Sort   Sort
	Search string
}

var priorityRank = map[string]int{
	"high":   3,
	"medium": 2,
	"low":    1,
}

// Project derives the display list from a snapshot: completion filter
// first, then case-insensitive substring search over title and
// description, then sort. The input slice is not modified and the
// projection holds no state of its own.
func Project(tasks []Task, q Query) []Task {
	out := make([]Task, 0, len(tasks))
	search := strings.ToLower(q.Search)

	for _, t := range tasks {
		switch q.Filter {
		case FilterPending:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}

		out = append(out, t)
	}

	switch q.Sort {
	case SortDueDate:
		// Ascending by due date; tasks without one go last.
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortPriority:
		// high > medium > low, ties keep input order.
		sort.SliceStable(out, func(i, j int) bool {
			return priorityRank[out[i].Priority] > priorityRank[out[j].Priority]
		})
	default:
		// Newest first.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}
