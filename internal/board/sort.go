package board

import (
	"slices"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
)

// SortTasks - отсортированная копия: сначала незавершённые, внутри групп по сроку.
// Задача без срока считается нулевым временем и идёт первой
func SortTasks(tasks []entity.Task) []entity.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b entity.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return dueOf(a).Compare(dueOf(b))
	})
	return out
}

func dueOf(t entity.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}
