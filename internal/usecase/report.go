package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
)

type TaskCounts struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
}

type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (c PriorityCounts) Total() int {
	return c.High + c.Medium + c.Low
}

func (c PriorityCounts) Count(p entity.Priority) int {
	switch p {
	case entity.PriorityHigh:
		return c.High
	case entity.PriorityMedium:
		return c.Medium
	case entity.PriorityLow:
		return c.Low
	}
	return 0
}

// Percent - доля приоритета от общего числа задач, 0 при пустом списке
func (c PriorityCounts) Percent(p entity.Priority) int {
	return percent(c.Count(p), c.Total())
}

type StatusShare struct {
	Status  entity.Status `json:"status"`
	Count   int           `json:"count"`
	Percent int           `json:"percent"`
}

type AssigneeStats struct {
	Assignee  entity.Assignee `json:"assignee"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Rate      int             `json:"rate"`
}

// percent = round(part/total*100), 0 если total == 0
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func Counts(tasks []entity.Task) TaskCounts {
	counts := TaskCounts{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case entity.StatusTodo:
			counts.Todo++
		case entity.StatusInProgress:
			counts.InProgress++
		case entity.StatusDone:
			counts.Done++
		}
	}
	return counts
}

func CompletionRate(tasks []entity.Task) int {
	counts := Counts(tasks)
	return percent(counts.Done, counts.Total)
}

func PriorityDistribution(tasks []entity.Task) PriorityCounts {
	var counts PriorityCounts
	for _, task := range tasks {
		switch task.Priority {
		case entity.PriorityHigh:
			counts.High++
		case entity.PriorityMedium:
			counts.Medium++
		case entity.PriorityLow:
			counts.Low++
		}
	}
	return counts
}

// StatusDistribution - доли статусов от общего количества задач
func StatusDistribution(tasks []entity.Task) []StatusShare {
	buckets := ByStatus(tasks)
	shares := make([]StatusShare, 0, len(entity.Statuses))
	for _, status := range entity.Statuses {
		n := len(buckets[status])
		shares = append(shares, StatusShare{Status: status, Count: n, Percent: percent(n, len(tasks))})
	}
	return shares
}

// Overdue - незавершенные задачи со сроком раньше now
func Overdue(tasks []entity.Task, now time.Time) int {
	overdue := 0
	for _, task := range tasks {
		if task.Status == entity.StatusDone || !task.HasDueDate() {
			continue
		}
		if task.DueDate.Before(now) {
			overdue++
		}
	}
	return overdue
}

// PerAssignee группирует задачи по assignee.id в порядке первого появления.
// Задачи без исполнителя в группы не попадают, о них сообщает ошибка
// с ErrMissingAssignee; статистика по остальным возвращается всегда.
func PerAssignee(tasks []entity.Task) ([]AssigneeStats, error) {
	index := make(map[string]int)
	stats := make([]AssigneeStats, 0)
	missing := 0

	for _, task := range tasks {
		if task.Assignee == nil {
			missing++
			continue
		}
		i, ok := index[task.Assignee.ID]
		if !ok {
			i = len(stats)
			index[task.Assignee.ID] = i
			stats = append(stats, AssigneeStats{Assignee: *task.Assignee})
		}
		stats[i].Total++
		if task.Status == entity.StatusDone {
			stats[i].Completed++
		}
	}

	for i := range stats {
		stats[i].Rate = percent(stats[i].Completed, stats[i].Total)
	}

	if missing > 0 {
		return stats, fmt.Errorf("%d task(s) skipped: %w", missing, entity.ErrMissingAssignee)
	}
	return stats, nil
}
