package usecase

import (
	"sort"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
)

// StatusBuckets - задачи по колонкам доски. Все три статуса присутствуют всегда.
type StatusBuckets map[entity.Status][]entity.Task

type StatusColumn struct {
	Status entity.Status
	Tasks  []entity.Task
}

// Columns отдает колонки в порядке todo, in-progress, done
func (b StatusBuckets) Columns() []StatusColumn {
	columns := make([]StatusColumn, 0, len(entity.Statuses))
	for _, status := range entity.Statuses {
		columns = append(columns, StatusColumn{Status: status, Tasks: b[status]})
	}
	return columns
}

func ByStatus(tasks []entity.Task) StatusBuckets {
	buckets := make(StatusBuckets, len(entity.Statuses))
	for _, status := range entity.Statuses {
		buckets[status] = []entity.Task{}
	}
	for _, task := range tasks {
		if _, ok := buckets[task.Status]; !ok {
			continue
		}
		buckets[task.Status] = append(buckets[task.Status], task)
	}
	return buckets
}

// ByDueDate - задачи со сроком в тот же календарный день, что и day.
// День сравнивается в зоне day (зона пользователя). Список не обрезается.
func ByDueDate(tasks []entity.Task, day time.Time) []entity.Task {
	loc := day.Location()
	year, month, d := day.Date()

	bucket := []entity.Task{}
	for _, task := range tasks {
		if !task.HasDueDate() {
			continue
		}
		ty, tm, td := task.DueDate.In(loc).Date()
		if ty == year && tm == month && td == d {
			bucket = append(bucket, task)
		}
	}
	return bucket
}

// MonthDays - все дни месяца, в котором лежит month, в его зоне
func MonthDays(month time.Time) []time.Time {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	days := make([]time.Time, 0, 31)
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// Upcoming - задачи со сроком не раньше сегодняшнего дня, по возрастанию срока.
// limit <= 0 означает без ограничения.
func Upcoming(tasks []entity.Task, now time.Time, limit int) []entity.Task {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	upcoming := make([]entity.Task, 0)
	for _, task := range tasks {
		if task.HasDueDate() && !task.DueDate.Before(startOfDay) {
			upcoming = append(upcoming, task)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate.Time)
	})

	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// Recent - первые n задач канонического списка
func Recent(tasks []entity.Task, n int) []entity.Task {
	if n < 0 {
		n = 0
	}
	if n > len(tasks) {
		n = len(tasks)
	}
	recent := make([]entity.Task, n)
	copy(recent, tasks[:n])
	return recent
}
