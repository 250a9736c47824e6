package usecase

import (
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
)

// VisibleTasks возвращает задачи, прошедшие фильтр и текстовый поиск.
// Запрос сравнивается как есть, все совпадает только с пустой строкой.
// Порядок входного списка сохраняется, сам список не изменяется.
func VisibleTasks(tasks []entity.Task, filter entity.Filter, searchQuery string) []entity.Task {
	query := strings.ToLower(searchQuery)

	visible := make([]entity.Task, 0, len(tasks))
	for _, task := range tasks {
		if !filter.Matches(task) {
			continue
		}
		if !matchesQuery(task, query) {
			continue
		}
		visible = append(visible, task)
	}
	return visible
}

// query уже в нижнем регистре
func matchesQuery(task entity.Task, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), query) ||
		strings.Contains(strings.ToLower(task.Description), query)
}
