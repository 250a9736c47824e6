package repository

import (
	"fmt"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
)

// Колонки задачи в порядке, в котором их читает scan
const taskColumns = `id, owner_id, title, description, status, priority,
	assignee_id, assignee_name, assignee_avatar, due_date, created_at`

// taskRow - строка таблицы task. Срок хранится текстом, чтобы дата без
// времени не превращалась в момент времени в зоне сервера.
type taskRow struct {
	ID             string
	OwnerID        string
	Title          string
	Description    string
	Status         string
	Priority       string
	AssigneeID     *string
	AssigneeName   *string
	AssigneeAvatar *string
	DueDate        *string
	CreatedAt      time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(s scanner) (*taskRow, error) {
	var row taskRow
	err := s.Scan(
		&row.ID,
		&row.OwnerID,
		&row.Title,
		&row.Description,
		&row.Status,
		&row.Priority,
		&row.AssigneeID,
		&row.AssigneeName,
		&row.AssigneeAvatar,
		&row.DueDate,
		&row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *taskRow) toEntity() (*entity.Task, error) {
	task := &entity.Task{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Status:      entity.Status(r.Status),
		Priority:    entity.Priority(r.Priority),
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.AssigneeID != nil {
		task.Assignee = &entity.Assignee{ID: *r.AssigneeID}
		if r.AssigneeName != nil {
			task.Assignee.Name = *r.AssigneeName
		}
		if r.AssigneeAvatar != nil {
			task.Assignee.Avatar = *r.AssigneeAvatar
		}
	}
	if r.DueDate != nil && *r.DueDate != "" {
		due, err := entity.ParseDate(*r.DueDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", r.ID, err)
		}
		task.DueDate = &due
	}
	return task, nil
}

// taskArgs - значения для INSERT в порядке taskColumns
func taskArgs(t *entity.Task) []any {
	var assigneeID, assigneeName, assigneeAvatar, dueDate *string
	if t.Assignee != nil {
		assigneeID, assigneeName, assigneeAvatar = &t.Assignee.ID, &t.Assignee.Name, &t.Assignee.Avatar
	}
	if t.HasDueDate() {
		s := t.DueDate.String()
		dueDate = &s
	}
	return []any{
		t.ID,
		t.OwnerID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		assigneeID,
		assigneeName,
		assigneeAvatar,
		dueDate,
		t.CreatedAt.UTC(),
	}
}

// patchColumns раскладывает патч на пары колонка/значение для UPDATE
func patchColumns(p *entity.TaskPatch) ([]string, []any) {
	var cols []string
	var vals []any
	if p.Title != nil {
		cols, vals = append(cols, "title"), append(vals, *p.Title)
	}
	if p.Description != nil {
		cols, vals = append(cols, "description"), append(vals, *p.Description)
	}
	if p.Status != nil {
		cols, vals = append(cols, "status"), append(vals, string(*p.Status))
	}
	if p.Priority != nil {
		cols, vals = append(cols, "priority"), append(vals, string(*p.Priority))
	}
	if p.Assignee != nil {
		cols = append(cols, "assignee_id", "assignee_name", "assignee_avatar")
		vals = append(vals, p.Assignee.ID, p.Assignee.Name, p.Assignee.Avatar)
	}
	if p.DueDate != nil {
		cols, vals = append(cols, "due_date"), append(vals, p.DueDate.String())
	}
	if p.ClearAssignee {
		cols = append(cols, "assignee_id", "assignee_name", "assignee_avatar")
		vals = append(vals, nil, nil, nil)
	}
	if p.ClearDueDate {
		cols, vals = append(cols, "due_date"), append(vals, nil)
	}
	return cols, vals
}
