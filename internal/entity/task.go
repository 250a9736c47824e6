package entity

import (
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses - канонический порядок колонок доски
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities - порядок отображения приоритетов (от высокого к низкому)
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Assignee - копия профиля пользователя на момент назначения
type Assignee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Assignee    *Assignee `json:"assignee"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	OwnerID     string    `json:"ownerId,omitempty"`
}

// HasDueDate сообщает, задан ли срок у задачи
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// AssigneeID возвращает id исполнителя или пустую строку
func (t Task) AssigneeID() string {
	if t.Assignee == nil {
		return ""
	}
	return t.Assignee.ID
}

// TaskDraft - задача без id, отправляется на создание
type TaskDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status,omitempty"`
	Priority    Priority  `json:"priority,omitempty"`
	Assignee    *Assignee `json:"assignee,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`
}

// Normalize обрезает пробелы и проставляет значения по умолчанию
func (d *TaskDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Status == "" {
		d.Status = StatusTodo
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
}

func (d *TaskDraft) Validate() error {
	d.Normalize()
	if d.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if !d.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "must be one of todo, in-progress, done"}
	}
	if !d.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}
	return nil
}

// TaskPatch - частичное обновление, nil означает "не менять"
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Assignee    *Assignee `json:"assignee,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`

	// nil не отличить от "не менять", поэтому снятие исполнителя
	// и срока - отдельные флаги
	ClearAssignee bool `json:"clearAssignee,omitempty"`
	ClearDueDate  bool `json:"clearDueDate,omitempty"`
}

func (p *TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Assignee == nil && p.DueDate == nil &&
		!p.ClearAssignee && !p.ClearDueDate
}

func (p *TaskPatch) Validate() error {
	if p.Empty() {
		return ErrNoFieldsToUpdate
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "is required"}
		}
		p.Title = &title
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "must be one of todo, in-progress, done"}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}
	if p.Assignee != nil && p.ClearAssignee {
		return &ValidationError{Field: "assignee", Reason: "cannot be set and cleared at once"}
	}
	if p.DueDate != nil && p.ClearDueDate {
		return &ValidationError{Field: "dueDate", Reason: "cannot be set and cleared at once"}
	}
	return nil
}

// Apply накладывает изменения на копию задачи. Сервис задач сравнивает
// результат с текущей записью, чтобы не писать пустые обновления.
func (p *TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		a := *p.Assignee
		t.Assignee = &a
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.ClearAssignee {
		t.Assignee = nil
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	return t
}

// StatusPatch - патч для перетаскивания между колонками
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}
