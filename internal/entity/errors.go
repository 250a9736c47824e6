package entity

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden         = errors.New("forbidden: access denied")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskData   = errors.New("invalid task data")
	ErrUnauthorized      = errors.New("unauthorized: missing or rejected credential")
	ErrMalformedResponse = errors.New("malformed response body")
	ErrMissingAssignee   = errors.New("task has no assignee")
)

// TaskNotFoundHeader отмечает 404, которым API ответил на отсутствующую
// задачу. 404 без него означает неверный адрес, а не удаленную задачу.
const TaskNotFoundHeader = "X-Task-Not-Found"

// Operation - какое действие над задачами не удалось
type Operation string

const (
	OpLoad   Operation = "load"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// OperationError - ошибка шлюза с указанием операции
type OperationError struct {
	Op  Operation
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s tasks failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// FailedOperation возвращает операцию из цепочки ошибок
func FailedOperation(err error) (Operation, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Op, true
	}
	return "", false
}

// ValidationError - клиентская валидация, до какого-либо запроса
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task data: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTaskData
}

// RemoteError - сервер ответил не 2xx
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.StatusCode, e.Message)
}
