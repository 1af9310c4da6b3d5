package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateTaskRequest, createdBy uuid.UUID) (*model.Task, error)
	Get(ctx context.Context, id int64) (*model.Task, error)
	Update(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error)
	// UpdateStatus is open to any authenticated identity; there is no
	// assignment relation to scope it to.
	UpdateStatus(ctx context.Context, id int64, status model.TaskStatus) (*model.Task, error)
	// Toggle flips is_active, or pins it when explicit is non-nil.
	Toggle(ctx context.Context, id int64, explicit *bool) (*model.Task, error)
	Delete(ctx context.Context, id int64) error
	// ListActive is the volunteer-facing view: active tasks only.
	ListActive(ctx context.Context) ([]*model.Task, error)
	List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, error)
}

type service struct {
	repo repository.TaskRepository
}

func NewService(repo repository.TaskRepository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req *model.CreateTaskRequest, createdBy uuid.UUID) (*model.Task, error) {
	urgency := req.Urgency
	if urgency == "" {
		urgency = model.TaskUrgencyMedium
	}
	if !model.ValidTaskUrgency(urgency) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid urgency %q", urgency), nil)
	}

	task := &model.Task{
		Title:       req.Title,
		Location:    req.Location,
		Urgency:     urgency,
		Description: req.Description,
		Status:      model.TaskStatusPending,
		IsActive:    true,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("task", err)
		}
		return nil, err
	}
	return task, nil
}

func (s *service) Update(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Location != nil {
		task.Location = *req.Location
	}
	if req.Urgency != nil {
		if !model.ValidTaskUrgency(*req.Urgency) {
			return nil, apperrors.Validation(fmt.Sprintf("invalid urgency %q", *req.Urgency), nil)
		}
		task.Urgency = *req.Urgency
	}
	if req.Description != nil {
		task.Description = *req.Description
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status model.TaskStatus) (*model.Task, error) {
	if !model.ValidTaskStatus(status) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", status), nil)
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Status == status {
		return task, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}

func (s *service) Toggle(ctx context.Context, id int64, explicit *bool) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target := !task.IsActive
	if explicit != nil {
		target = *explicit
	}

	if err := s.repo.SetActive(ctx, id, target); err != nil {
		return nil, err
	}
	task.IsActive = target
	return task, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ListActive(ctx context.Context) ([]*model.Task, error) {
	return s.repo.List(ctx, &model.TaskFilter{ActiveOnly: true})
}

func (s *service) List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, error) {
	if filter != nil && filter.Urgency != "" && !model.ValidTaskUrgency(filter.Urgency) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid urgency %q", filter.Urgency), nil)
	}
	return s.repo.List(ctx, filter)
}
