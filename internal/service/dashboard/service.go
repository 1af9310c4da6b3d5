package dashboard

import (
	"context"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
)

// recentSlice is the fixed overview window; there is no pagination beyond it.
const recentSlice = 10

type Service interface {
	Overview(ctx context.Context) (*model.DashboardResponse, error)
	AlertsTab(ctx context.Context, status model.AlertStatus, searchMRN string) (*model.DashboardResponse, error)
	TasksTab(ctx context.Context, urgency model.TaskUrgency) (*model.DashboardResponse, error)
}

type service struct {
	alertRepo     repository.AlertRepository
	taskRepo      repository.TaskRepository
	volunteerRepo repository.VolunteerRepository
}

func NewService(alertRepo repository.AlertRepository, taskRepo repository.TaskRepository, volunteerRepo repository.VolunteerRepository) Service {
	return &service{
		alertRepo:     alertRepo,
		taskRepo:      taskRepo,
		volunteerRepo: volunteerRepo,
	}
}

func (s *service) Overview(ctx context.Context) (*model.DashboardResponse, error) {
	pending, err := s.alertRepo.CountByStatus(ctx, model.AlertStatusPending)
	if err != nil {
		return nil, err
	}
	total, err := s.alertRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeTasks, err := s.taskRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	volunteers, err := s.volunteerRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alertRepo.List(ctx, &model.AlertFilter{Limit: recentSlice})
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.List(ctx, &model.TaskFilter{Limit: recentSlice})
	if err != nil {
		return nil, err
	}

	return &model.DashboardResponse{
		Tab: "overview",
		Counts: &model.DashboardCounts{
			PendingAlerts: pending,
			TotalAlerts:   total,
			ActiveTasks:   activeTasks,
			Volunteers:    volunteers,
		},
		Alerts: alerts,
		Tasks:  tasks,
	}, nil
}

func (s *service) AlertsTab(ctx context.Context, status model.AlertStatus, searchMRN string) (*model.DashboardResponse, error) {
	alerts, err := s.alertRepo.List(ctx, &model.AlertFilter{
		Status:    status,
		SearchMRN: searchMRN,
	})
	if err != nil {
		return nil, err
	}
	return &model.DashboardResponse{Tab: "alerts", Alerts: alerts}, nil
}

func (s *service) TasksTab(ctx context.Context, urgency model.TaskUrgency) (*model.DashboardResponse, error) {
	tasks, err := s.taskRepo.List(ctx, &model.TaskFilter{Urgency: urgency})
	if err != nil {
		return nil, err
	}
	return &model.DashboardResponse{Tab: "tasks", Tasks: tasks}, nil
}
