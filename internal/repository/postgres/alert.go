package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.SOSAlert) error {
	query := `
		INSERT INTO sos_alerts (patient_id, latitude, longitude, message, phone, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	alert.Status = model.AlertStatusPending
	alert.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		alert.PatientID,
		alert.Latitude,
		alert.Longitude,
		alert.Message,
		alert.Phone,
		alert.Status,
		alert.CreatedAt,
	).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("failed to create sos alert: %w", err)
	}
	return nil
}

func (r *alertRepository) Get(ctx context.Context, id int64) (*model.SOSAlert, error) {
	query := `
		SELECT a.*, p.medical_record_number AS patient_mrn, p.full_name AS patient_name
		FROM sos_alerts a
		LEFT JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1
	`
	var alert model.SOSAlert
	err := r.db.GetContext(ctx, &alert, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sos alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) UpdateStatus(ctx context.Context, id int64, status model.AlertStatus) error {
	query := `UPDATE sos_alerts SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %d does not exist", id)
	}
	return nil
}

func (r *alertRepository) List(ctx context.Context, filter *model.AlertFilter) ([]*model.SOSAlert, error) {
	query := `
		SELECT a.*, p.medical_record_number AS patient_mrn, p.full_name AS patient_name
		FROM sos_alerts a
		LEFT JOIN patients p ON p.id = a.patient_id
	`
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil && filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter != nil && filter.SearchMRN != "" {
		args = append(args, "%"+filter.SearchMRN+"%")
		conds = append(conds, fmt.Sprintf("p.medical_record_number ILIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.created_at DESC"
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var alerts []*model.SOSAlert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sos alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) CountByStatus(ctx context.Context, status model.AlertStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sos_alerts WHERE status = $1`, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

func (r *alertRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sos_alerts`)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}
