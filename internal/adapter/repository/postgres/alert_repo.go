package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/postgres/generated"
)

// AlertRepository implements security alert persistence.
type AlertRepository struct {
	db generated.DBTX
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db generated.DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert, assigning an ID when it has none.
func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	evidence := []byte("{}")
	if alert.Evidence != nil {
		var err error
		evidence, err = json.Marshal(alert.Evidence)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO security_alerts (
			id, severity, category, entity_type, entity_id,
			title, evidence, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		alert.ID,
		string(alert.Severity),
		string(alert.Category),
		alert.EntityType,
		alert.EntityID,
		alert.Title,
		evidence,
		alert.Status,
		alert.CreatedAt,
	)

	return err
}

// List retrieves alerts matching filter, newest first.
func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	query := `
		SELECT id::text, severity, category, entity_type, entity_id,
		       title, evidence, status, created_at
		FROM security_alerts
		WHERE 1=1
	`
	args := []any{}

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += ` AND category = $` + strconv.Itoa(len(args))
	}

	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += ` AND entity_id = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var (
			alert    domain.Alert
			severity string
			category string
			evidence []byte
		)

		err := rows.Scan(
			&alert.ID,
			&severity,
			&category,
			&alert.EntityType,
			&alert.EntityID,
			&alert.Title,
			&evidence,
			&alert.Status,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		alert.Severity = domain.AlertSeverity(severity)
		alert.Category = domain.AlertCategory(category)

		if evidence != nil {
			_ = json.Unmarshal(evidence, &alert.Evidence)
		}

		alerts = append(alerts, &alert)
	}

	return alerts, rows.Err()
}
