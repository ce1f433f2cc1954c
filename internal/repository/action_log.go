package repository

import (
	"errors"

	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/internal/utils"
	"gorm.io/gorm"
)

type ActionLogRepository struct {
	db *gorm.DB
}

func NewActionLogRepository(db *gorm.DB) *ActionLogRepository {
	return &ActionLogRepository{db}
}

// AppendEntry writes a new log entry. Entries are append-only: there is no
// update path for an action log.
func (r *ActionLogRepository) AppendEntry(entry *models.ActionLog) (*models.ActionLog, error) {
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

// LatestForAction returns the most recent log entry for an (incident, action)
// pair, or nil when the action has never been attempted.
func (r *ActionLogRepository) LatestForAction(incidentID, actionID string) (*models.ActionLog, error) {
	entry := &models.ActionLog{}

	err := r.db.Where("incident_id = ? AND action_id = ?", incidentID, actionID).
		Order("id desc").
		First(entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return entry, nil
}

func (r *ActionLogRepository) ListEntries(filter *utils.ListActionLogsFilter, opts ...utils.QueryOption) ([]*models.ActionLog, error) {
	var entries []*models.ActionLog

	db := r.db.Scopes(utils.Paginate(opts))

	if filter.IncidentID != nil {
		db = db.Where("incident_id = ?", *filter.IncidentID)
	}

	if filter.ActionID != nil {
		db = db.Where("action_id = ?", *filter.ActionID)
	}

	if err := db.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
