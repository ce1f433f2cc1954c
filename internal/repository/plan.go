package repository

import (
	"github.com/ranger-dev/ranger-agent/internal/models"
	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db}
}

// CreatePlan persists a new plan version. Existing versions are never
// updated in place.
func (r *PlanRepository) CreatePlan(plan *models.RemediationPlan) (*models.RemediationPlan, error) {
	if err := r.db.Create(plan).Error; err != nil {
		return nil, err
	}

	return plan, nil
}

// LatestPlan returns the highest plan version for an incident.
func (r *PlanRepository) LatestPlan(incidentID string) (*models.RemediationPlan, error) {
	plan := &models.RemediationPlan{}

	err := r.db.Where("incident_id = ?", incidentID).
		Order("version desc").
		First(plan).Error

	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *PlanRepository) ListPlans(incidentID string) ([]*models.RemediationPlan, error) {
	var plans []*models.RemediationPlan

	err := r.db.Where("incident_id = ?", incidentID).
		Order("version asc").
		Find(&plans).Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}
