package repository

import (
	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/internal/utils"
	"gorm.io/gorm"
)

type IncidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository returns pointer to repo along with the db
func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db}
}

func (r *IncidentRepository) CreateIncident(incident *models.Incident) (*models.Incident, error) {
	if err := r.db.Create(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) ReadIncident(uid string) (*models.Incident, error) {
	incident := &models.Incident{}

	if err := r.db.Where("unique_id = ?", uid).First(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) UpdateIncident(incident *models.Incident) (*models.Incident, error) {
	if err := r.db.Save(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) ListIncidents(filter *utils.ListIncidentsFilter, opts ...utils.QueryOption) ([]*models.Incident, error) {
	var incidents []*models.Incident

	db := r.db.Scopes(utils.Paginate(opts))

	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	if filter.AlarmName != nil {
		db = db.Where("alarm_name = ?", *filter.AlarmName)
	}

	if err := db.Find(&incidents).Error; err != nil {
		return nil, err
	}

	return incidents, nil
}
