package repository

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB

	Incident  *IncidentRepository
	Plan      *PlanRepository
	ActionLog *ActionLogRepository
	Lock      *LockRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:        db,
		Incident:  NewIncidentRepository(db),
		Plan:      NewPlanRepository(db),
		ActionLog: NewActionLogRepository(db),
		Lock:      NewLockRepository(db),
	}
}
