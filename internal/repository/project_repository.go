package repository

import (
	"builddesk-estimates/internal/models"
)

type ProjectRepository struct {
	db *Database
}

func NewProjectRepository(db *Database) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

func (r *ProjectRepository) Delete(id uint) error {
	return r.db.Delete(&models.Project{}, id).Error
}

func (r *ProjectRepository) List(searchTerm string, limit, offset int) ([]models.Project, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	if searchTerm != "" {
		searchPattern := "%" + searchTerm + "%"
		query = query.Where("name LIKE ? OR site_address LIKE ?", searchPattern, searchPattern)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	query = query.Order("name ASC")

	err := query.Find(&projects).Error
	return projects, err
}
