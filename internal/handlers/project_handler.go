package handlers

import (
	"log"
	"net/http"
	"strconv"

	"builddesk-estimates/internal/models"
	"builddesk-estimates/internal/repository"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectRepo  *repository.ProjectRepository
	estimateRepo *repository.EstimateRepository
}

func NewProjectHandler(projectRepo *repository.ProjectRepository, estimateRepo *repository.EstimateRepository) *ProjectHandler {
	return &ProjectHandler{projectRepo: projectRepo, estimateRepo: estimateRepo}
}

// ListProjects returns projects, optionally filtered by search term
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	searchTerm := c.Query("search")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	projects, err := h.projectRepo.List(searchTerm, limit, offset)
	if err != nil {
		log.Printf("ListProjects: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns a project with its estimates
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	project, err := h.projectRepo.GetByID(uint(projectID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	id := uint(projectID)
	estimates, _, err := h.estimateRepo.GetEstimates(&models.EstimateFilter{ProjectID: &id, PageSize: 100, Page: 1})
	if err != nil {
		log.Printf("GetProject: Error loading estimates: %v", err)
	} else {
		project.Estimates = estimates
	}

	c.JSON(http.StatusOK, project)
}

// CreateProject creates a new project
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	if project.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	if err := h.projectRepo.Create(&project); err != nil {
		log.Printf("CreateProject: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject updates an existing project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	project, err := h.projectRepo.GetByID(uint(projectID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var updates models.Project
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	project.Name = updates.Name
	project.SiteAddress = updates.SiteAddress
	project.StartDate = updates.StartDate
	project.EndDate = updates.EndDate

	if err := h.projectRepo.Update(project); err != nil {
		log.Printf("UpdateProject: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject removes a project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	if err := h.projectRepo.Delete(uint(projectID)); err != nil {
		log.Printf("DeleteProject: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
