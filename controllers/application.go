package controllers

import (
	"application-evaluator-api/config"
	"application-evaluator-api/middleware"
	"application-evaluator-api/models"
	"application-evaluator-api/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// loadRoundForApplication fetches the application's round with the full
// evaluation context preloaded and returns the application inside it.
func loadRoundForApplication(id string) (*models.ApplicationRound, *models.Application, error) {
	var app models.Application
	if err := config.DB.Where("application_id = ?", id).First(&app).Error; err != nil {
		return nil, nil, err
	}

	var round models.ApplicationRound
	if err := roundQuery().Where("round_id = ?", app.RoundID).First(&round).Error; err != nil {
		return nil, nil, err
	}

	for i := range round.Applications {
		if round.Applications[i].ApplicationID == app.ApplicationID {
			return &round, &round.Applications[i], nil
		}
	}
	return nil, nil, nil
}

// GetApplications returns every application the viewer may evaluate, across
// all visible rounds.
func GetApplications(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	var rounds []models.ApplicationRound
	if err := roundQuery().Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	out := make([]gin.H, 0)
	for i := range rounds {
		if !roundVisibleTo(&rounds[i], viewer) {
			continue
		}
		policy := services.NewVisibilityPolicy(viewer, &rounds[i])
		apps := services.ApplicationsForEvaluator(&rounds[i], viewer)
		for j := range apps {
			out = append(out, serializeApplication(&rounds[i], &apps[j], policy))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": out,
		"total":        len(out),
	})
}

// GetApplication returns a single application with the scores and comments
// the viewer may see.
func GetApplication(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	round, app, err := loadRoundForApplication(c.Param("id"))
	if err != nil || app == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if !roundVisibleTo(round, viewer) || !applicationVisibleTo(round, app, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	policy := services.NewVisibilityPolicy(viewer, round)
	c.JSON(http.StatusOK, serializeApplication(round, app, policy))
}

func applicationVisibleTo(round *models.ApplicationRound, app *models.Application, viewer *models.User) bool {
	for _, visible := range services.ApplicationsForEvaluator(round, viewer) {
		if visible.ApplicationID == app.ApplicationID {
			return true
		}
	}
	return false
}

// ApproveApplication marks an application approved by the viewer.
func ApproveApplication(c *gin.Context) {
	setApproval(c, true)
}

// UnapproveApplication clears the approval.
func UnapproveApplication(c *gin.Context) {
	setApproval(c, false)
}

func setApproval(c *gin.Context, approved bool) {
	viewer := middleware.CurrentUser(c)

	round, app, err := loadRoundForApplication(c.Param("id"))
	if err != nil || app == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if !roundVisibleTo(round, viewer) || !applicationVisibleTo(round, app, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	updates := map[string]interface{}{
		"approved":       approved,
		"approved_by_id": nil,
	}
	if approved {
		updates["approved_by_id"] = viewer.UserID
	}

	if err := config.DB.Model(&models.Application{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application_id": app.ApplicationID,
		"approved":       approved,
		"updated_at":     time.Now(),
	})
}
