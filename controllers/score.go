package controllers

import (
	"application-evaluator-api/config"
	"application-evaluator-api/middleware"
	"application-evaluator-api/models"
	"application-evaluator-api/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ScoreRequest struct {
	Application int     `json:"application" binding:"required"`
	Criterion   int     `json:"criterion" binding:"required"`
	Score       float64 `json:"score"`
}

// evaluationFrozen reports whether the viewer's organization has already
// submitted the round, which freezes all of its scores and comments.
func evaluationFrozen(roundID int, viewer *models.User) (bool, error) {
	org := models.HomeOrganization(viewer)
	if org == nil {
		return false, nil
	}
	return services.OrganizationHasSubmittedScores(config.DB, roundID, org.OrganizationID)
}

// CreateScore records the viewer's score for one criterion of an application.
func CreateScore(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var app models.Application
	if err := config.DB.Preload("EvaluatingOrganizations").
		Where("application_id = ?", req.Application).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var criterion models.Criterion
	if err := config.DB.Where("criterion_id = ? AND round_id = ?", req.Criterion, app.RoundID).
		First(&criterion).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Criterion does not belong to the application's round"})
		return
	}

	frozen, err := evaluationFrozen(app.RoundID, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check round state"})
		return
	}
	if frozen {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	score := models.Score{
		ApplicationID: app.ApplicationID,
		CriterionID:   criterion.CriterionID,
		EvaluatorID:   viewer.UserID,
		Value:         req.Score,
	}

	if err := config.DB.Create(&score).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create score"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"score": score})
}

// UpdateScore changes the value of the viewer's own score.
func UpdateScore(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	score, ok := ownScore(c, viewer)
	if !ok {
		return
	}

	var req struct {
		Score float64 `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score.Value = req.Score
	if err := config.DB.Save(score).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"score": score})
}

// DeleteScore removes the viewer's own score.
func DeleteScore(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	score, ok := ownScore(c, viewer)
	if !ok {
		return
	}

	if err := config.DB.Delete(score).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Score deleted"})
}

// ownScore loads the viewer's score by id, refusing rows of other evaluators
// and rows frozen by a submittal. Failures are reported as 404 so the
// response does not reveal other evaluators' rows.
func ownScore(c *gin.Context, viewer *models.User) (*models.Score, bool) {
	var score models.Score
	if err := config.DB.Where("score_id = ? AND evaluator_id = ?", c.Param("id"), viewer.UserID).
		First(&score).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
		return nil, false
	}

	var app models.Application
	if err := config.DB.Where("application_id = ?", score.ApplicationID).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
		return nil, false
	}

	frozen, err := evaluationFrozen(app.RoundID, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check round state"})
		return nil, false
	}
	if frozen {
		c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
		return nil, false
	}

	return &score, true
}
