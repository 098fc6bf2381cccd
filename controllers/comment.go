package controllers

import (
	"application-evaluator-api/config"
	"application-evaluator-api/middleware"
	"application-evaluator-api/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CommentRequest struct {
	Application    int    `json:"application" binding:"required"`
	CriterionGroup *int   `json:"criterion_group"`
	Comment        string `json:"comment" binding:"required"`
}

// CreateComment records the viewer's comment on an application, optionally
// attached to one criterion group.
func CreateComment(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var app models.Application
	if err := config.DB.Where("application_id = ?", req.Application).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if req.CriterionGroup != nil {
		var group models.CriterionGroup
		if err := config.DB.Where("group_id = ? AND round_id = ?", *req.CriterionGroup, app.RoundID).
			First(&group).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Criterion group does not belong to the application's round"})
			return
		}
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

	comment := models.Comment{
		ApplicationID:    app.ApplicationID,
		CriterionGroupID: req.CriterionGroup,
		EvaluatorID:      viewer.UserID,
		Text:             req.Comment,
	}

	if err := config.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// UpdateComment changes the text of the viewer's own comment.
func UpdateComment(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	comment, ok := ownComment(c, viewer)
	if !ok {
		return
	}

	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment.Text = req.Comment
	if err := config.DB.Save(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment removes the viewer's own comment.
func DeleteComment(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	comment, ok := ownComment(c, viewer)
	if !ok {
		return
	}

	if err := config.DB.Delete(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// ownComment mirrors ownScore for comments: own rows only, frozen after the
// organization submits.
func ownComment(c *gin.Context, viewer *models.User) (*models.Comment, bool) {
	var comment models.Comment
	if err := config.DB.Where("comment_id = ? AND evaluator_id = ?", c.Param("id"), viewer.UserID).
		First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}

	var app models.Application
	if err := config.DB.Where("application_id = ?", comment.ApplicationID).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}

	frozen, err := evaluationFrozen(app.RoundID, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check round state"})
		return nil, false
	}
	if frozen {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}

	return &comment, true
}
