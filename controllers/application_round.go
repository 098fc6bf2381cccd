package controllers

import (
	"application-evaluator-api/config"
	"application-evaluator-api/middleware"
	"application-evaluator-api/models"
	"application-evaluator-api/services"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// roundQuery preloads everything the visibility gate and the scoring engine
// need, so serialization never goes back to the database.
func roundQuery() *gorm.DB {
	return config.DB.
		Preload("Admin").
		Preload("Evaluators").
		Preload("Criteria").
		Preload("CriterionGroups").
		Preload("Submittals.Organization").
		Preload("Applications.EvaluatingOrganizations").
		Preload("Applications.ApprovedBy").
		Preload("Applications.Scores.Evaluator.Organizations", func(db *gorm.DB) *gorm.DB {
			return db.Order("organizations.organization_id")
		}).
		Preload("Applications.Comments.Evaluator.Organizations", func(db *gorm.DB) *gorm.DB {
			return db.Order("organizations.organization_id")
		})
}

// roundVisibleTo reports whether the viewer may see the round at all. Staff
// and the round admin see drafts; everyone else only published rounds they
// were allocated to, directly or through an organization.
func roundVisibleTo(round *models.ApplicationRound, viewer *models.User) bool {
	if viewer == nil {
		return false
	}
	if viewer.IsStaff || round.IsRoundAdmin(viewer) {
		return true
	}
	if !round.Published {
		return false
	}
	if round.IsRoundEvaluator(viewer) {
		return true
	}
	for _, app := range round.Applications {
		if app.IsAllocatedTo(viewer) {
			return true
		}
	}
	return false
}

func serializeEvaluator(u *models.User) gin.H {
	var orgName interface{}
	if org := models.HomeOrganization(u); org != nil {
		orgName = org.Name
	}
	return gin.H{
		"id":           u.UserID,
		"username":     u.Username,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"organization": orgName,
	}
}

func serializeApplication(round *models.ApplicationRound, app *models.Application, policy services.VisibilityPolicy) gin.H {
	visibleScores := policy.FilterScores(app.Scores)
	visibleComments := policy.FilterComments(app.Comments)

	scores := make([]gin.H, 0, len(visibleScores))
	for _, s := range visibleScores {
		scores = append(scores, gin.H{
			"id":          s.ScoreID,
			"application": s.ApplicationID,
			"criterion":   s.CriterionID,
			"score":       s.Value,
			"evaluator":   serializeEvaluator(&s.Evaluator),
		})
	}

	comments := make([]gin.H, 0, len(visibleComments))
	for _, cm := range visibleComments {
		comments = append(comments, gin.H{
			"id":              cm.CommentID,
			"application":     cm.ApplicationID,
			"criterion_group": cm.CriterionGroupID,
			"comment":         cm.Text,
			"created_at":      cm.CreatedAt,
			"evaluator":       serializeEvaluator(&cm.Evaluator),
		})
	}

	orgNames := make([]string, 0, len(app.EvaluatingOrganizations))
	for _, org := range app.EvaluatingOrganizations {
		orgNames = append(orgNames, org.Name)
	}
	sort.Strings(orgNames)

	// The composite is computed over the subset the viewer may see, so a
	// restricted evaluator never learns other organizations' numbers through
	// the aggregate.
	scoped := *app
	scoped.Scores = visibleScores

	return gin.H{
		"id":                       app.ApplicationID,
		"name":                     app.Name,
		"description":              app.Description,
		"approved":                 app.Approved,
		"approved_by":              app.ApprovedByID,
		"evaluating_organizations": orgNames,
		"scores":                   scores,
		"comments":                 comments,
		"score":                    services.CompositeScore(round, &scoped),
	}
}

func serializeRound(round *models.ApplicationRound, viewer *models.User) gin.H {
	policy := services.NewVisibilityPolicy(viewer, round)

	criteria := append([]models.Criterion(nil), services.VisibleCriteria(round, viewer)...)
	models.SortCriteria(criteria)
	criteriaOut := make([]gin.H, 0, len(criteria))
	for _, c := range criteria {
		criteriaOut = append(criteriaOut, gin.H{
			"id":     c.CriterionID,
			"name":   c.Name,
			"group":  c.GroupID,
			"weight": c.Weight,
		})
	}

	groups := append([]models.CriterionGroup(nil), round.CriterionGroups...)
	models.SortGroups(groups)
	groupsOut := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		groupsOut = append(groupsOut, gin.H{
			"id":        g.GroupID,
			"name":      g.Name,
			"abbr":      g.Abbr,
			"parent":    g.ParentID,
			"threshold": g.Threshold,
		})
	}

	submittedOrgs := make([]string, 0, len(round.Submittals))
	seen := map[int]bool{}
	for _, s := range round.Submittals {
		if !seen[s.OrganizationID] {
			seen[s.OrganizationID] = true
			submittedOrgs = append(submittedOrgs, s.Organization.Name)
		}
	}
	sort.Strings(submittedOrgs)

	apps := services.ApplicationsForEvaluator(round, viewer)
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	appsOut := make([]gin.H, 0, len(apps))
	for i := range apps {
		appsOut = append(appsOut, serializeApplication(round, &apps[i], policy))
	}

	evaluatorsOut := make([]gin.H, 0, len(round.Evaluators))
	for i := range round.Evaluators {
		evaluatorsOut = append(evaluatorsOut, serializeEvaluator(&round.Evaluators[i]))
	}

	return gin.H{
		"id":                      round.RoundID,
		"name":                    round.Name,
		"description":             round.Description,
		"scoring_model":           round.ScoringModel,
		"scoring_completed":       round.ScoringCompleted,
		"admin":                   round.AdminID,
		"evaluators":              evaluatorsOut,
		"criteria":                criteriaOut,
		"criterion_groups":        groupsOut,
		"submitted_organizations": submittedOrgs,
		"applications":            appsOut,
	}
}

// GetApplicationRounds returns the rounds visible to the viewer.
func GetApplicationRounds(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	var rounds []models.ApplicationRound
	if err := roundQuery().Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application rounds"})
		return
	}

	out := make([]gin.H, 0, len(rounds))
	for i := range rounds {
		if roundVisibleTo(&rounds[i], viewer) {
			out = append(out, serializeRound(&rounds[i], viewer))
		}
	}

	c.JSON(http.StatusOK, out)
}

// GetApplicationRound returns one round by id.
func GetApplicationRound(c *gin.Context) {
	viewer := middleware.CurrentUser(c)
	id := c.Param("id")

	var round models.ApplicationRound
	if err := roundQuery().Where("round_id = ?", id).First(&round).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application round not found"})
		return
	}

	if !roundVisibleTo(&round, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application round not found"})
		return
	}

	c.JSON(http.StatusOK, serializeRound(&round, viewer))
}

// SubmitApplicationRound finalizes the viewer's organization scores for the
// round. An incomplete organization gets a 404, matching the round lookup, so
// the response never reveals which part of the check failed.
func SubmitApplicationRound(c *gin.Context) {
	viewer := middleware.CurrentUser(c)
	id := c.Param("id")

	var round models.ApplicationRound
	if err := roundQuery().Where("round_id = ?", id).First(&round).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application round not found"})
		return
	}

	if !roundVisibleTo(&round, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application round not found"})
		return
	}

	if _, err := services.Submit(config.DB, round.RoundID, viewer); err != nil {
		if errors.Is(err, services.ErrIncompleteScoring) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application round not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit scores"})
		return
	}

	// Return the fresh round state, now including the new submittal.
	var updated models.ApplicationRound
	if err := roundQuery().Where("round_id = ?", round.RoundID).First(&updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application round"})
		return
	}

	c.JSON(http.StatusOK, serializeRound(&updated, viewer))
}

// CloneApplicationRound duplicates a round's criterion configuration into a
// new draft round. Staff only.
func CloneApplicationRound(c *gin.Context) {
	id := c.Param("id")

	var round models.ApplicationRound
	if err := config.DB.
		Preload("Criteria").
		Preload("CriterionGroups").
		Where("round_id = ?", id).
		First(&round).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application round not found"})
		return
	}

	clone, err := services.CloneRound(config.DB, &round)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clone application round"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"round_id": clone.RoundID,
		"name":     clone.Name,
	})
}
