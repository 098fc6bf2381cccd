package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"application-evaluator-api/models"
)

// ErrIncompleteScoring is returned when an organization tries to submit a
// round before every allocated application has a score for every public
// criterion from one of its evaluators.
var ErrIncompleteScoring = errors.New("organization has not completed scoring for the round")

// OrganizationScoresCompleted reports whether the organization may submit the
// round: each application allocated to it must have at least one score per
// public criterion from a member evaluator. The round must have Criteria and
// Applications (with Scores and Score.Evaluator.Organizations) preloaded.
func OrganizationScoresCompleted(round *models.ApplicationRound, org *models.Organization) bool {
	if org == nil {
		return false
	}
	publicCriteria := round.PublicCriteria()

	allocated := false
	for _, app := range round.Applications {
		if !allocatedToOrganization(&app, org.OrganizationID) {
			continue
		}
		allocated = true
		for _, criterion := range publicCriteria {
			if !scoredByOrganization(&app, criterion.CriterionID, org.OrganizationID) {
				return false
			}
		}
	}
	return allocated
}

func allocatedToOrganization(app *models.Application, orgID int) bool {
	for _, org := range app.EvaluatingOrganizations {
		if org.OrganizationID == orgID {
			return true
		}
	}
	return false
}

func scoredByOrganization(app *models.Application, criterionID, orgID int) bool {
	for _, s := range app.Scores {
		if s.CriterionID != criterionID {
			continue
		}
		for _, org := range s.Evaluator.Organizations {
			if org.OrganizationID == orgID {
				return true
			}
		}
	}
	return false
}

// Submit finalizes the user's organization scores for the round. The
// completeness check and the submittal insert run in one transaction with the
// round row locked, so a score edit racing with the submit cannot produce a
// submittal for an incomplete organization. Submitting twice for the same
// (round, organization, user) is a no-op thanks to the unique key.
func Submit(db *gorm.DB, roundID int, user *models.User) (*models.ApplicationRoundSubmittal, error) {
	org := models.HomeOrganization(user)
	if org == nil {
		return nil, ErrIncompleteScoring
	}

	var submittal models.ApplicationRoundSubmittal
	err := db.Transaction(func(tx *gorm.DB) error {
		var round models.ApplicationRound
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Criteria").
			Preload("Applications.EvaluatingOrganizations").
			Preload("Applications.Scores.Evaluator.Organizations").
			Where("round_id = ?", roundID).
			First(&round).Error; err != nil {
			return err
		}

		if !OrganizationScoresCompleted(&round, org) {
			return ErrIncompleteScoring
		}

		submittal = models.ApplicationRoundSubmittal{
			RoundID:        round.RoundID,
			OrganizationID: org.OrganizationID,
			UserID:         user.UserID,
		}
		return tx.Where(models.ApplicationRoundSubmittal{
			RoundID:        round.RoundID,
			OrganizationID: org.OrganizationID,
			UserID:         user.UserID,
		}).FirstOrCreate(&submittal).Error
	})
	if err != nil {
		return nil, err
	}
	return &submittal, nil
}

// OrganizationHasSubmittedScores reports whether any member of the
// organization has a submittal row for the round. This is the canonical
// submitted-organization predicate used by both the visibility gate and the
// score/comment freeze.
func OrganizationHasSubmittedScores(db *gorm.DB, roundID, orgID int) (bool, error) {
	var count int64
	err := db.Model(&models.ApplicationRoundSubmittal{}).
		Where("round_id = ? AND organization_id = ?", roundID, orgID).
		Count(&count).Error
	return count > 0, err
}
