package services

import (
	"application-evaluator-api/models"
)

// visibilityMode is the single decision the gate makes for a viewer. It is
// resolved once per (viewer, round) pair and then applied uniformly to score
// and comment collections, which share the same evaluator-based predicate.
type visibilityMode int

const (
	// seeNothing: anonymous viewers.
	seeNothing visibilityMode = iota
	// seeAll: staff, the round admin, or anyone once scoring is completed.
	seeAll
	// seeOwn: evaluators without a home organization see only their own work.
	seeOwn
	// seeSubmittedUnion: members of a submitted organization see the work of
	// every submitted organization.
	seeSubmittedUnion
	// seeOwnOrganization: everyone else sees only their own organization.
	seeOwnOrganization
)

// VisibilityPolicy filters scores and comments of one application round down
// to the subset a viewer may see. Lack of permission is expressed as absence
// of data, never as an error.
type VisibilityPolicy struct {
	viewer        *models.User
	mode          visibilityMode
	homeOrgID     int
	submittedOrgs map[int]bool
	// criterionOK restricts scores to the criteria the viewer may see; nil
	// means unrestricted (privileged viewers).
	criterionOK map[int]bool
}

// NewVisibilityPolicy resolves the visibility rules for one viewer and round.
// The round must have Submittals preloaded, and the viewer (when present)
// must have Organizations preloaded.
func NewVisibilityPolicy(viewer *models.User, round *models.ApplicationRound) VisibilityPolicy {
	policy := VisibilityPolicy{viewer: viewer, submittedOrgs: round.SubmittedOrganizationIDs()}

	home := models.HomeOrganization(viewer)
	switch {
	case viewer == nil:
		policy.mode = seeNothing
	case viewer.IsStaff || round.ScoringCompleted || round.IsRoundAdmin(viewer):
		policy.mode = seeAll
	case home == nil:
		policy.mode = seeOwn
	case policy.submittedOrgs[home.OrganizationID]:
		policy.mode = seeSubmittedUnion
		policy.homeOrgID = home.OrganizationID
	default:
		policy.mode = seeOwnOrganization
		policy.homeOrgID = home.OrganizationID
	}

	// Restricted viewers must not learn non-public criterion values through
	// score rows their criteria listing refuses to show.
	if policy.mode != seeNothing && policy.mode != seeAll {
		policy.criterionOK = make(map[int]bool, len(round.Criteria))
		for _, c := range VisibleCriteria(round, viewer) {
			policy.criterionOK[c.CriterionID] = true
		}
	}
	return policy
}

// evaluatorVisible applies the shared predicate to the author of a score or
// comment. The evaluator must have Organizations preloaded.
func (p VisibilityPolicy) evaluatorVisible(evaluator *models.User) bool {
	switch p.mode {
	case seeAll:
		return true
	case seeOwn:
		return evaluator.UserID == p.viewer.UserID
	case seeSubmittedUnion:
		for _, org := range evaluator.Organizations {
			if p.submittedOrgs[org.OrganizationID] {
				return true
			}
		}
		return false
	case seeOwnOrganization:
		for _, org := range evaluator.Organizations {
			if org.OrganizationID == p.homeOrgID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// FilterScores returns the scores the viewer may see.
func (p VisibilityPolicy) FilterScores(scores []models.Score) []models.Score {
	visible := make([]models.Score, 0, len(scores))
	for _, s := range scores {
		if p.criterionOK != nil && !p.criterionOK[s.CriterionID] {
			continue
		}
		if p.evaluatorVisible(&s.Evaluator) {
			visible = append(visible, s)
		}
	}
	return visible
}

// FilterComments returns the comments the viewer may see.
func (p VisibilityPolicy) FilterComments(comments []models.Comment) []models.Comment {
	visible := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if p.evaluatorVisible(&c.Evaluator) {
			visible = append(visible, c)
		}
	}
	return visible
}

// VisibleCriteria returns the round's criteria the viewer may see: public
// criteria only, unless the viewer is staff, administers the round, scoring
// is completed, or the viewer's organization has already submitted.
func VisibleCriteria(round *models.ApplicationRound, viewer *models.User) []models.Criterion {
	if viewer == nil {
		return nil
	}
	if viewer.IsStaff || round.ScoringCompleted || round.IsRoundAdmin(viewer) ||
		round.OrganizationHasSubmitted(models.HomeOrganization(viewer)) {
		return round.Criteria
	}
	return round.PublicCriteria()
}

// ApplicationsForEvaluator returns the round's applications the viewer may
// see. Staff, the round admin and directly allocated round evaluators see
// everything. Members of a submitted organization see the applications any
// submitted organization has scored. Everyone else sees the applications
// allocated to one of their organizations. Soft-hidden applications are only
// shown to staff and the round admin.
func ApplicationsForEvaluator(round *models.ApplicationRound, viewer *models.User) []models.Application {
	if viewer == nil {
		return nil
	}
	if viewer.IsStaff || round.IsRoundAdmin(viewer) {
		// Copied so callers can reorder the result without touching the
		// preloaded round.
		return append([]models.Application(nil), round.Applications...)
	}

	submitted := round.SubmittedOrganizationIDs()
	home := models.HomeOrganization(viewer)
	viewerSubmitted := home != nil && submitted[home.OrganizationID]

	visible := make([]models.Application, 0, len(round.Applications))
	for _, app := range round.Applications {
		if app.Hidden {
			continue
		}
		switch {
		case round.IsRoundEvaluator(viewer):
			visible = append(visible, app)
		case viewerSubmitted:
			if hasScoreFromOrganizations(&app, submitted) {
				visible = append(visible, app)
			}
		default:
			if app.IsAllocatedTo(viewer) {
				visible = append(visible, app)
			}
		}
	}
	return visible
}

// hasScoreFromOrganizations reports whether any score on the application was
// authored by a member of one of the given organizations.
func hasScoreFromOrganizations(app *models.Application, orgIDs map[int]bool) bool {
	for _, s := range app.Scores {
		for _, org := range s.Evaluator.Organizations {
			if orgIDs[org.OrganizationID] {
				return true
			}
		}
	}
	return false
}
