package services

import (
	"errors"
	"sort"

	"application-evaluator-api/models"
)

// ErrGroupScoringModel is returned when a group-level aggregate is requested
// for a round whose scoring model the group reporting path does not
// implement. The caller must not fall back to a different model.
var ErrGroupScoringModel = errors.New("group scores are not implemented for this scoring model")

// ScoringModel reduces the scores given for one criterion to a single value.
type ScoringModel interface {
	// CriterionMean returns the reduced value for one criterion's scores.
	// ok is false when no score contributes under this model.
	CriterionMean(scores []models.Score) (mean float64, ok bool)
}

// EvaluatorsAverage averages all raw scores for a criterion, regardless of
// which organization the evaluators belong to.
type EvaluatorsAverage struct{}

func (EvaluatorsAverage) CriterionMean(scores []models.Score) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.Value
	}
	return sum / float64(len(scores)), true
}

// OrganizationsAverage averages each organization's evaluators first, then
// averages the per-organization means. One organization fielding more
// evaluators than another does not dominate the result. Evaluators without a
// home organization are excluded. Score rows must carry
// Evaluator.Organizations preloaded.
type OrganizationsAverage struct{}

func (OrganizationsAverage) CriterionMean(scores []models.Score) (float64, bool) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, s := range scores {
		org := models.HomeOrganization(&s.Evaluator)
		if org == nil {
			continue
		}
		sums[org.OrganizationID] += s.Value
		counts[org.OrganizationID]++
	}
	if len(sums) == 0 {
		return 0, false
	}
	// Sum in a fixed order so repeated computations yield the same float.
	ids := make([]int, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	total := 0.0
	for _, id := range ids {
		total += sums[id] / float64(counts[id])
	}
	return total / float64(len(sums)), true
}

// ScoringModelFor returns the reduction strategy configured for the round.
// Unknown values fall back to the evaluators average, the round default.
func ScoringModelFor(round *models.ApplicationRound) ScoringModel {
	if round.ScoringModel == models.ScoringModelOrganizationsAverage {
		return OrganizationsAverage{}
	}
	return EvaluatorsAverage{}
}

// CompositeScore computes the application's weighted composite score over all
// of the round's criteria. Criteria nobody scored contribute nothing to the
// numerator but keep their weight in the divisor, so missing scores pull the
// average down rather than dropping out. An application with no scores at
// all, or a round with no positive total weight, scores exactly 0.
func CompositeScore(round *models.ApplicationRound, app *models.Application) float64 {
	if len(app.Scores) == 0 {
		return 0
	}
	totalWeight := round.TotalWeight()
	if totalWeight <= 0 {
		return 0
	}
	model := ScoringModelFor(round)
	total := 0.0
	for _, criterion := range round.Criteria {
		mean, ok := model.CriterionMean(app.ScoresForCriterion(criterion.CriterionID))
		if ok {
			total += mean * criterion.Weight
		}
	}
	return total / totalWeight
}

// GroupScore computes the weighted average over a criterion group's member
// criteria, including criteria of nested child groups, and compares it
// against the group's threshold. A group below its threshold is a reportable
// condition, not an error. Only rounds using the evaluators average support
// group aggregates; other models return ErrGroupScoringModel.
func GroupScore(round *models.ApplicationRound, app *models.Application, group *models.CriterionGroup) (float64, bool, error) {
	if _, ok := ScoringModelFor(round).(EvaluatorsAverage); !ok {
		return 0, false, ErrGroupScoringModel
	}
	memberGroups := groupWithDescendants(round, group)

	model := EvaluatorsAverage{}
	total := 0.0
	totalWeight := 0.0
	scored := false
	for _, criterion := range round.Criteria {
		if criterion.GroupID == nil || !memberGroups[*criterion.GroupID] {
			continue
		}
		totalWeight += criterion.Weight
		mean, ok := model.CriterionMean(app.ScoresForCriterion(criterion.CriterionID))
		if ok {
			total += mean * criterion.Weight
			scored = true
		}
	}

	score := 0.0
	if scored && totalWeight > 0 {
		score = total / totalWeight
	}
	below := group.Threshold != nil && score < *group.Threshold
	return score, below, nil
}

// groupWithDescendants returns the ids of the group and every group nested
// under it within the round.
func groupWithDescendants(round *models.ApplicationRound, group *models.CriterionGroup) map[int]bool {
	members := map[int]bool{group.GroupID: true}
	for {
		grew := false
		for _, g := range round.CriterionGroups {
			if g.ParentID != nil && members[*g.ParentID] && !members[g.GroupID] {
				members[g.GroupID] = true
				grew = true
			}
		}
		if !grew {
			return members
		}
	}
}
