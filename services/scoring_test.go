package services

import (
	"errors"
	"math"
	"testing"

	"application-evaluator-api/models"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testOrg(id int, name string) models.Organization {
	return models.Organization{OrganizationID: id, Name: name}
}

func testUser(id int, orgs ...models.Organization) models.User {
	return models.User{UserID: id, Organizations: orgs}
}

func testScore(criterionID int, evaluator models.User, value float64) models.Score {
	return models.Score{CriterionID: criterionID, EvaluatorID: evaluator.UserID, Evaluator: evaluator, Value: value}
}

func TestCompositeScoreEvaluatorsAverage(t *testing.T) {
	round := models.ApplicationRound{
		ScoringModel: models.ScoringModelEvaluatorsAverage,
		Criteria:     []models.Criterion{{CriterionID: 1, Name: "Goodness", Weight: 1}},
	}
	evaluator := testUser(1, testOrg(1, "Helsinki"))
	app := models.Application{}

	// An application with no scores scores exactly 0.
	if got := CompositeScore(&round, &app); got != 0 {
		t.Fatalf("expected 0 for unscored application, got %v", got)
	}

	// A single score on the single criterion is returned as-is.
	app.Scores = append(app.Scores, testScore(1, evaluator, 5))
	if got := CompositeScore(&round, &app); !floatEquals(got, 5) {
		t.Fatalf("expected 5, got %v", got)
	}

	// An unscored criterion keeps its weight in the divisor and pulls the
	// average down.
	round.Criteria = append(round.Criteria, models.Criterion{CriterionID: 2, Name: "Awesomeness", Weight: 2})
	if got := CompositeScore(&round, &app); !floatEquals(got, 5.0/3) {
		t.Fatalf("expected %v, got %v", 5.0/3, got)
	}

	// Scores on all criteria give the plain weighted average.
	app.Scores = append(app.Scores, testScore(2, evaluator, 3))
	if got := CompositeScore(&round, &app); !floatEquals(got, (2*3+5)/3.0) {
		t.Fatalf("expected %v, got %v", (2*3+5)/3.0, got)
	}

	// Multiple evaluators on the same criterion are averaged before
	// weighting, not summed.
	evaluator2 := testUser(2, testOrg(2, "Tallinn"))
	app.Scores = append(app.Scores, testScore(2, evaluator2, 4))
	if got := CompositeScore(&round, &app); !floatEquals(got, (2*3.5+5)/3.0) {
		t.Fatalf("expected %v, got %v", (2*3.5+5)/3.0, got)
	}
}

func TestCompositeScoreOrganizationsAverage(t *testing.T) {
	round := models.ApplicationRound{
		ScoringModel: models.ScoringModelOrganizationsAverage,
		Criteria:     []models.Criterion{{CriterionID: 1, Weight: 1}},
	}
	orgX := testOrg(1, "X")
	orgY := testOrg(2, "Y")
	a := testUser(1, orgX)
	b := testUser(2, orgY)
	c := testUser(3, orgY)

	app := models.Application{Scores: []models.Score{
		testScore(1, a, 5),
		testScore(1, b, 3),
		testScore(1, c, 5),
	}}

	// Org X mean 5, org Y mean 4; the criterion contributes the mean of the
	// per-organization means, not the raw 4-evaluator mean of 13/3.
	if got := CompositeScore(&round, &app); !floatEquals(got, 4.5) {
		t.Fatalf("expected 4.5, got %v", got)
	}

	// The evaluators average over the same scores differs, which is the whole
	// point of the two models.
	round.ScoringModel = models.ScoringModelEvaluatorsAverage
	if got := CompositeScore(&round, &app); !floatEquals(got, 13.0/3) {
		t.Fatalf("expected %v, got %v", 13.0/3, got)
	}
}

func TestCompositeScoreOrganizationsAverageExcludesOrglessEvaluators(t *testing.T) {
	round := models.ApplicationRound{
		ScoringModel: models.ScoringModelOrganizationsAverage,
		Criteria:     []models.Criterion{{CriterionID: 1, Weight: 1}},
	}
	orgX := testOrg(1, "X")
	member := testUser(1, orgX)
	loner := testUser(2)

	app := models.Application{Scores: []models.Score{
		testScore(1, member, 4),
		testScore(1, loner, 1),
	}}

	if got := CompositeScore(&round, &app); !floatEquals(got, 4) {
		t.Fatalf("expected the org-less evaluator's score to be excluded, got %v", got)
	}

	// Only org-less scores exist: the criterion has no contribution.
	app.Scores = []models.Score{testScore(1, loner, 1)}
	if got := CompositeScore(&round, &app); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestCompositeScoreZeroTotalWeight(t *testing.T) {
	round := models.ApplicationRound{
		Criteria: []models.Criterion{{CriterionID: 1, Weight: 0}},
	}
	app := models.Application{Scores: []models.Score{testScore(1, testUser(1), 5)}}

	if got := CompositeScore(&round, &app); got != 0 {
		t.Fatalf("expected 0 when total weight is 0, got %v", got)
	}
}

func TestCompositeScoreIdempotent(t *testing.T) {
	round := models.ApplicationRound{
		Criteria: []models.Criterion{{CriterionID: 1, Weight: 1}, {CriterionID: 2, Weight: 3}},
	}
	app := models.Application{Scores: []models.Score{
		testScore(1, testUser(1), 5),
		testScore(2, testUser(2), 2),
	}}

	first := CompositeScore(&round, &app)
	second := CompositeScore(&round, &app)
	if first != second {
		t.Fatalf("expected identical results, got %v and %v", first, second)
	}
}

func TestGroupScore(t *testing.T) {
	threshold := 4.0
	round := models.ApplicationRound{
		ScoringModel: models.ScoringModelEvaluatorsAverage,
		CriterionGroups: []models.CriterionGroup{
			{GroupID: 1, Name: "Impact", Threshold: &threshold},
			{GroupID: 2, Name: "Feasibility"},
		},
		Criteria: []models.Criterion{
			{CriterionID: 1, GroupID: intptr(1), Weight: 1},
			{CriterionID: 2, GroupID: intptr(1), Weight: 3},
			{CriterionID: 3, GroupID: intptr(2), Weight: 10},
		},
	}
	evaluator := testUser(1)
	app := models.Application{Scores: []models.Score{
		testScore(1, evaluator, 2),
		testScore(2, evaluator, 4),
		testScore(3, evaluator, 1),
	}}

	group := &round.CriterionGroups[0]
	score, below, err := GroupScore(&round, &app, group)
	if err != nil {
		t.Fatalf("GroupScore returned error: %v", err)
	}
	// (2*1 + 4*3) / 4 = 3.5; criterion 3 belongs to the other group.
	if !floatEquals(score, 3.5) {
		t.Fatalf("expected 3.5, got %v", score)
	}
	if !below {
		t.Fatalf("expected score below threshold %v", threshold)
	}

	// Raising the group above its threshold flips the flag only.
	app.Scores[0].Value = 8
	score, below, err = GroupScore(&round, &app, group)
	if err != nil {
		t.Fatalf("GroupScore returned error: %v", err)
	}
	if !floatEquals(score, 5) {
		t.Fatalf("expected 5, got %v", score)
	}
	if below {
		t.Fatalf("expected score at or above threshold")
	}

	// A group without a threshold is never below it.
	_, below, err = GroupScore(&round, &app, &round.CriterionGroups[1])
	if err != nil {
		t.Fatalf("GroupScore returned error: %v", err)
	}
	if below {
		t.Fatalf("expected no threshold violation for threshold-less group")
	}
}

func TestGroupScoreIncludesNestedGroups(t *testing.T) {
	round := models.ApplicationRound{
		CriterionGroups: []models.CriterionGroup{
			{GroupID: 1, Name: "Root"},
			{GroupID: 2, Name: "Child", ParentID: intptr(1)},
			{GroupID: 3, Name: "Grandchild", ParentID: intptr(2)},
		},
		Criteria: []models.Criterion{
			{CriterionID: 1, GroupID: intptr(1), Weight: 1},
			{CriterionID: 2, GroupID: intptr(3), Weight: 1},
		},
	}
	evaluator := testUser(1)
	app := models.Application{Scores: []models.Score{
		testScore(1, evaluator, 2),
		testScore(2, evaluator, 4),
	}}

	score, _, err := GroupScore(&round, &app, &round.CriterionGroups[0])
	if err != nil {
		t.Fatalf("GroupScore returned error: %v", err)
	}
	if !floatEquals(score, 3) {
		t.Fatalf("expected nested criteria to be included, got %v", score)
	}
}

func TestGroupScoreRejectsOrganizationsAverage(t *testing.T) {
	round := models.ApplicationRound{
		ScoringModel:    models.ScoringModelOrganizationsAverage,
		CriterionGroups: []models.CriterionGroup{{GroupID: 1}},
	}
	app := models.Application{}

	_, _, err := GroupScore(&round, &app, &round.CriterionGroups[0])
	if !errors.Is(err, ErrGroupScoringModel) {
		t.Fatalf("expected ErrGroupScoringModel, got %v", err)
	}
}

func intptr(v int) *int {
	return &v
}
