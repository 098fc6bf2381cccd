package models

import (
	"testing"
)

func TestTotalWeight(t *testing.T) {
	round := ApplicationRound{Criteria: []Criterion{
		{Weight: 1},
		{Weight: 2.5},
		{Weight: 0},
	}}
	if got := round.TotalWeight(); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
}

func TestSubmittedOrganizationIDs(t *testing.T) {
	round := ApplicationRound{Submittals: []ApplicationRoundSubmittal{
		{OrganizationID: 1, UserID: 1},
		{OrganizationID: 1, UserID: 2},
		{OrganizationID: 3, UserID: 3},
	}}

	ids := round.SubmittedOrganizationIDs()
	if len(ids) != 2 || !ids[1] || !ids[3] {
		t.Fatalf("unexpected submitted organizations: %v", ids)
	}

	org := Organization{OrganizationID: 3}
	if !round.OrganizationHasSubmitted(&org) {
		t.Fatalf("expected organization 3 to have submitted")
	}
	if round.OrganizationHasSubmitted(&Organization{OrganizationID: 2}) {
		t.Fatalf("expected organization 2 to not have submitted")
	}
	if round.OrganizationHasSubmitted(nil) {
		t.Fatalf("expected nil organization to not have submitted")
	}
}

func TestSortGroupsAndCriteria(t *testing.T) {
	groups := []CriterionGroup{
		{Name: "B", Order: 1},
		{Name: "A", Order: 1},
		{Name: "C", Order: 0},
	}
	SortGroups(groups)
	if groups[0].Name != "C" || groups[1].Name != "A" || groups[2].Name != "B" {
		t.Fatalf("unexpected group order: %v %v %v", groups[0].Name, groups[1].Name, groups[2].Name)
	}

	criteria := []Criterion{
		{Name: "Z", Order: 2},
		{Name: "M", Order: 1},
		{Name: "A", Order: 2},
	}
	SortCriteria(criteria)
	if criteria[0].Name != "M" || criteria[1].Name != "A" || criteria[2].Name != "Z" {
		t.Fatalf("unexpected criterion order: %v %v %v", criteria[0].Name, criteria[1].Name, criteria[2].Name)
	}
}
