package models

import (
	"testing"
)

func TestHomeOrganization(t *testing.T) {
	if HomeOrganization(nil) != nil {
		t.Fatalf("expected nil for nil user")
	}

	user := User{UserID: 1}
	if HomeOrganization(&user) != nil {
		t.Fatalf("expected nil for user without organizations")
	}

	user.Organizations = []Organization{
		{OrganizationID: 5, Name: "Tallinn"},
		{OrganizationID: 2, Name: "Helsinki"},
	}

	// The home organization is the first by id regardless of load order, so
	// the resolution stays stable across queries.
	home := HomeOrganization(&user)
	if home == nil || home.OrganizationID != 2 {
		t.Fatalf("expected organization 2, got %+v", home)
	}
}

func TestFullName(t *testing.T) {
	user := User{Username: "evaluator"}
	if got := user.FullName(); got != "evaluator" {
		t.Fatalf("expected username fallback, got %q", got)
	}

	user.FirstName = "Anna"
	user.LastName = "Aalto"
	if got := user.FullName(); got != "Anna Aalto" {
		t.Fatalf("unexpected full name %q", got)
	}
}
