package services_test

import (
	"testing"

	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/types"
)

// TestHourTypeCRUD tests the registry round trip
func TestHourTypeCRUD(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateHourType(db, testUser, services.HourTypeInput{
		Name:        "שעות פרונטליות",
		Description: "הוראה פרונטלית בכיתה",
		Color:       "#3B82F6",
		IsClassHour: true,
	})
	if err != nil {
		t.Fatalf("CreateHourType failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Created hour type has no id")
	}

	fetched, err := services.GetHourType(db, testUser, created.ID)
	if err != nil {
		t.Fatalf("GetHourType failed: %v", err)
	}
	if fetched.Name != created.Name || !fetched.IsClassHour {
		t.Errorf("Fetched hour type differs: %+v", fetched)
	}

	updated, err := services.UpdateHourType(db, testUser, created.ID, services.HourTypeInput{
		Name:  "שעות פרונטליות",
		Color: "#EF4444",
	})
	if err != nil {
		t.Fatalf("UpdateHourType failed: %v", err)
	}
	if updated.Color != "#EF4444" {
		t.Errorf("Color = %q, want #EF4444", updated.Color)
	}

	if err := services.DeleteHourType(db, testUser, created.ID); err != nil {
		t.Fatalf("DeleteHourType failed: %v", err)
	}
	if _, err := services.GetHourType(db, testUser, created.ID); err == nil {
		t.Error("Deleted hour type still fetchable")
	}
}

// TestHourTypeValidation tests the Hebrew validation messages
func TestHourTypeValidation(t *testing.T) {
	db := setupTestDB(t)
	createHourType(t, db, "שעות שילוב")

	cases := []struct {
		name  string
		input services.HourTypeInput
		field string
		want  string
	}{
		{
			name:  "empty name",
			input: services.HourTypeInput{Name: "  "},
			field: "name",
			want:  "שם סוג השעה הוא שדה חובה",
		},
		{
			name:  "short name",
			input: services.HourTypeInput{Name: "א"},
			field: "name",
			want:  "שם סוג השעה חייב להכיל בין 2 ל-50 תווים",
		},
		{
			name:  "duplicate name",
			input: services.HourTypeInput{Name: "שעות שילוב"},
			field: "name",
			want:  "סוג שעה עם שם זה כבר קיים",
		},
		{
			name:  "bad color",
			input: services.HourTypeInput{Name: "שעות העשרה", Color: "כחול"},
			field: "color",
			want:  "צבע חייב להיות בפורמט #RRGGBB",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := services.CreateHourType(db, testUser, tc.input)
			errs, ok := err.(types.ValidationErrors)
			if !ok {
				t.Fatalf("Expected validation errors, got %v", err)
			}
			if errs[tc.field] != tc.want {
				t.Errorf("errs[%q] = %q, want %q", tc.field, errs[tc.field], tc.want)
			}
		})
	}
}

// TestHourTypesScopedToUser tests that users cannot see each other's types
func TestHourTypesScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	created := createHourType(t, db, "שעות פרונטליות")

	if _, err := services.GetHourType(db, "user-2", created.ID); err == nil {
		t.Error("Hour type visible to another user")
	}

	// A different user may reuse the name
	if _, err := services.CreateHourType(db, "user-2", services.HourTypeInput{
		Name: "שעות פרונטליות",
	}); err != nil {
		t.Errorf("Name uniqueness leaked across users: %v", err)
	}
}
