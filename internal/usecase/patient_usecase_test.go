package usecase

import (
	"context"
	"errors"
	"testing"

	"hospital-management/internal/delivery/dto"
)

func TestUpdateMyProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.createPatient(t, "alice", "Alice")

	age := 41
	updated, err := env.patients.UpdateMyProfile(ctx, alice, &dto.UpdatePatientProfileRequest{Age: &age, Contact: "555-0199"})
	if err != nil {
		t.Fatalf("UpdateMyProfile: %v", err)
	}
	if updated.Name != "Alice" {
		t.Errorf("Name = %q, want unchanged Alice", updated.Name)
	}
	if updated.Age == nil || *updated.Age != 41 {
		t.Errorf("Age = %v, want 41", updated.Age)
	}

	got, err := env.patients.GetMyProfile(ctx, alice)
	if err != nil {
		t.Fatalf("GetMyProfile: %v", err)
	}
	if got.Contact != "555-0199" || got.Username != "alice" {
		t.Errorf("GetMyProfile = %+v", got)
	}

	if _, err := env.patients.UpdateMyProfile(ctx, env.admin, &dto.UpdatePatientProfileRequest{Name: "Admin"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("admin UpdateMyProfile error = %v, want ErrForbidden", err)
	}

	list, err := env.patients.ListPatients(ctx, env.admin)
	if err != nil {
		t.Fatalf("ListPatients: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("Total = %d, want 1", list.Total)
	}
	if _, err := env.patients.ListPatients(ctx, alice); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient ListPatients error = %v, want ErrForbidden", err)
	}
}
