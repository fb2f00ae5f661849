package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bibliaplan/internal/db"
)

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		completedDays int
		unlocked      []string
	}{
		{0, nil},
		{1, []string{"primeiro-dia"}},
		{6, []string{"primeiro-dia"}},
		{7, []string{"primeiro-dia", "uma-semana"}},
		{90, []string{"primeiro-dia", "uma-semana", "um-mes", "tres-meses"}},
		{200, []string{"primeiro-dia", "uma-semana", "um-mes", "tres-meses", "meio-ano"}},
		// "completo" exige exatamente 365, não um limiar de passagem.
		{364, []string{"primeiro-dia", "uma-semana", "um-mes", "tres-meses", "meio-ano"}},
		{365, []string{"primeiro-dia", "uma-semana", "um-mes", "tres-meses", "meio-ano", "completo"}},
	}

	for _, tc := range cases {
		statuses := Evaluate(tc.completedDays)
		if len(statuses) != len(milestones) {
			t.Fatalf("Evaluate(%d) returned %d statuses, want %d", tc.completedDays, len(statuses), len(milestones))
		}

		var got []string
		for _, status := range statuses {
			if status.Unlocked {
				got = append(got, status.ID)
			}
		}
		if len(got) != len(tc.unlocked) {
			t.Fatalf("Evaluate(%d) unlocked %v, want %v", tc.completedDays, got, tc.unlocked)
		}
		for i := range got {
			if got[i] != tc.unlocked[i] {
				t.Fatalf("Evaluate(%d) unlocked %v, want %v", tc.completedDays, got, tc.unlocked)
			}
		}
	}
}

func TestEvaluateOrderedByThreshold(t *testing.T) {
	statuses := Evaluate(365)
	for i := 1; i < len(statuses); i++ {
		if statuses[i].Threshold <= statuses[i-1].Threshold {
			t.Fatalf("expected ascending thresholds, got %d after %d", statuses[i].Threshold, statuses[i-1].Threshold)
		}
	}
}

func TestCheckNewSkipsAwarded(t *testing.T) {
	awarded := map[string]bool{"primeiro-dia": true, "uma-semana": true}

	fresh := CheckNew(awarded, 30)
	if len(fresh) != 1 || fresh[0] != "um-mes" {
		t.Fatalf("expected only um-mes to be fresh, got %v", fresh)
	}

	// Nada novo quando tudo já foi concedido.
	awarded["um-mes"] = true
	if fresh := CheckNew(awarded, 30); len(fresh) != 0 {
		t.Fatalf("expected no fresh achievements, got %v", fresh)
	}

	// Regressão da contagem nunca devolve conquistas.
	if fresh := CheckNew(awarded, 0); len(fresh) != 0 {
		t.Fatalf("expected no fresh achievements on regression, got %v", fresh)
	}
}

func TestAchievementUnlockIsIdempotent(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	first := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	svc := NewAchievementService(db.DB).WithClock(fixedClock(first))

	if err := svc.Unlock(1, "primeiro-dia"); err != nil {
		t.Fatalf("Unlock returned error: %v", err)
	}

	// Segunda gravação não é erro e preserva o carimbo original.
	svc.WithClock(fixedClock(first.Add(48 * time.Hour)))
	if err := svc.Unlock(1, "primeiro-dia"); err != nil {
		t.Fatalf("repeated Unlock returned error: %v", err)
	}

	var rows []db.Achievement
	if err := db.DB.Where("user_id = ?", 1).Find(&rows).Error; err != nil {
		t.Fatalf("load achievements: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(rows))
	}
	if !rows[0].UnlockedAt.Equal(first) {
		t.Fatalf("expected original timestamp %v, got %v", first, rows[0].UnlockedAt)
	}
}

func TestAchievementUnlockRejectsUnknownID(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAchievementService(db.DB)
	if err := svc.Unlock(1, "dois-dias"); !errors.Is(err, ErrUnknownAchievement) {
		t.Fatalf("Unlock = %v, want ErrUnknownAchievement", err)
	}
}

func TestAchievementAwardedSet(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAchievementService(db.DB)
	for _, id := range []string{"primeiro-dia", "uma-semana"} {
		if err := svc.Unlock(1, id); err != nil {
			t.Fatalf("Unlock returned error: %v", err)
		}
	}

	set, err := svc.AwardedSet(1)
	if err != nil {
		t.Fatalf("AwardedSet returned error: %v", err)
	}
	if len(set) != 2 || !set["primeiro-dia"] || !set["uma-semana"] {
		t.Fatalf("unexpected awarded set %v", set)
	}

	// Conjunto de outro usuário fica vazio.
	other, err := svc.AwardedSet(2)
	if err != nil {
		t.Fatalf("AwardedSet returned error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty set for other user, got %v", other)
	}
}
