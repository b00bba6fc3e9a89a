package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func newGoal(t *testing.T, svc *GoalService, target, current string) core.SavingsGoal {
	t.Helper()
	g, err := svc.Add(context.Background(), core.GoalInput{
		Name:          "Vacation",
		TargetAmount:  dec(target),
		CurrentAmount: dec(current),
		Deadline:      core.NewDate(2024, 12, 31),
	})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	return g
}

func TestGoalService_AddAmountCompletesGoal(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc := NewGoalService(memory.New(), testOptions(n))
	g := newGoal(t, svc, "500", "450")
	if g.Completed {
		t.Fatalf("goal should start incomplete")
	}

	got, found, err := svc.AddAmount(ctx, g.ID, dec("60"))
	if err != nil || !found {
		t.Fatalf("add amount: found=%v err=%v", found, err)
	}
	if !got.CurrentAmount.Equal(dec("510")) || !got.Completed {
		t.Fatalf("expected 510 and completed, got %+v", got)
	}

	changes := n.all()
	if last := changes[len(changes)-1]; last != (change{CollectionGoals, OpUpdated, g.ID}) {
		t.Fatalf("unexpected change %+v", last)
	}
}

func TestGoalService_AddStartsIncompleteWhenFunded(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), testOptions(&recordingNotifier{}))
	g := newGoal(t, svc, "500", "600")
	if g.Completed || !g.IsReached() {
		t.Fatalf("funded goal should be reached but not marked completed: %+v", g)
	}

	got, found, err := svc.AddAmount(ctx, g.ID, dec("1"))
	if err != nil || !found || !got.Completed {
		t.Fatalf("next contribution should mark it completed: %+v found=%v err=%v", got, found, err)
	}
}

func TestGoalService_AddAmountValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), testOptions(&recordingNotifier{}))
	g := newGoal(t, svc, "500", "0")

	tests := []struct {
		name      string
		id        string
		amount    string
		wantErr   error
		wantFound bool
	}{
		{"zero amount", g.ID, "0", core.ErrInvalidAmount, false},
		{"negative amount", g.ID, "-5", core.ErrInvalidAmount, false},
		{"unknown goal", "missing", "5", nil, false},
		{"valid", g.ID, "5", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found, err := svc.AddAmount(ctx, tt.id, dec(tt.amount))
			if !errors.Is(err, tt.wantErr) || found != tt.wantFound {
				t.Fatalf("found=%v err=%v, want found=%v err=%v", found, err, tt.wantFound, tt.wantErr)
			}
		})
	}
}

func TestGoalService_UpdateKeepsCompleted(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), testOptions(&recordingNotifier{}))
	g := newGoal(t, svc, "100", "100")
	if !g.Completed {
		t.Fatalf("a goal created fully funded is complete")
	}

	target := dec("300")
	got, found, err := svc.Update(ctx, g.ID, core.GoalPatch{TargetAmount: &target})
	if err != nil || !found || !got.Completed {
		t.Fatalf("update must not clear completed: %+v found=%v err=%v", got, found, err)
	}

	got, _, _ = svc.AddAmount(ctx, g.ID, dec("1"))
	if got.Completed {
		t.Fatalf("a contribution re-derives completed from the balance")
	}

	name := " "
	if _, found, err := svc.Update(ctx, g.ID, core.GoalPatch{Name: &name}); !found || !errors.Is(err, core.ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got found=%v err=%v", found, err)
	}
	if _, found, _ := svc.Update(ctx, "missing", core.GoalPatch{TargetAmount: &target}); found {
		t.Fatalf("unknown id should report not found")
	}
}

func TestGoalService_AddValidationAndTotals(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), testOptions(&recordingNotifier{}))

	if _, err := svc.Add(ctx, core.GoalInput{Name: "x"}); !errors.Is(err, core.ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
	a := newGoal(t, svc, "500", "100")
	newGoal(t, svc, "250", "50")

	if !svc.TotalTarget().Equal(dec("750")) || !svc.TotalCurrent().Equal(dec("150")) {
		t.Fatalf("unexpected totals %s %s", svc.TotalTarget(), svc.TotalCurrent())
	}
	if !svc.Delete(ctx, a.ID) || svc.Delete(ctx, a.ID) {
		t.Fatalf("delete should succeed once")
	}
	if len(svc.List()) != 1 {
		t.Fatalf("expected one goal left")
	}
}
