package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.logger == nil {
		t.Error("expected a default logger")
	}
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "burial"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "burial"}, &mockStep{name: "parent"})
		p.AddStep(NewStep("spouse", func(context.Context) error { return nil }))

		want := []string{"burial", "parent", "spouse"}
		if diff := cmp.Diff(want, p.StepNames()); diff != "" {
			t.Errorf("StepNames() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"burial", "parent", "child"} {
			p.AddStep(NewStep(name, func(context.Context) error {
				order = append(order, name)
				return nil
			}))
		}

		if err := p.Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"burial", "parent", "child"}, order); diff != "" {
			t.Errorf("execution order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name:   "failing-step",
			doFunc: func(context.Context) error { return expectedErr },
		})
		p.AddStep(second)

		err := p.Execute(context.Background())
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "burial"}
		p := New()
		p.AddStep(step)

		if err := p.Execute(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
	})

	t.Run("empty pipeline succeeds", func(t *testing.T) {
		t.Parallel()

		if err := New().Execute(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestPipelineInterlude(t *testing.T) {
	t.Parallel()

	t.Run("runs only between steps", func(t *testing.T) {
		t.Parallel()

		var events []string
		p := New(WithInterlude(func(context.Context) error {
			events = append(events, "pause")
			return nil
		}))
		for _, name := range []string{"burial", "parent", "spouse"} {
			p.AddStep(NewStep(name, func(context.Context) error {
				events = append(events, name)
				return nil
			}))
		}

		if err := p.Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"burial", "pause", "parent", "pause", "spouse"}
		if diff := cmp.Diff(want, events); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("single step never pauses", func(t *testing.T) {
		t.Parallel()

		paused := false
		p := New(WithInterlude(func(context.Context) error {
			paused = true
			return nil
		}))
		p.AddStep(&mockStep{name: "burial"})

		if err := p.Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if paused {
			t.Error("interlude should not run for a single step")
		}
	})

	t.Run("interlude error stops the pipeline", func(t *testing.T) {
		t.Parallel()

		pauseErr := errors.New("interrupted")
		second := &mockStep{name: "parent"}
		p := New(WithInterlude(func(context.Context) error { return pauseErr }))
		p.AddSteps(&mockStep{name: "burial"}, second)

		if err := p.Execute(context.Background()); !errors.Is(err, pauseErr) {
			t.Errorf("expected %v, got %v", pauseErr, err)
		}
		if second.callCount != 0 {
			t.Error("step after a failed interlude should not run")
		}
	})
}
