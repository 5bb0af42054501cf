package client

import (
	"context"
	"time"

	"darkops-lab/pkg/models"
)

// StepNavigator walks one attack's steps. Every move clamps to the attack
// and is recorded through Tracker.RecordStep with the cumulative time spent.
type StepNavigator struct {
	tracker *Tracker
	attack  *models.Attack
	current int
	base    int
	started time.Time
	now     func() time.Time
}

// Navigate starts a navigator at the stored position for attack.
func (t *Tracker) Navigate(ctx context.Context, attack *models.Attack) (*StepNavigator, error) {
	p, err := t.ProgressFor(ctx, attack)
	n := &StepNavigator{
		tracker: t,
		attack:  attack,
		current: p.CurrentStep,
		base:    p.TimeSpent,
		now:     time.Now,
	}
	n.started = n.now()
	if !attack.HasStep(n.current) {
		n.current = 0
	}
	return n, err
}

func (n *StepNavigator) Attack() *models.Attack { return n.attack }

// Current is the index of the displayed step.
func (n *StepNavigator) Current() int { return n.current }

func (n *StepNavigator) Step() models.Step { return n.attack.Steps[n.current] }

func (n *StepNavigator) IsFirst() bool { return n.current == 0 }

func (n *StepNavigator) IsLast() bool { return n.current == n.attack.LastStep() }

func (n *StepNavigator) Next(ctx context.Context) (*models.Progress, error) {
	return n.Jump(ctx, n.current+1)
}

func (n *StepNavigator) Previous(ctx context.Context) (*models.Progress, error) {
	return n.Jump(ctx, n.current-1)
}

// Jump moves to step i, clamped to the attack's steps. The local position
// moves even when recording fails.
func (n *StepNavigator) Jump(ctx context.Context, i int) (*models.Progress, error) {
	if i < 0 {
		i = 0
	}
	if last := n.attack.LastStep(); i > last {
		i = last
	}
	n.current = i
	return n.tracker.RecordStep(ctx, n.attack, i, n.elapsed())
}

func (n *StepNavigator) elapsed() int {
	return n.base + int(n.now().Sub(n.started)/time.Second)
}
