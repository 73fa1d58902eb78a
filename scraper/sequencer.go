package scraper

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/utils"
	"context"
	"fmt"
	"strings"
	"time"
)

type Action string

const (
	ActionType       Action = "type"
	ActionClick      Action = "click"
	ActionSelect     Action = "select"
	ActionPressEnter Action = "press_enter"
	ActionWaitFor    Action = "wait_for"
	ActionPause      Action = "pause"
)

// Step is one scripted interaction. Value may hold {{var}} placeholders.
// Pause is a politeness gap after the step, not a way to wait for the page.
type Step struct {
	Action   Action
	Locator  browser.Locator
	Value    string
	Timeout  time.Duration
	Pause    time.Duration
	Optional bool
}

func (s Step) String() string {
	if s.Action == ActionPause {
		return fmt.Sprintf("pause %v", s.Pause)
	}
	if s.Value != "" {
		return fmt.Sprintf("%s %s = %q", s.Action, s.Locator, s.Value)
	}
	return fmt.Sprintf("%s %s", s.Action, s.Locator)
}

// Sequencer plays steps against a page.
type Sequencer struct {
	page   browser.Finder
	vars   map[string]string
	timing Timing
}

func NewSequencer(page browser.Finder, vars map[string]string, timing Timing) *Sequencer {
	return &Sequencer{page: page, vars: vars, timing: timing}
}

// Run plays steps in order. A failing optional step is logged and skipped;
// a failing required step stops the sequence and is returned.
func (q *Sequencer) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := q.do(ctx, step); err != nil {
			if step.Optional {
				utils.Warn("Step %d (%s) skipped: %v", i+1, step, err)
			} else {
				return fmt.Errorf("step %d (%s): %w", i+1, step, err)
			}
		} else {
			utils.Debug("Step %d done: %s", i+1, step)
		}

		if err := q.pace(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (q *Sequencer) pace(ctx context.Context, step Step) error {
	if step.Action == ActionPause {
		return nil
	}
	if step.Pause > 0 {
		if err := utils.RandomDelay(ctx, step.Pause, step.Pause); err != nil {
			return err
		}
	}
	return utils.RandomDelay(ctx, q.timing.MinDelay, q.timing.MaxDelay)
}

func (q *Sequencer) do(ctx context.Context, step Step) error {
	if step.Action == ActionPause {
		return utils.RandomDelay(ctx, step.Pause, step.Pause)
	}

	el, err := q.await(ctx, step)
	if err != nil {
		return err
	}
	if step.Action == ActionWaitFor {
		return nil
	}

	value := q.expand(step.Value)

	switch step.Action {
	case ActionType:
		if err := el.Clear(ctx); err != nil {
			return err
		}
		return el.SendKeys(ctx, value)
	case ActionClick:
		if err := el.ScrollIntoView(ctx); err != nil {
			utils.Debug("scroll before click: %v", err)
		}
		return el.Click(ctx)
	case ActionSelect:
		return el.Select(ctx, value)
	case ActionPressEnter:
		return el.SendKeys(ctx, browser.KeyEnter)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

// await polls for the step's element and returns the first match.
func (q *Sequencer) await(ctx context.Context, step Step) (browser.Element, error) {
	loc := step.Locator
	loc.Selector = q.expand(loc.Selector)
	loc.Contains = q.expand(loc.Contains)

	timeout := step.Timeout
	if timeout <= 0 {
		timeout = q.timing.StepTimeout
	}

	var found browser.Element
	cond := func(ctx context.Context) bool {
		els, err := browser.FindMatching(ctx, q.page, loc)
		if err != nil || len(els) == 0 {
			return false
		}
		found = els[0]
		return true
	}

	if !WaitForAny(ctx, q.timing.PollInterval, timeout, cond) {
		return nil, fmt.Errorf("%s not found within %v", loc, timeout)
	}
	return found, nil
}

func (q *Sequencer) expand(s string) string {
	if len(q.vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(q.vars)*2)
	for k, v := range q.vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
