// internal/sched/scheduler.go

package sched

import (
	"slices"
	"sort"
)

// Result is the outcome of one scheduling call.
type Result struct {
	Tasks         []Task // selected tasks, chronological
	TotalPriority int
}

// Schedule returns a maximum-priority subset of mutually non-overlapping tasks
// (weighted interval scheduling).
//
// Tasks are ordered by (end, start, id). When including and excluding a task
// score the same, the task is excluded, so among equal optima the engine keeps
// the one that ends earlier in that order. The input slice is not modified.
func Schedule(tasks []Task) (Result, error) {
	if len(tasks) == 0 {
		return Result{Tasks: []Task{}}, nil
	}
	if err := checkAwareness(tasks); err != nil {
		return Result{}, err
	}

	sorted := slices.Clone(tasks)
	slices.SortFunc(sorted, cmp)

	n := len(sorted)
	pred := predecessors(sorted)

	// dp[i] is the best score over sorted[0..i]
	dp := make([]int, n)
	chosen := make([]bool, n)
	for i := range sorted {
		incl, excl := scores(sorted, pred, dp, i)
		if incl > excl {
			dp[i] = incl
			chosen[i] = true
		} else {
			// ties exclude the later-ending task
			dp[i] = excl
		}
	}

	selected := make([]Task, 0)
	for i := n - 1; i >= 0; {
		if chosen[i] {
			if incl, excl := scores(sorted, pred, dp, i); incl >= excl {
				selected = append(selected, sorted[i])
				i = pred[i]
				continue
			}
		}
		i--
	}
	slices.Reverse(selected)

	return Result{Tasks: selected, TotalPriority: dp[n-1]}, nil
}

// scores returns the include and exclude values of the recurrence at i.
func scores(sorted []Task, pred, dp []int, i int) (incl, excl int) {
	incl = sorted[i].priority
	if pred[i] >= 0 {
		incl += dp[pred[i]]
	}
	if i > 0 {
		excl = dp[i-1]
	}
	return incl, excl
}

// predecessors returns, for every task in end-sorted order, the index of the
// rightmost task ending no later than its start, or -1.
func predecessors(sorted []Task) []int {
	pred := make([]int, len(sorted))
	for i, t := range sorted {
		// first index whose end is after t.start, minus one
		pred[i] = sort.Search(len(sorted), func(k int) bool {
			return sorted[k].end.After(t.start)
		}) - 1
	}
	return pred
}

func checkAwareness(tasks []Task) error {
	first := tasks[0].start.IsAware()
	for _, t := range tasks[1:] {
		if t.start.IsAware() != first {
			return ErrMixedAwareness
		}
	}
	return nil
}

// cmp orders tasks by (end, start, id).
func cmp(a, b Task) int {
	if c := a.end.Compare(b.end); c != 0 {
		return c
	}
	if c := a.start.Compare(b.start); c != 0 {
		return c
	}
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	default:
		return 0
	}
}
