package planner

import (
	"sort"
	"time"

	"github.com/noah-isme/weekplan-api/internal/models"
)

const (
	// SourceOptimizer tags grids rewritten by the optimizer.
	SourceOptimizer = "optimizer"

	consolidationWindow = 3
	minRunForBreak      = 3
)

var (
	shortBreak = models.Activity{Content: "Short Break", Category: models.CategoryPersonal}
	exercise   = models.Activity{Content: "Exercise", Category: models.CategoryExercise}
)

// Pass rewrites a grid in place. The optimizer hands every pass its own copy.
type Pass struct {
	Name  string
	Apply func(g *Grid, c models.ScheduleConstraints)
}

var (
	ConsolidatePass = Pass{Name: "consolidate", Apply: consolidateWorkBlocks}
	EnergyPass      = Pass{Name: "energy", Apply: alignWithEnergy}
	BalancePass     = Pass{Name: "balance", Apply: insertBreaksAndExercise}
)

// DefaultPasses is consolidation, then energy alignment, then work/life balance.
func DefaultPasses() []Pass {
	return []Pass{ConsolidatePass, EnergyPass, BalancePass}
}

// PassObserver is notified after each pass completes.
type PassObserver func(pass string, took time.Duration)

// Optimizer runs an ordered pass pipeline over a grid.
type Optimizer struct {
	passes   []Pass
	observer PassObserver
}

// Option customises an Optimizer.
type Option func(*Optimizer)

// WithPasses replaces the pass pipeline.
func WithPasses(passes ...Pass) Option {
	return func(o *Optimizer) {
		o.passes = append([]Pass(nil), passes...)
	}
}

// WithObserver registers a callback receiving per-pass timings.
func WithObserver(fn PassObserver) Option {
	return func(o *Optimizer) {
		o.observer = fn
	}
}

// NewOptimizer builds an optimizer running DefaultPasses unless overridden.
func NewOptimizer(opts ...Option) *Optimizer {
	o := &Optimizer{passes: DefaultPasses()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Passes lists the pass names in execution order.
func (o *Optimizer) Passes() []string {
	names := make([]string, len(o.passes))
	for i, p := range o.passes {
		names[i] = p.Name
	}
	return names
}

// Optimize runs every pass in sequence. On an internal fault the input is returned unchanged.
func (o *Optimizer) Optimize(schedule models.ScheduleGrid, c models.ScheduleConstraints) (out models.ScheduleGrid) {
	defer func() {
		if r := recover(); r != nil {
			out = CloneSchedule(schedule)
		}
	}()

	g := FromSchedule(schedule)
	for _, pass := range o.passes {
		if pass.Apply == nil {
			continue
		}
		next := g.Clone()
		start := time.Now()
		pass.Apply(next, c)
		if o.observer != nil {
			o.observer(pass.Name, time.Since(start))
		}
		g = next
	}
	meta := cloneMetadata(schedule.Metadata)
	meta.Source = SourceOptimizer
	return g.Schedule(meta)
}

// Optimize runs the default pipeline.
func Optimize(schedule models.ScheduleGrid, c models.ScheduleConstraints) models.ScheduleGrid {
	return NewOptimizer().Optimize(schedule, c)
}

type run struct {
	start int
	end   int // exclusive
}

func (r run) length() int {
	return r.end - r.start
}

func categoryRuns(g *Grid, day int, category string) []run {
	var runs []run
	start := -1
	for slot := range g.Times {
		if g.Cells[slot][day].Category == category {
			if start < 0 {
				start = slot
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, run{start: start, end: slot})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start: start, end: len(g.Times)})
	}
	return runs
}

// consolidateWorkBlocks moves a fragment only when all of its slots fit into Free Time
// contiguous with the primary block, so the number of Work runs in a day never grows.
func consolidateWorkBlocks(g *Grid, _ models.ScheduleConstraints) {
	for day := range g.Days {
		runs := categoryRuns(g, day, models.CategoryWork)
		if len(runs) < 2 {
			continue
		}
		primary := 0
		for i, r := range runs {
			if r.length() > runs[primary].length() {
				primary = i
			}
		}
		block := runs[primary]
		lo := max(block.start-consolidationWindow, 0)
		hi := min(block.end+consolidationWindow, len(g.Times))

		for i, fragment := range runs {
			if i == primary {
				continue
			}
			targets, grown, ok := adjacentFreeSlots(g, day, block, fragment.length(), lo, hi)
			if !ok {
				continue
			}
			for k, target := range targets {
				g.Swap(day, fragment.start+k, target)
			}
			block = grown
		}
	}
}

// adjacentFreeSlots extends block through Free Time inside [lo, hi), after the block
// first and then before it, until need slots are collected.
func adjacentFreeSlots(g *Grid, day int, block run, need, lo, hi int) ([]int, run, bool) {
	targets := make([]int, 0, need)
	grown := block
	for len(targets) < need && grown.end < hi && g.Cells[grown.end][day].IsFreeTime() {
		targets = append(targets, grown.end)
		grown.end++
	}
	for len(targets) < need && grown.start > lo && g.Cells[grown.start-1][day].IsFreeTime() {
		grown.start--
		targets = append(targets, grown.start)
	}
	return targets, grown, len(targets) == need
}

func alignWithEnergy(g *Grid, c models.ScheduleConstraints) {
	profile := ProfileFor(c)
	energy := make([]float64, len(g.Times))
	for slot := range g.Times {
		energy[slot] = EnergyAt(profile, g.Hour(slot))
	}

	ranked := make([]int, len(g.Times))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return energy[ranked[i]] > energy[ranked[j]]
	})

	for day := range g.Days {
		var tasks []int
		for slot := range g.Times {
			if isHighFocus(g.Cells[slot][day]) {
				tasks = append(tasks, slot)
			}
		}
		used := make(map[int]bool, len(tasks))
		for i, from := range tasks {
			if i >= len(ranked) {
				break
			}
			target := ranked[i]
			if target == from || used[target] || energy[target] < energy[from] {
				continue
			}
			occupant := g.Cells[target][day]
			if occupant.IsFreeTime() || isLowFocus(occupant) {
				g.Swap(day, from, target)
				used[target] = true
			}
		}
	}
}

func insertBreaksAndExercise(g *Grid, _ models.ScheduleConstraints) {
	n := len(g.Times)
	third := n / 3
	for day := range g.Days {
		for _, r := range categoryRuns(g, day, models.CategoryWork) {
			if r.length() >= minRunForBreak {
				g.Cells[r.start+r.length()/2][day] = shortBreak
			}
		}

		if hasCategory(g, day, models.CategoryExercise) {
			continue
		}
		slot := firstFreeSlot(g, day, 0, third)
		if slot < 0 {
			slot = firstFreeSlot(g, day, n-third, n)
		}
		if slot >= 0 {
			g.Cells[slot][day] = exercise
		}
	}
}

func hasCategory(g *Grid, day int, category string) bool {
	for slot := range g.Times {
		if g.Cells[slot][day].Category == category {
			return true
		}
	}
	return false
}

func firstFreeSlot(g *Grid, day, from, to int) int {
	for slot := from; slot < to; slot++ {
		if g.Cells[slot][day].IsFreeTime() {
			return slot
		}
	}
	return -1
}
