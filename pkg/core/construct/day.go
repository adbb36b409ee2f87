package construct

import (
	"math/rand"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// zoneTally counts zone usage in first-seen order; the first zone seen that
// day wins ties
type zoneTally struct {
	zones  []string
	counts []int
}

func (t *zoneTally) add(zone string) {
	for i, z := range t.zones {
		if z == zone {
			t.counts[i]++
			return
		}
	}
	t.zones = append(t.zones, zone)
	t.counts = append(t.counts, 1)
}

// mostUsed returns the zone with the highest count, or "" if nothing was counted
func (t *zoneTally) mostUsed() string {
	best := ""
	bestCount := 0
	for i, z := range t.zones {
		if t.counts[i] > bestCount {
			best = z
			bestCount = t.counts[i]
		}
	}
	return best
}

// dayBuilder tracks the state of a single day during construction
type dayBuilder struct {
	inst *model.Instance
	opts Options
	rng  *rand.Rand

	used       map[string]bool
	groupZones map[string]*zoneTally
}

func newDayBuilder(inst *model.Instance, opts Options, rng *rand.Rand) *dayBuilder {
	return &dayBuilder{
		inst:       inst,
		opts:       opts,
		rng:        rng,
		used:       make(map[string]bool, len(inst.Desks)),
		groupZones: make(map[string]*zoneTally),
	}
}

// targetZone returns the most used zone of the employee's group so far, or ""
func (b *dayBuilder) targetZone(employee string) string {
	group := b.inst.GroupOf(employee)
	if group == "" {
		return ""
	}
	tally, ok := b.groupZones[group]
	if !ok {
		return ""
	}
	return tally.mostUsed()
}

// choose picks a desk for the employee, or NoDesk if every desk is taken
func (b *dayBuilder) choose(employee string) string {
	target := b.targetZone(employee)

	// Free preferred desks, in preference order
	preferred := b.free(b.inst.Preferences[employee])
	if len(preferred) > 0 {
		if inTarget := b.inZone(preferred, target); len(inTarget) > 0 {
			return b.pickTop(inTarget)
		}
		return b.pickTop(preferred)
	}

	// Any free desk, still preferring the target zone
	pool := b.free(b.inst.Desks)
	if inTarget := b.inZone(pool, target); len(inTarget) > 0 {
		pool = inTarget
	}
	return b.pickAny(pool)
}

// take marks the desk used and records the zone for the employee's group
func (b *dayBuilder) take(employee, desk string) {
	b.used[desk] = true

	group := b.inst.GroupOf(employee)
	zone := b.inst.ZoneOf(desk)
	if group == "" || zone == "" {
		return
	}
	tally, ok := b.groupZones[group]
	if !ok {
		tally = &zoneTally{}
		b.groupZones[group] = tally
	}
	tally.add(zone)
}

// free filters desks to those not yet used today, keeping order
func (b *dayBuilder) free(desks []string) []string {
	out := make([]string, 0, len(desks))
	for _, desk := range desks {
		if !b.used[desk] {
			out = append(out, desk)
		}
	}
	return out
}

// inZone filters desks to the given zone. With no zone the result is empty.
func (b *dayBuilder) inZone(desks []string, zone string) []string {
	if zone == "" {
		return nil
	}
	out := make([]string, 0, len(desks))
	for _, desk := range desks {
		if b.inst.ZoneOf(desk) == zone {
			out = append(out, desk)
		}
	}
	return out
}

// pickTop picks among the first TopK candidates
func (b *dayBuilder) pickTop(candidates []string) string {
	if !b.opts.Randomize {
		return candidates[0]
	}
	k := min(b.opts.TopK, len(candidates))
	return candidates[b.rng.Intn(k)]
}

// pickAny picks from the whole pool
func (b *dayBuilder) pickAny(pool []string) string {
	if len(pool) == 0 {
		return model.NoDesk
	}
	if !b.opts.Randomize {
		return pool[0]
	}
	return pool[b.rng.Intn(len(pool))]
}
