// pkg/renderer/queue.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"sort"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
)

// QueueGroup names the five tiers of a RenderQueue, in traversal order.
// Push feeds the three global-order tiers; the 3D tiers are only
// populated through PushToGroup.
type QueueGroup int

const (
	GroupGlobalZNeg QueueGroup = iota
	GroupOpaque3D
	GroupTransparent3D
	GroupGlobalZZero
	GroupGlobalZPos
	numQueueGroups
)

// RenderQueue accumulates the commands submitted for one frame, bucketed
// into tiers that the dispatcher draws under different raster state.
type RenderQueue struct {
	groups [numQueueGroups][]RenderCommand
	saved  gfx.RasterState
}

// Push appends the command to the tier selected by the sign of its
// global order. Insertion is O(1); ordering within a tier is established
// later by Sort.
func (q *RenderQueue) Push(cmd RenderCommand) {
	z := cmd.GlobalOrder()
	switch {
	case z < 0:
		q.groups[GroupGlobalZNeg] = append(q.groups[GroupGlobalZNeg], cmd)
	case z > 0:
		q.groups[GroupGlobalZPos] = append(q.groups[GroupGlobalZPos], cmd)
	default:
		q.groups[GroupGlobalZZero] = append(q.groups[GroupGlobalZZero], cmd)
	}
}

// PushToGroup appends the command to a specific tier, bypassing the
// global-order routing. It is how 3D passes feed the Opaque3D and
// Transparent3D tiers.
func (q *RenderQueue) PushToGroup(group QueueGroup, cmd RenderCommand) {
	if group < 0 || group >= numQueueGroups {
		panic("invalid render queue group")
	}
	q.groups[group] = append(q.groups[group], cmd)
}

// Sort orders the negative and positive global-order tiers ascending by
// key. The sort is stable: commands with equal keys keep their submission
// order. The zero tier is never sorted; it always draws in submission
// order.
func (q *RenderQueue) Sort() {
	for _, group := range []QueueGroup{GroupGlobalZNeg, GroupGlobalZPos} {
		g := q.groups[group]
		sort.SliceStable(g, func(i, j int) bool { return g[i].GlobalOrder() < g[j].GlobalOrder() })
	}
}

// Len returns the total number of commands across all tiers.
func (q *RenderQueue) Len() int {
	n := 0
	for _, g := range q.groups {
		n += len(g)
	}
	return n
}

// At returns the i'th command in traversal order across the tiers. It
// panics if i is out of range.
func (q *RenderQueue) At(i int) RenderCommand {
	for _, g := range q.groups {
		if i < len(g) {
			return g[i]
		}
		i -= len(g)
	}
	panic("invalid render queue index")
}

// Clear empties every tier, keeping the allocations. The commands
// themselves are caller-owned and are not touched.
func (q *RenderQueue) Clear() {
	for i := range q.groups {
		q.groups[i] = q.groups[i][:0]
	}
}

// SaveState snapshots the device's raster state; RestoreState reinstates
// the snapshot. The dispatcher pairs them with defer around each queue
// visit so the restore runs even if a command panics.
func (q *RenderQueue) SaveState(dev gfx.Device) {
	q.saved = dev.RasterState()
}

func (q *RenderQueue) RestoreState(dev gfx.Device) {
	dev.SetRasterState(q.saved)
}
