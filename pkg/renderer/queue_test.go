// pkg/renderer/queue_test.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"testing"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
)

func TestQueuePushRouting(t *testing.T) {
	var q RenderQueue

	neg := tricmd(-2, 1)
	zero := tricmd(0, 1)
	pos := tricmd(3, 1)
	q.Push(zero)
	q.Push(pos)
	q.Push(neg)

	if n := q.Len(); n != 3 {
		t.Fatalf("queue length: got %d, expected 3", n)
	}

	// Traversal is negative orders first, then zero, then positive,
	// regardless of submission order.
	want := []RenderCommand{neg, zero, pos}
	for i, cmd := range want {
		if got := q.At(i); got != cmd {
			t.Errorf("At(%d): got %v, expected %v", i, got, cmd)
		}
	}
}

func TestQueueSortStable(t *testing.T) {
	var q RenderQueue

	// Three commands with equal keys plus one that sorts in front of
	// them; the tied ones must keep their submission order.
	a, b, c := tricmd(-1, 1), tricmd(-1, 2), tricmd(-1, 3)
	first := tricmd(-5, 0)
	q.Push(a)
	q.Push(b)
	q.Push(first)
	q.Push(c)
	q.Sort()

	want := []RenderCommand{first, a, b, c}
	for i, cmd := range want {
		if got := q.At(i); got != cmd {
			t.Errorf("At(%d) after sort: got %v, expected %v", i, got, cmd)
		}
	}
}

func TestQueueZeroTierUnsorted(t *testing.T) {
	var q RenderQueue

	// Zero-order commands stay in submission order even after a sort.
	cmds := []*TrianglesCommand{tricmd(0, 3), tricmd(0, 1), tricmd(0, 2)}
	for _, cmd := range cmds {
		q.Push(cmd)
	}
	q.Sort()

	for i, cmd := range cmds {
		if got := q.At(i); got != RenderCommand(cmd) {
			t.Errorf("At(%d): got %v, expected %v", i, got, cmd)
		}
	}
}

func TestQueuePushToGroup(t *testing.T) {
	var q RenderQueue

	neg := tricmd(-1, 0)
	opaque := tricmd(0, 0)
	transparent := tricmd(0, 0)
	zero := tricmd(0, 0)
	pos := tricmd(1, 0)

	// Submit out of traversal order.
	q.PushToGroup(GroupTransparent3D, transparent)
	q.Push(pos)
	q.PushToGroup(GroupOpaque3D, opaque)
	q.Push(zero)
	q.Push(neg)

	if n := q.Len(); n != 5 {
		t.Fatalf("queue length: got %d, expected 5", n)
	}
	want := []RenderCommand{neg, opaque, transparent, zero, pos}
	for i, cmd := range want {
		if got := q.At(i); got != cmd {
			t.Errorf("At(%d): got %v, expected %v", i, got, cmd)
		}
	}
}

func TestQueuePushToGroupPanicsOnBadGroup(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for out of range queue group")
		}
	}()

	var q RenderQueue
	q.PushToGroup(QueueGroup(17), tricmd(0, 0))
}

func TestQueueLenConservedBySort(t *testing.T) {
	var q RenderQueue

	for i := 0; i < 20; i++ {
		q.Push(tricmd(float32(i%5)-2, uint32(i)))
	}
	q.Sort()

	if n := q.Len(); n != 20 {
		t.Errorf("queue length after sort: got %d, expected 20", n)
	}
	// Every index must still resolve to a command.
	for i := 0; i < q.Len(); i++ {
		if q.At(i) == nil {
			t.Errorf("At(%d): got nil command", i)
		}
	}
}

func TestQueueAtPanicsOutOfRange(t *testing.T) {
	var q RenderQueue
	q.Push(tricmd(0, 0))

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for out of range index")
		}
	}()
	_ = q.At(q.Len())
}

func TestQueueClear(t *testing.T) {
	var q RenderQueue
	q.Push(tricmd(-1, 0))
	q.Push(tricmd(0, 0))
	q.Push(tricmd(1, 0))
	q.PushToGroup(GroupOpaque3D, tricmd(0, 0))

	q.Clear()

	if n := q.Len(); n != 0 {
		t.Errorf("queue length after clear: got %d, expected 0", n)
	}
}

func TestQueueSaveRestoreState(t *testing.T) {
	dev := newTestDevice()
	saved := gfx.RasterState{DepthTest: true, CullFace: true}
	dev.state = saved

	var q RenderQueue
	q.SaveState(dev)

	dev.SetRasterState(gfx.RasterState{Blend: true})
	q.RestoreState(dev)

	if got := dev.state; got != saved {
		t.Errorf("state after restore: got %+v, expected %+v", got, saved)
	}
}
