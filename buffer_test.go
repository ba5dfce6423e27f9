package main

import "testing"

func checkInvariant(t *testing.T, b *inputBuffer) {
	t.Helper()
	if b.cursor < 0 || b.cursor > len(b.text) {
		t.Fatalf("cursor %d out of range for text of length %d", b.cursor, len(b.text))
	}
}

func TestInsertCursorJump(t *testing.T) {
	var b inputBuffer

	// into an empty buffer the 10-step jump clamps to the text length,
	// so the cursor tracks the end one rune at a time
	for i, r := range "hello" {
		b.insert(r)
		checkInvariant(t, &b)
		if b.cursor != i+1 {
			t.Fatalf("after insert %d: cursor = %d, want %d", i+1, b.cursor, i+1)
		}
	}
	if got := b.snapshot(); got != "hello" {
		t.Fatalf("snapshot = %q, want %q", got, "hello")
	}

	// once the text is longer than the step, a single insert at the
	// front jumps the cursor a full 10 positions
	b.clear()
	for _, r := range "0123456789abcdef" {
		b.insert(r)
	}
	b.cursor = 0
	b.insert('x')
	checkInvariant(t, &b)
	if b.cursor != cursorStep {
		t.Fatalf("cursor after front insert = %d, want %d", b.cursor, cursorStep)
	}
	if got := b.snapshot(); got != "x0123456789abcdef" {
		t.Fatalf("snapshot = %q", got)
	}
}

func TestDeleteBeforeCursor(t *testing.T) {
	var b inputBuffer
	for _, r := range "abc" {
		b.insert(r)
	}

	b.deleteBeforeCursor()
	checkInvariant(t, &b)
	if got := b.snapshot(); got != "ab" {
		t.Fatalf("snapshot = %q, want %q", got, "ab")
	}
	if b.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 (step clamps to 0)", b.cursor)
	}

	// cursor at 0 is a strict no-op
	b.deleteBeforeCursor()
	if got := b.snapshot(); got != "ab" || b.cursor != 0 {
		t.Fatalf("no-op delete changed state: text %q cursor %d", got, b.cursor)
	}
}

func TestDeleteOnEmptyBuffer(t *testing.T) {
	var b inputBuffer
	b.deleteBeforeCursor()
	checkInvariant(t, &b)
	if b.snapshot() != "" || b.cursor != 0 {
		t.Fatalf("delete on empty buffer mutated state")
	}
}

func TestInsertThenDeleteRestores(t *testing.T) {
	var b inputBuffer
	for _, r := range "abcde" {
		b.insert(r)
	}
	// each delete pulls the cursor back to 0, so reposition to the end
	// before deleting again
	for i := 0; i < 5; i++ {
		b.moveRight()
		b.deleteBeforeCursor()
		checkInvariant(t, &b)
	}
	if got := b.snapshot(); got != "" {
		t.Fatalf("buffer not restored, still %q", got)
	}
}

func TestMultibyteRuneSafety(t *testing.T) {
	var b inputBuffer
	for _, r := range "héllø" {
		b.insert(r)
	}
	if got := b.snapshot(); got != "héllø" {
		t.Fatalf("snapshot = %q", got)
	}
	b.deleteBeforeCursor()
	checkInvariant(t, &b)
	if got := b.snapshot(); got != "héll" {
		t.Fatalf("snapshot after delete = %q, want %q", got, "héll")
	}
}

func TestMoveClamping(t *testing.T) {
	var b inputBuffer
	for _, r := range "abc" {
		b.insert(r)
	}

	b.moveLeft()
	checkInvariant(t, &b)
	if b.cursor != 0 {
		t.Fatalf("moveLeft: cursor = %d, want 0", b.cursor)
	}
	b.moveLeft()
	if b.cursor != 0 {
		t.Fatalf("moveLeft at 0: cursor = %d, want 0", b.cursor)
	}

	b.moveRight()
	checkInvariant(t, &b)
	if b.cursor != 3 {
		t.Fatalf("moveRight: cursor = %d, want 3 (clamped to length)", b.cursor)
	}
}

func TestClear(t *testing.T) {
	var b inputBuffer
	for _, r := range "select 1" {
		b.insert(r)
	}
	b.clear()
	if b.snapshot() != "" || b.cursor != 0 {
		t.Fatalf("clear left text %q cursor %d", b.snapshot(), b.cursor)
	}
}
