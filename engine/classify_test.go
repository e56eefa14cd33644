package engine

import (
	"context"
	"testing"

	"scorewatch/core"
)

func TestClassifyFlagsOnceAcrossRepeatedPasses(t *testing.T) {
	list := NewSuspiciousList()
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	notified := 0
	bus.Subscribe(core.EventNewSuspicious, func(ctx context.Context, e core.Event) { notified++ })

	c := NewClassifier(DefaultSuspiciousMod, DefaultSuspiciousPP, list, bus)
	score := &core.ScoreRecord{ID: 9001, Mods: core.ModList{"FL"}, PP: 150}

	if !c.Classify(context.Background(), score) {
		t.Fatal("expected FL at 150pp to classify as suspicious")
	}
	if !c.Classify(context.Background(), score) {
		t.Fatal("classification result should be stable on a second pass")
	}

	if got := list.Len(); got != 1 {
		t.Fatalf("suspicious list has %d entries, want 1", got)
	}
	if notified != 1 {
		t.Fatalf("got %d notifications, want exactly 1", notified)
	}
}

func TestClassifyNegatives(t *testing.T) {
	list := NewSuspiciousList()
	bus := NewEventBus(DispatchSync)
	defer bus.Close()
	c := NewClassifier("FL", 100, list, bus)

	cases := []*core.ScoreRecord{
		{ID: 1, Mods: core.ModList{"FL"}, PP: 100}, // at threshold, not above
		{ID: 2, Mods: core.ModList{"HD"}, PP: 900}, // wrong mod
		{ID: 3, Mods: core.ModList{}, PP: 500},     // no mods
		nil,
	}
	for _, s := range cases {
		if c.Classify(context.Background(), s) {
			t.Fatalf("score %+v should not classify", s)
		}
	}
	if list.Len() != 0 {
		t.Fatalf("suspicious list should be empty, has %d", list.Len())
	}
}
