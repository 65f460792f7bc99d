package trace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
)

func TestChannelPublisherDelivery(t *testing.T) {
	p := NewChannelPublisher(10)
	m := beepboop.New().States("green", "yellow").Transition("green", "timer", "yellow").MustCompile()
	a := beepboop.NewActor(m, beepboop.WithLogger(logger.Nop()), beepboop.WithObserver(p))
	defer a.Unmount()

	ctx := context.Background()
	require.NoError(t, a.Interpret(ctx))
	require.NoError(t, a.Send(ctx, "timer", nil))
	require.NoError(t, p.Close())

	var got []beepboop.TransitionRecord
	for rec := range p.Records() {
		got = append(got, rec)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "green", got[1].From)
	assert.Equal(t, "yellow", got[1].To)
	assert.Equal(t, a.ID(), got[1].ActorID)
	assert.Zero(t, p.Dropped())
}

func TestChannelPublisherBackpressureDrop(t *testing.T) {
	p := NewChannelPublisher(1)
	p.Observe(beepboop.TransitionRecord{Event: "a"})
	p.Observe(beepboop.TransitionRecord{Event: "b"})

	assert.Equal(t, uint64(1), p.Dropped())
	assert.Equal(t, "a", (<-p.Records()).Event)
}

func TestChannelPublisherObserveAfterClose(t *testing.T) {
	p := NewChannelPublisher(1)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.NotPanics(t, func() { p.Observe(beepboop.TransitionRecord{}) })
	assert.Equal(t, uint64(1), p.Dropped())
}

func TestFormat(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	assert.Equal(t, "03:04:05.006 timer: green -> yellow",
		Format(beepboop.TransitionRecord{Event: "timer", From: "green", To: "yellow", At: at}))
	assert.Equal(t, "03:04:05.006 (init): beepboop.initial -> green",
		Format(beepboop.TransitionRecord{From: beepboop.BootstrapState, To: "green", At: at}))
}
