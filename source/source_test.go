package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/testutil"
)

func TestChannel(t *testing.T) {
	a := testutil.Interpret(t, testutil.Counter().MustCompile())

	ch := make(chan int)
	s := Channel(context.Background(), a.Actor, "inc", ch)
	for i := 0; i < 3; i++ {
		ch <- i
	}
	close(ch)
	<-s.Done()

	assert.Equal(t, uint64(3), s.Sent())
	assert.Equal(t, 3, a.Actor.Model().Int("count"))
}

func TestChannelOccurrence(t *testing.T) {
	var got []any
	m := beepboop.New().
		States("idle").
		Transition("idle", "msg", "idle", beepboop.Action(func(ev *beepboop.EventDetails) {
			got = append(got, ev.Occurrence)
		})).
		MustCompile()
	a := testutil.Interpret(t, m)

	ch := make(chan string, 2)
	ch <- "a"
	ch <- "b"
	close(ch)
	<-Channel(context.Background(), a.Actor, "msg", ch).Done()

	assert.Equal(t, []any{"a", "b"}, got)
}

func TestChannelStopsOnUnmount(t *testing.T) {
	a := testutil.Interpret(t, testutil.Counter().MustCompile())
	ch := make(chan int, 1)
	s := Channel(context.Background(), a.Actor, "inc", ch)

	a.Actor.Unmount()
	ch <- 1

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("source kept running after unmount")
	}
	assert.Zero(t, s.Sent())
}

func TestTicker(t *testing.T) {
	a := testutil.Interpret(t, testutil.Counter().MustCompile())

	s := Ticker(context.Background(), a.Actor, "inc", 5*time.Millisecond)
	require.Eventually(t, func() bool { return a.Actor.Model().Int("count") >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	n := a.Actor.Model().Int("count")
	assert.Equal(t, uint64(n), s.Sent())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, a.Actor.Model().Int("count"), "no ticks after Stop")
}

func TestStopOnContext(t *testing.T) {
	a := testutil.Interpret(t, testutil.Counter().MustCompile())
	ctx, cancel := context.WithCancel(context.Background())
	s := Ticker(ctx, a.Actor, "inc", time.Hour)
	cancel()
	<-s.Done()
}
