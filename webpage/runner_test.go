package webpage

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/slon/pageaccess/pageaccess"
)

type visit struct {
	role  string
	id    int64
	event string
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

// visits returns lifecycle log entries in the order they were written.
func visits(logs *observer.ObservedLogs) []visit {
	var out []visit
	for _, entry := range logs.All() {
		fields := entry.ContextMap()
		event, ok := fields["event"].(string)
		if !ok {
			continue
		}
		out = append(out, visit{
			role:  fields["role"].(string),
			id:    fields["id"].(int64),
			event: event,
		})
	}
	return out
}

func filterEvent(vs []visit, event string) []int64 {
	var ids []int64
	for _, v := range vs {
		if v.event == event {
			ids = append(ids, v.id)
		}
	}
	return ids
}

func TestRunner_LifecycleEvents(t *testing.T) {
	logger, logs := newObservedLogger()
	roster := &Roster{
		Unit: time.Millisecond,
		Entries: []Entry{
			{Role: pageaccess.Reader, ID: 1, StartDelay: 0, Work: 2},
			{Role: pageaccess.Writer, ID: 2, StartDelay: 1, Work: 2},
		},
	}
	r := NewRunner(logger, clockwork.NewRealClock(), roster)
	require.NoError(t, r.Run(t.Context(), roster))

	vs := visits(logs)
	require.Len(t, vs, 8)
	for _, id := range []int64{1, 2} {
		var events []string
		for _, v := range vs {
			if v.id == id {
				events = append(events, v.event)
			}
		}
		require.Equal(t, []string{EventCreated, EventReady, EventAccessing, EventExits}, events)
	}

	require.Equal(t, 1, logs.FilterMessage("run started").Len())
	require.Equal(t, 1, logs.FilterMessage("run finished").Len())
	require.True(t, r.Coordinator.Stats().Idle())
}

func TestRunner_ReadersOverlap(t *testing.T) {
	logger, logs := newObservedLogger()
	roster := &Roster{
		Unit: 10 * time.Millisecond,
		Entries: []Entry{
			{Role: pageaccess.Reader, ID: 1, StartDelay: 0, Work: 5},
			{Role: pageaccess.Reader, ID: 2, StartDelay: 1, Work: 5},
		},
	}
	r := NewRunner(logger, clockwork.NewRealClock(), roster)
	require.NoError(t, r.Run(t.Context(), roster))

	var order []string
	for _, v := range visits(logs) {
		if v.event == EventAccessing || v.event == EventExits {
			order = append(order, v.event)
		}
	}
	require.Equal(t, []string{EventAccessing, EventAccessing, EventExits, EventExits}, order)
}

// Reader 1 holds the page, writer 2 queues, then reader 3 arrives.
func TestRunner_Scenario(t *testing.T) {
	for _, tc := range []struct {
		policy pageaccess.Policy
		order  []int64
	}{
		{policy: pageaccess.WriterPreference, order: []int64{1, 2, 3}},
		{policy: pageaccess.ReaderPreference, order: []int64{1, 3, 2}},
	} {
		t.Run(tc.policy.String(), func(t *testing.T) {
			logger, logs := newObservedLogger()
			roster := &Roster{
				Policy: tc.policy,
				Unit:   5 * time.Millisecond,
				Entries: []Entry{
					{Role: pageaccess.Reader, ID: 1, StartDelay: 0, Work: 20},
					{Role: pageaccess.Writer, ID: 2, StartDelay: 2, Work: 2},
					{Role: pageaccess.Reader, ID: 3, StartDelay: 4, Work: 2},
				},
			}
			r := NewRunner(logger, clockwork.NewRealClock(), roster)
			require.NoError(t, r.Run(t.Context(), roster))

			require.Equal(t, tc.order, filterEvent(visits(logs), EventAccessing))
		})
	}
}

func TestRunner_FakeClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	logger, logs := newObservedLogger()
	roster := &Roster{
		Unit: time.Second,
		Entries: []Entry{
			{Role: pageaccess.Writer, ID: 7, StartDelay: 2, Work: 3},
		},
	}
	r := NewRunner(logger, clock, roster)

	done := make(chan error, 1)
	go func() {
		done <- r.Run(t.Context(), roster)
	}()

	clock.BlockUntil(1)
	require.Equal(t, []int64{7}, filterEvent(visits(logs), EventCreated))
	require.Empty(t, filterEvent(visits(logs), EventReady))
	clock.Advance(2 * time.Second)

	clock.BlockUntil(1)
	require.Equal(t, []int64{7}, filterEvent(visits(logs), EventAccessing))
	require.Equal(t, 1, r.Coordinator.Stats().ActiveWriters)
	clock.Advance(3 * time.Second)

	require.NoError(t, <-done)
	require.Equal(t, []int64{7}, filterEvent(visits(logs), EventExits))
}

func TestRunner_Cancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	logger, logs := newObservedLogger()
	roster := &Roster{
		Unit: time.Second,
		Entries: []Entry{
			{Role: pageaccess.Writer, ID: 1, StartDelay: 0, Work: 100},
			{Role: pageaccess.Reader, ID: 2, StartDelay: 1, Work: 1},
		},
	}
	r := NewRunner(logger, clock, roster)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, roster)
	}()

	// Writer works, reader sleeps before arriving.
	clock.BlockUntil(2)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return r.Coordinator.Stats().WaitingReaders == 1
	}, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.True(t, r.Coordinator.Stats().Idle())
	require.Equal(t, 1, logs.FilterMessage("run aborted").Len())
}
