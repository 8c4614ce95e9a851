package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPacer_WaitsBetweenUnitsOnly(t *testing.T) {
	var events []string
	p := Pacer{
		Delay: 100 * time.Millisecond,
		Wait: func(_ context.Context, d time.Duration) error {
			events = append(events, "wait "+d.String())
			return nil
		},
	}

	err := p.Run(t.Context(), 3, func(_ context.Context, i int) error {
		events = append(events, []string{"unit 0", "unit 1", "unit 2"}[i])
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []string{"unit 0", "wait 100ms", "unit 1", "wait 100ms", "unit 2"}, events)
}

func TestPacer_SingleUnitNeverWaits(t *testing.T) {
	waited := false
	p := Pacer{Delay: time.Second, Wait: func(context.Context, time.Duration) error { waited = true; return nil }}

	require.NoError(t, p.Run(t.Context(), 1, func(context.Context, int) error { return nil }))
	require.False(t, waited)
}

func TestPacer_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	p := Pacer{Wait: func(context.Context, time.Duration) error { return nil }, Delay: time.Millisecond}

	err := p.Run(t.Context(), 3, func(_ context.Context, i int) error {
		calls++
		if i == 1 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}

func TestPacer_CanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0
	p := Pacer{Delay: time.Hour}

	err := p.Run(ctx, 2, func(context.Context, int) error {
		calls++
		cancel()
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(t.Context(), time.Millisecond))
	require.NoError(t, Sleep(t.Context(), 0))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
