package lobby

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// helper: wait for the loop to exit with a timeout so tests never hang
func waitDone(t *testing.T, l *Lobby, within time.Duration) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(within):
		t.Fatalf("timed out waiting for lobby to stop")
	}
}

func newTestLobby(t *testing.T, capacity, hint int) *Lobby {
	t.Helper()
	g, err := engine.New(capacity, hint, engine.WithRand(rand.New(rand.NewPCG(3, 4))))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewLobby(ctx, g, zaptest.NewLogger(t))
}

func do(t *testing.T, l *Lobby, cmd engine.Command) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := l.Do(ctx, cmd)
	require.NoError(t, err, "%s %s", cmd.Type, cmd.PlayerName)
	return res
}

func join(name string) engine.Command {
	return engine.Command{Type: engine.CmdJoinGame, PlayerName: name}
}

func TestLobby_Do_AppliesCommandsAndVersionIncrements(t *testing.T) {
	l := newTestLobby(t, 3, 0)

	res := do(t, l, join("ann"))
	assert.Equal(t, 1, res.Version)
	require.Len(t, res.State.Players, 1)
	assert.Equal(t, "ann", res.State.Players[0].Name)

	// reads never bump the version
	res = do(t, l, engine.Command{Type: engine.CmdGetState, PlayerName: "ann"})
	assert.Equal(t, 1, res.Version)

	_, err := l.Do(context.Background(), join("ann"))
	require.ErrorIs(t, err, engine.ErrPlayerAlreadyExists)

	res = do(t, l, join("bob"))
	assert.Equal(t, 2, res.Version)

	info, err := l.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Info{Version: 2}, info)
}

func TestLobby_ConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	const capacity, callers = 5, 40
	l := newTestLobby(t, capacity, 0)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
		full   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Do(context.Background(), join(fmt.Sprintf("p%02d", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case errors.Is(err, engine.ErrGameFull):
				full++
			default:
				t.Errorf("unexpected join error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, joined)
	assert.Equal(t, callers-capacity, full)
}

func TestLobby_ConcurrentAccusationsDeposeOnce(t *testing.T) {
	l := newTestLobby(t, 3, 1)
	for _, name := range []string{"ann", "bob", "cat"} {
		do(t, l, join(name))
	}
	for _, name := range []string{"ann", "bob", "cat"} {
		do(t, l, engine.Command{Type: engine.CmdRevealColor, PlayerName: name})
	}

	var wg sync.WaitGroup
	for _, accuser := range []string{"ann", "bob"} {
		wg.Add(1)
		go func(accuser string) {
			defer wg.Done()
			_, err := l.Do(context.Background(), engine.Command{
				Type: engine.CmdAccuse, PlayerName: accuser, AccusedName: "cat",
			})
			assert.NoError(t, err)
		}(accuser)
	}
	wg.Wait()

	res := do(t, l, engine.Command{Type: engine.CmdGetState, PlayerName: "ann"})
	assert.Len(t, res.State.Players, 2)
	assert.True(t, res.State.GameOver)

	_, err := l.Do(context.Background(), engine.Command{Type: engine.CmdGetState, PlayerName: "cat"})
	require.ErrorIs(t, err, engine.ErrPlayerDoesNotExist)
}

type panickingGame struct{}

func (panickingGame) Apply(engine.Command) ([]engine.Event, engine.State, error) {
	panic(&engine.InvariantError{Op: "accuse", Detail: "broken edge"})
}

func TestLobby_InvariantViolationFaultsTheLobby(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLobby(ctx, panickingGame{}, zaptest.NewLogger(t))

	_, err := l.Do(ctx, join("ann"))
	require.ErrorIs(t, err, ErrFaulted)
	var inv *engine.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "accuse", inv.Op)

	_, err = l.Do(ctx, join("bob"))
	require.ErrorIs(t, err, ErrFaulted)

	info, err := l.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Faulted)
}

type blockingGame struct{ release chan struct{} }

func (g blockingGame) Apply(engine.Command) ([]engine.Event, engine.State, error) {
	<-g.release
	return nil, engine.State{}, nil
}

func TestLobby_Do_HonoursCallerContext(t *testing.T) {
	g := blockingGame{release: make(chan struct{})}
	defer close(g.release)

	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLobby(parent, g, zaptest.NewLogger(t))

	ctx, cancelCall := context.WithTimeout(parent, 50*time.Millisecond)
	defer cancelCall()
	_, err := l.Do(ctx, join("ann"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLobby_Shutdown_StopsLoop(t *testing.T) {
	l := newTestLobby(t, 3, 0)
	do(t, l, join("ann"))

	l.Inbox() <- Shutdown{}
	waitDone(t, l, 500*time.Millisecond)

	_, err := l.Do(context.Background(), join("bob"))
	require.ErrorIs(t, err, ErrStopped)
}

func TestLobby_ParentCancelStopsLoop(t *testing.T) {
	g, err := engine.New(3, 0)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLobby(ctx, g, nil)

	cancel()
	waitDone(t, l, 500*time.Millisecond)

	_, err = l.Info(context.Background())
	require.ErrorIs(t, err, ErrStopped)
}
