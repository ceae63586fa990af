package lobby

import (
	"context"
	"errors"
	"fmt"

	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"go.uber.org/zap"
)

var ErrStopped = errors.New("lobby stopped")
var ErrFaulted = errors.New("lobby faulted")

// Game is the part of *engine.Game the lobby drives.
type Game interface {
	Apply(cmd engine.Command) ([]engine.Event, engine.State, error)
}

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	Cmd   engine.Command
	Reply chan Result // must be buffered; the loop never waits on it
}

func (FromClient) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetInfo struct {
	Reply chan Info
}

func (GetInfo) isLobbyMsg() {}

type Result struct {
	Version int
	State   engine.State
	Err     error
}

type Info struct {
	Version int
	Faulted bool
}

// Lobby owns the single game and applies commands one at a time.
type Lobby struct {
	inbox   chan Msg
	game    Game
	version int
	faulted bool
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLobby(parent context.Context, game Game, log *zap.Logger) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}

	l := &Lobby{
		inbox:  make(chan Msg, 64), // Small buffer
		game:   game,
		log:    log.Named("lobby"),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case FromClient:
				msg.Reply <- l.apply(msg.Cmd)

			case GetInfo:
				msg.Reply <- Info{Version: l.version, Faulted: l.faulted}

			case Shutdown:
				l.log.Info("shutting down", zap.Int("version", l.version))
				l.cancel()
				return
			}
		}
	}
}

func (l *Lobby) apply(cmd engine.Command) (res Result) {
	if l.faulted {
		return Result{Version: l.version, Err: ErrFaulted}
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var inv *engine.InvariantError
		if err, ok := r.(error); !ok || !errors.As(err, &inv) {
			panic(r)
		}
		l.faulted = true
		l.log.Error("game invariant violated, refusing further commands",
			zap.Error(inv),
			zap.String("command", string(cmd.Type)),
			zap.String("player", cmd.PlayerName),
		)
		res = Result{Version: l.version, Err: fmt.Errorf("%w: %w", ErrFaulted, inv)}
	}()

	events, state, err := l.game.Apply(cmd)
	if err != nil {
		l.log.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.String("player", cmd.PlayerName),
			zap.Error(err),
		)
		return Result{Version: l.version, Err: err}
	}

	if len(events) > 0 {
		l.version++
		l.logEvents(events)
	}
	return Result{Version: l.version, State: state}
}

func (l *Lobby) logEvents(events []engine.Event) {
	for _, e := range events {
		fields := []zap.Field{
			zap.String("event", string(e.Type)),
			zap.Int("version", l.version),
		}
		if e.PlayerName != "" {
			fields = append(fields, zap.String("player", e.PlayerName))
		}
		if e.Target != "" {
			fields = append(fields, zap.String("target", e.Target))
		}
		if e.Allegiance != "" {
			fields = append(fields, zap.String("allegiance", string(e.Allegiance)))
		}

		switch e.Type {
		case engine.EvtPlayerDeposed, engine.EvtGameOver, engine.EvtGameStarted:
			l.log.Info("game event", append(fields, zap.Int("count", e.Count))...)
		default:
			l.log.Debug("game event", append(fields, zap.Int("count", e.Count))...)
		}
	}
}

// Do runs cmd on the lobby goroutine and waits for its result. Engine
// rejections come back as the error; the Result is only valid when the
// error is nil.
func (l *Lobby) Do(ctx context.Context, cmd engine.Command) (Result, error) {
	reply := make(chan Result, 1)

	select {
	case l.inbox <- FromClient{Cmd: cmd, Reply: reply}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-l.done:
		return Result{}, ErrStopped
	}

	var res Result
	select {
	case res = <-reply:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-l.done:
		// the loop may have answered just before exiting
		select {
		case res = <-reply:
		default:
			return Result{}, ErrStopped
		}
	}
	if res.Err != nil {
		return Result{}, res.Err
	}
	return res, nil
}

// Info reports the current version and health of the lobby.
func (l *Lobby) Info(ctx context.Context) (Info, error) {
	reply := make(chan Info, 1)
	select {
	case l.inbox <- GetInfo{Reply: reply}:
	case <-ctx.Done():
		return Info{}, ctx.Err()
	case <-l.done:
		return Info{}, ErrStopped
	}
	select {
	case info := <-reply:
		return info, nil
	case <-ctx.Done():
		return Info{}, ctx.Err()
	case <-l.done:
		return Info{}, ErrStopped
	}
}

// Expose the inbox so tests can send raw messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the loop has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }
