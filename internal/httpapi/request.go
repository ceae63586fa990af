package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"github.com/DoyleJ11/reds-and-greens/pkg/types"
)

const maxNameLen = 64

var errBadRequest = errors.New("bad request")

type methodSpec struct {
	cmd    engine.CommandType
	fields []string
}

var methods = map[string]methodSpec{
	types.MethodJoinGame:              {engine.CmdJoinGame, []string{types.FieldPlayerName}},
	types.MethodRevealColor:           {engine.CmdRevealColor, []string{types.FieldPlayerName}},
	types.MethodAccuse:                {engine.CmdAccuse, []string{types.FieldPlayerName, types.FieldAccusedPlayerName}},
	types.MethodClearAccusation:       {engine.CmdClearAccusation, []string{types.FieldPlayerName}},
	types.MethodClearAccusationLegacy: {engine.CmdClearAccusation, []string{types.FieldPlayerName}},
	types.MethodGetState:              {engine.CmdGetState, []string{types.FieldPlayerName}},
}

type envelope struct {
	Method string                     `json:"method"`
	Data   map[string]json.RawMessage `json:"data"`
}

// decodeCommand parses a POST /games body. The data object must hold exactly
// the fields the method takes, each a non-blank string.
func decodeCommand(body io.Reader) (engine.Command, error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return engine.Command{}, fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return engine.Command{}, fmt.Errorf("%w: trailing data after body", errBadRequest)
	}

	spec, ok := methods[env.Method]
	if !ok {
		return engine.Command{}, fmt.Errorf("%w: unknown method %q", errBadRequest, env.Method)
	}
	if len(env.Data) != len(spec.fields) {
		return engine.Command{}, fmt.Errorf("%w: %s takes %d fields, got %d", errBadRequest, env.Method, len(spec.fields), len(env.Data))
	}

	values := make(map[string]string, len(spec.fields))
	for _, field := range spec.fields {
		raw, ok := env.Data[field]
		if !ok {
			return engine.Command{}, fmt.Errorf("%w: %s requires %q", errBadRequest, env.Method, field)
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return engine.Command{}, fmt.Errorf("%w: %q must be a string", errBadRequest, field)
		}
		if strings.TrimSpace(v) == "" || utf8.RuneCountInString(v) > maxNameLen {
			return engine.Command{}, fmt.Errorf("%w: %q must be 1-%d characters", errBadRequest, field, maxNameLen)
		}
		values[field] = v
	}

	return engine.Command{
		Type:        spec.cmd,
		PlayerName:  values[types.FieldPlayerName],
		AccusedName: values[types.FieldAccusedPlayerName],
	}, nil
}

var errorTags = []struct {
	err error
	tag types.ErrorTag
}{
	{engine.ErrPlayerAlreadyExists, types.ErrPlayerAlreadyExists},
	{engine.ErrPlayerDoesNotExist, types.ErrPlayerDoesNotExist},
	{engine.ErrGameFull, types.ErrGameIsFull},
	{engine.ErrNotEnoughPlayersJoined, types.ErrNotEnoughPlayersJoined},
	{engine.ErrGameOver, types.ErrGameOver},
	{engine.ErrGameNotStarted, types.ErrGameNotStarted},
}

// errorTag maps recoverable engine errors to their wire tag.
func errorTag(err error) (types.ErrorTag, bool) {
	for _, e := range errorTags {
		if errors.Is(err, e.err) {
			return e.tag, true
		}
	}
	return "", false
}
