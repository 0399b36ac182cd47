package localgame

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/dependencies/clock"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/engine"
	"github.com/mcoot/elostealo/internal/services/pairing"
	"github.com/mcoot/elostealo/internal/storage"
)

// View is a local game together with its computed position
type View struct {
	Game  *model.LocalGame
	State engine.State
}

// Controller runs same-device games. Each move replays the stored move list, so nothing but
// storage holds game state.
type Controller struct {
	storage storage.Storage
	pairer  *pairing.Pairer
	clock   clock.Clock
	logger  zerolog.Logger
}

// NewController creates a new local game Controller
func NewController(
	storage storage.Storage,
	pairer *pairing.Pairer,
	clock clock.Clock,
	logger zerolog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		pairer:  pairer,
		clock:   clock,
		logger:  logger.With().Str("component", "localgame").Logger(),
	}
}

// Create starts a local game. Handicaps are assigned the same way as for online rooms.
func (c *Controller) Create(ctx context.Context, white, black model.PlayerDescriptor) (*View, error) {
	if err := white.Validate(); err != nil {
		return nil, err
	}
	if err := black.Validate(); err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(white.Name), strings.TrimSpace(black.Name)) {
		return nil, model.ErrNameTaken
	}

	if c.pairer != nil {
		white.Handicap, black.Handicap = c.pairer.Pair(white.Rating, black.Rating, white.Handicap, black.Handicap)
	}

	now := c.clock.Now()
	game := &model.LocalGame{
		ID:        model.GameID(uuid.NewString()),
		White:     white,
		Black:     black,
		Moves:     []string{},
		Result:    model.ResultNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SaveLocalGame(ctx, game); err != nil {
		c.logger.Error().Err(err).Str("game_id", string(game.ID)).Msg("failed to save local game")
		return nil, err
	}

	c.logger.Info().
		Str("game_id", string(game.ID)).
		Int("white_handicap", int(white.Handicap)).
		Int("black_handicap", int(black.Handicap)).
		Msg("local game created")
	return &View{Game: game, State: engine.NewGame(white.Handicap, black.Handicap).Snapshot()}, nil
}

// Get loads a local game and replays its moves
func (c *Controller) Get(ctx context.Context, id model.GameID) (*View, error) {
	game, g, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &View{Game: game, State: g.Snapshot()}, nil
}

// Move plays uci for color. The move "resign" concedes for color.
func (c *Controller) Move(ctx context.Context, id model.GameID, color model.Color, uci string) (*View, error) {
	if !color.Valid() {
		return nil, model.ErrInvalidPlayer
	}
	game, g, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Snapshot().Result.Finished() {
		return nil, model.ErrGameNotInProgress
	}
	if g.Turn() != color {
		return nil, model.ErrNotYourTurn
	}

	uci = strings.ToLower(strings.TrimSpace(uci))
	if uci == engine.ResignMove {
		g.Resign(color)
	} else if err := g.Apply(uci); err != nil {
		return nil, err
	}

	state := g.Snapshot()
	game.Moves = append(game.Moves, uci)
	game.Result = state.Result
	game.Reason = state.Reason
	game.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLocalGame(ctx, game); err != nil {
		c.logger.Error().Err(err).Str("game_id", string(game.ID)).Msg("failed to save local game")
		return nil, err
	}
	if state.Result.Finished() {
		c.logger.Info().
			Str("game_id", string(game.ID)).
			Str("result", string(state.Result)).
			Str("reason", string(state.Reason)).
			Msg("local game finished")
	}
	return &View{Game: game, State: state}, nil
}

func (c *Controller) load(ctx context.Context, id model.GameID) (*model.LocalGame, *engine.Game, error) {
	game, err := c.storage.GetLocalGame(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g, err := engine.Restore(game.White.Handicap, game.Black.Handicap, game.Moves)
	if err != nil {
		if errors.Is(err, model.ErrIllegalMove) {
			c.logger.Error().Err(err).Str("game_id", string(id)).Msg("stored local game does not replay")
		}
		return nil, nil, err
	}
	return game, g, nil
}
