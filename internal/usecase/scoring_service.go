package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/boxlax/fantasy-core/internal/domain/scoring"
	"github.com/boxlax/fantasy-core/internal/domain/stats"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
)

// ScoringService converts completed games into fantasy point deltas. The
// computation itself is pure; exactly-once application is enforced through
// the per-game scored mark on the mirror.
type ScoringService struct {
	gameRepo    game.Repository
	playerRepo  player.Repository
	statsRepo   stats.Repository
	scoringRepo scoring.Repository
	rules       fantasy.Rules
	logger      *logging.Logger
	now         func() time.Time
}

func NewScoringService(
	gameRepo game.Repository,
	playerRepo player.Repository,
	statsRepo stats.Repository,
	scoringRepo scoring.Repository,
	rules fantasy.Rules,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		statsRepo:   statsRepo,
		scoringRepo: scoringRepo,
		rules:       rules,
		logger:      logger,
		now:         time.Now,
	}
}

// ScoreGame computes the per-player point delta for one completed game. It
// is a read: calling it any number of times against unchanged inputs yields
// the same mapping and persists nothing.
func (s *ScoringService) ScoreGame(ctx context.Context, gameID string) (map[string]fantasy.Points, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreGame")
	defer span.End()

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game for scoring: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	if !g.Completed() {
		return nil, fmt.Errorf("%w: game=%s", ErrNotReady, gameID)
	}

	lines, err := s.statsRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list statlines for game %s: %w", gameID, err)
	}
	if len(lines) == 0 {
		return map[string]fantasy.Points{}, nil
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.PlayerID)
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get players for game %s: %w", gameID, err)
	}
	playersByID := make(map[string]player.Player, len(players))
	for _, p := range players {
		playersByID[p.ID] = p
	}

	out := make(map[string]fantasy.Points, len(lines))
	for _, line := range lines {
		p, known := playersByID[line.PlayerID]
		if !known {
			s.logger.WarnContext(ctx, "statline for unknown player skipped",
				"game_id", gameID,
				"player_id", line.PlayerID,
			)
			continue
		}

		points := fantasy.LinePoints(p, line, s.rules)
		points += fantasy.ResultBonus(
			p.TeamID != "" && p.TeamID == g.WinnerTeamID,
			g.Draw() && participates(p, g),
			s.rules,
		)
		out[line.PlayerID] += points
	}

	return out, nil
}

// ApplyGameScore persists the computed deltas and claims the game's scored
// mark. The second return reports whether this call did the application; a
// repeat call recomputes the same mapping but applies nothing.
func (s *ScoringService) ApplyGameScore(ctx context.Context, gameID string) (map[string]fantasy.Points, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ApplyGameScore")
	defer span.End()

	deltas, err := s.ScoreGame(ctx, gameID)
	if err != nil {
		return nil, false, err
	}

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, false, fmt.Errorf("get game before apply: %w", err)
	}
	if !exists {
		return nil, false, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	if g.Scored() {
		return deltas, false, nil
	}

	now := s.now().UTC()
	if err := s.scoringRepo.UpsertGamePoints(ctx, gameID, pointsRows(gameID, deltas, now)); err != nil {
		return nil, false, fmt.Errorf("persist game points %s: %w", gameID, err)
	}

	claimed, err := s.gameRepo.MarkScored(ctx, gameID, now)
	if err != nil {
		return nil, false, fmt.Errorf("mark game scored %s: %w", gameID, err)
	}
	if !claimed {
		// Another worker applied concurrently; the keyed upsert above made
		// our write a no-op rather than a double count.
		return deltas, false, nil
	}

	s.logger.InfoContext(ctx, "game scored",
		"game_id", gameID,
		"players", len(deltas),
	)
	return deltas, true, nil
}

// RescoreGame recomputes and re-persists a game whose result was corrected
// by a later sync. The keyed rows make this safe to run any number of times.
func (s *ScoringService) RescoreGame(ctx context.Context, gameID string) (map[string]fantasy.Points, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RescoreGame")
	defer span.End()

	deltas, err := s.ScoreGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.scoringRepo.UpsertGamePoints(ctx, gameID, pointsRows(gameID, deltas, now)); err != nil {
		return nil, fmt.Errorf("persist game points %s: %w", gameID, err)
	}
	if _, err := s.gameRepo.MarkScored(ctx, gameID, now); err != nil {
		return nil, fmt.Errorf("mark game scored %s: %w", gameID, err)
	}

	return deltas, nil
}

func (s *ScoringService) GamePoints(ctx context.Context, gameID string) ([]scoring.PlayerGamePoints, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GamePoints")
	defer span.End()

	_, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game for points: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	rows, err := s.scoringRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game points %s: %w", gameID, err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows, nil
}

func pointsRows(gameID string, deltas map[string]fantasy.Points, at time.Time) []scoring.PlayerGamePoints {
	rows := make([]scoring.PlayerGamePoints, 0, len(deltas))
	for playerID, points := range deltas {
		rows = append(rows, scoring.PlayerGamePoints{
			GameID:     gameID,
			PlayerID:   playerID,
			Points:     points,
			ComputedAt: at,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows
}

func participates(p player.Player, g game.Game) bool {
	return p.TeamID != "" && (p.TeamID == g.HomeTeamID || p.TeamID == g.AwayTeamID)
}
