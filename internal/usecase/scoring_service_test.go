package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/boxlax/fantasy-core/internal/domain/stats"
	"github.com/boxlax/fantasy-core/internal/infrastructure/repository/memory"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
)

type scoringFixture struct {
	svc     *ScoringService
	store   *memory.ScheduleStore
	scoring *memory.ScoringRepository
}

func newScoringFixture(games []game.Game, players []player.Player, lines []stats.Line, rules fantasy.Rules) scoringFixture {
	store := memory.NewScheduleStore(games, nil)
	scoringRepo := memory.NewScoringRepository()
	svc := NewScoringService(
		store.Games(),
		memory.NewPlayerRepository(players),
		memory.NewStatsRepository(lines),
		scoringRepo,
		rules,
		logging.NewNop(),
	)
	return scoringFixture{svc: svc, store: store, scoring: scoringRepo}
}

func completedGame(id string, homeScore, awayScore int) game.Game {
	g := game.Game{
		ID:         id,
		Season:     "s1",
		Week:       1,
		StartAt:    time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC),
		HomeTeamID: "TOR",
		AwayTeamID: "BUF",
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
		RevisionAt: time.Date(2026, 1, 10, 23, 0, 0, 0, time.UTC),
	}
	return g.ResolveOutcome()
}

func TestScoreGame_PositionWeightsAndWinBonus(t *testing.T) {
	players := []player.Player{
		{ID: "o1", Name: "O One", TeamID: "TOR", Position: player.PositionOffence},
		{ID: "g1", Name: "G One", TeamID: "TOR", Position: player.PositionGoalie},
		{ID: "t1", Name: "T One", TeamID: "BUF", Position: player.PositionTransition},
		{ID: "t2", Name: "T Two", TeamID: "BUF", Position: player.PositionTransition, AssignedSide: player.SideDefence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "o1", Goals: 4, Assists: 3, LooseBalls: 2},
		{GameID: "game-1", PlayerID: "g1", Saves: 41, GoalsAgainst: 9},
		{GameID: "game-1", PlayerID: "t1", Goals: 2, Assists: 1, LooseBalls: 4, CausedTurnovers: 1},
		{GameID: "game-1", PlayerID: "t2", Goals: 1, LooseBalls: 5, CausedTurnovers: 2},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())

	got, err := fix.svc.ScoreGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("score game: %v", err)
	}

	// All values in tenths. o1: 4*3.0 + 3*2.0 + 2*0.5 = 19.0, plus the
	// 2.0 win bonus. g1: 41*0.4 - 9*1.0 = 7.4, plus the win bonus.
	// t1 blends offence 11.0 and defence 14.0 to 12.5; t2 scores under the
	// defence table for its assigned side.
	want := map[string]fantasy.Points{
		"o1": 210,
		"g1": 94,
		"t1": 125,
		"t2": 120,
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected player count: got=%d want=%d", len(got), len(want))
	}
	for id, points := range want {
		if got[id] != points {
			t.Fatalf("points for %s: got=%s want=%s", id, got[id], points)
		}
	}
}

func TestScoreGame_TransitionBlendTruncatesTowardZero(t *testing.T) {
	players := []player.Player{
		{ID: "t1", Name: "T One", TeamID: "BUF", Position: player.PositionTransition},
	}
	// Offence values the line at 5.5, defence at 8.0; the even split of
	// 13.5 truncates to 6.7 in tenths.
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "t1", Goals: 1, LooseBalls: 5},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())

	got, err := fix.svc.ScoreGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("score game: %v", err)
	}
	if got["t1"] != 67 {
		t.Fatalf("blended points: got=%s want=6.7", got["t1"])
	}
}

func TestScoreGame_DrawBonusPolicy(t *testing.T) {
	players := []player.Player{
		{ID: "o1", Name: "O One", TeamID: "TOR", Position: player.PositionOffence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "o1", Goals: 1},
	}

	none := newScoringFixture([]game.Game{completedGame("game-1", 10, 10)}, players, lines, fantasy.DefaultRules())
	got, err := none.svc.ScoreGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("score game: %v", err)
	}
	if got["o1"] != 30 {
		t.Fatalf("draw under policy none: got=%s want=3.0", got["o1"])
	}

	rules := fantasy.DefaultRules()
	rules.DrawPolicy = fantasy.DrawPolicyShared
	shared := newScoringFixture([]game.Game{completedGame("game-1", 10, 10)}, players, lines, rules)
	got, err = shared.svc.ScoreGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("score game: %v", err)
	}
	if got["o1"] != 40 {
		t.Fatalf("draw under shared policy: got=%s want=4.0", got["o1"])
	}
}

func TestScoreGame_IncompleteGame(t *testing.T) {
	upcoming := game.Game{
		ID:         "game-1",
		Season:     "s1",
		Week:       1,
		StartAt:    time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC),
		HomeTeamID: "TOR",
		AwayTeamID: "BUF",
	}
	fix := newScoringFixture([]game.Game{upcoming}, nil, nil, fantasy.DefaultRules())

	_, err := fix.svc.ScoreGame(context.Background(), "game-1")
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	_, err = fix.svc.ScoreGame(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoreGame_SkipsUnknownPlayer(t *testing.T) {
	players := []player.Player{
		{ID: "o1", Name: "O One", TeamID: "TOR", Position: player.PositionOffence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "o1", Goals: 1},
		{GameID: "game-1", PlayerID: "ghost", Goals: 10},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())

	got, err := fix.svc.ScoreGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("score game: %v", err)
	}
	if _, ok := got["ghost"]; ok {
		t.Fatalf("statline without a player row must be skipped")
	}
	if len(got) != 1 {
		t.Fatalf("unexpected player count: got=%d want=1", len(got))
	}
}

func TestScoreGame_Pure(t *testing.T) {
	players := []player.Player{
		{ID: "o1", Name: "O One", TeamID: "TOR", Position: player.PositionOffence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "o1", Goals: 2, Assists: 1},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())
	ctx := context.Background()

	first, err := fix.svc.ScoreGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("score game: %v", err)
	}
	second, err := fix.svc.ScoreGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("score game again: %v", err)
	}
	if first["o1"] != second["o1"] {
		t.Fatalf("repeated computation drifted: %s vs %s", first["o1"], second["o1"])
	}

	rows, err := fix.scoring.ListByGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("list game points: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("ScoreGame must not persist, found %d rows", len(rows))
	}
}

func TestApplyGameScore_ExactlyOnce(t *testing.T) {
	players := []player.Player{
		{ID: "o1", Name: "O One", TeamID: "TOR", Position: player.PositionOffence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "o1", Goals: 2},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())
	ctx := context.Background()

	deltas, applied, err := fix.svc.ApplyGameScore(ctx, "game-1")
	if err != nil {
		t.Fatalf("apply game score: %v", err)
	}
	if !applied {
		t.Fatalf("first application must claim the game")
	}
	if deltas["o1"] != 80 {
		t.Fatalf("applied points: got=%s want=8.0", deltas["o1"])
	}

	deltas, applied, err = fix.svc.ApplyGameScore(ctx, "game-1")
	if err != nil {
		t.Fatalf("reapply game score: %v", err)
	}
	if applied {
		t.Fatalf("second application must be a no-op")
	}
	if deltas["o1"] != 80 {
		t.Fatalf("recomputed points: got=%s want=8.0", deltas["o1"])
	}

	rows, err := fix.scoring.ListByGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("list game points: %v", err)
	}
	if len(rows) != 1 || rows[0].Points != 80 {
		t.Fatalf("unexpected persisted rows: %+v", rows)
	}

	got, _, err := fix.store.Games().GetByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !got.Scored() {
		t.Fatalf("applied game must carry the scored mark")
	}
}

func TestRescoreGame_ReplacesRows(t *testing.T) {
	players := []player.Player{
		{ID: "o1", Name: "O One", TeamID: "TOR", Position: player.PositionOffence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "o1", Goals: 2},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())
	ctx := context.Background()

	if _, _, err := fix.svc.ApplyGameScore(ctx, "game-1"); err != nil {
		t.Fatalf("apply game score: %v", err)
	}

	// The provider corrects the result: BUF actually won, so o1 loses the
	// win bonus on rescore.
	corrected := completedGame("game-1", 9, 12)
	if err := fix.store.Games().Upsert(ctx, corrected); err != nil {
		t.Fatalf("upsert corrected game: %v", err)
	}

	deltas, err := fix.svc.RescoreGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("rescore game: %v", err)
	}
	if deltas["o1"] != 60 {
		t.Fatalf("rescored points: got=%s want=6.0", deltas["o1"])
	}

	rows, err := fix.scoring.ListByGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("list game points: %v", err)
	}
	if len(rows) != 1 || rows[0].Points != 60 {
		t.Fatalf("rescore must replace rows, got %+v", rows)
	}
}

func TestGamePoints_Ordering(t *testing.T) {
	players := []player.Player{
		{ID: "a1", Name: "A", TeamID: "TOR", Position: player.PositionOffence},
		{ID: "b1", Name: "B", TeamID: "TOR", Position: player.PositionOffence},
		{ID: "c1", Name: "C", TeamID: "BUF", Position: player.PositionOffence},
	}
	lines := []stats.Line{
		{GameID: "game-1", PlayerID: "a1", Goals: 1},
		{GameID: "game-1", PlayerID: "b1", Goals: 1},
		{GameID: "game-1", PlayerID: "c1", Goals: 3},
	}
	fix := newScoringFixture([]game.Game{completedGame("game-1", 12, 9)}, players, lines, fantasy.DefaultRules())
	ctx := context.Background()

	if _, _, err := fix.svc.ApplyGameScore(ctx, "game-1"); err != nil {
		t.Fatalf("apply game score: %v", err)
	}

	rows, err := fix.svc.GamePoints(ctx, "game-1")
	if err != nil {
		t.Fatalf("game points: %v", err)
	}
	// c1 has the most points; a1 and b1 tie (win bonus included) and fall
	// back to ID order.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].PlayerID != "c1" || rows[1].PlayerID != "a1" || rows[2].PlayerID != "b1" {
		t.Fatalf("unexpected ordering: %s, %s, %s", rows[0].PlayerID, rows[1].PlayerID, rows[2].PlayerID)
	}
}
