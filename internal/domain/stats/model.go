package stats

// Line holds the raw stat categories recorded for one player in one game, as
// delivered by the provider. Fantasy point values are derived elsewhere.
type Line struct {
	GameID          string
	PlayerID        string
	Goals           int
	Assists         int
	LooseBalls      int
	CausedTurnovers int
	Saves           int
	GoalsAgainst    int
}
