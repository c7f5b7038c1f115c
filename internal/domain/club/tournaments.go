package club

// Tournament is an event with open registrations.
type Tournament struct {
	Name     string
	Division string
	Dates    string
	Prize    string
}

var OpenTournaments = []Tournament{
	{Name: "Copa Salto de Verão", Division: "Simples Masculino A", Dates: "15-20 Jan", Prize: "R$ 5.000"},
}

// BracketMatch is one pairing of a draw round. Winner is empty while the match is on.
type BracketMatch struct {
	Player1 string
	Player2 string
	Score   string
	Winner  string
}

func (m BracketMatch) Live() bool { return m.Winner == "" }

type BracketRound struct {
	Name    string
	Matches []BracketMatch
}

// Bracket is the draw of the open tournament; later rounds have no matches yet.
var Bracket = []BracketRound{
	{Name: "Oitavas de Final", Matches: []BracketMatch{
		{"Fernando F.", "Ricardo S.", "6/4 6/2", "Fernando F."},
		{"Marcos L.", "Bruno A.", "7/5 6/3", "Marcos L."},
		{"Alexandre T.", "Luís M.", "Em Jogo", ""},
	}},
	{Name: "Quartas de Final"},
}

// SpectatorMatch is an exhibition members can mark as favorite.
type SpectatorMatch struct {
	Name string
	Time string
}

var SpectatorMatches = []SpectatorMatch{
	{Name: "Exibição Pro: Alexandre vs. Luís", Time: "22 Jan • 19:30"},
}

// FindSpectatorMatch looks a match up by its display name.
func FindSpectatorMatch(name string) (SpectatorMatch, bool) {
	for _, m := range SpectatorMatches {
		if m.Name == name {
			return m, true
		}
	}
	return SpectatorMatch{}, false
}
