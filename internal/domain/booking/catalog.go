package booking

// Service is the kind of thing being booked.
type Service string

const (
	ServiceCourts     Service = "Courts"
	ServiceWellness   Service = "Wellness"
	ServiceDining     Service = "Dining"
	ServiceEquipment  Service = "Equipment"
	ServiceTournament Service = "Tournament"
	ServiceLesson     Service = "Lesson"
)

// ServiceCard is a menu entry a member can pick from the Home screen.
type ServiceCard struct {
	Service  Service
	Title    string
	Subtitle string
}

// MenuServices lists the services reachable from the menu, in display order.
var MenuServices = []ServiceCard{
	{ServiceCourts, "Quadras", "Tênis & Padel"},
	{ServiceWellness, "Wellness", "Spa & Fisio"},
	{ServiceDining, "Gastronomia", "Bistrô & Café"},
	{ServiceEquipment, "Pro-Shop", "Equipamentos"},
}

func (s Service) Selectable() bool {
	for _, c := range MenuServices {
		if c.Service == s {
			return true
		}
	}
	return false
}

var categories = map[Service][]string{
	ServiceCourts: {
		"Tênis Estádio (Central)",
		"Tênis Saibro Coberta",
		"Tênis Saibro Aberta",
		"Tênis Rápida Coberta",
		"Tênis Rápida Aberta",
		"Padel",
		"Squash",
		"Pickleball",
	},
	ServiceWellness:   {"Fisioterapia", "Massagem", "Recovery"},
	ServiceDining:     {"Mesa Salão", "Mesa Deck"},
	ServiceEquipment:  {"Encordoamento", "Troca de Grip"},
	ServiceTournament: {"Simples Masculino A", "Duplas Open"},
}

// Categories returns the category labels of s; unknown services have none.
func Categories(s Service) []string {
	return append([]string(nil), categories[s]...)
}

func hasCategory(s Service, category string) bool {
	for _, c := range categories[s] {
		if c == category {
			return true
		}
	}
	return false
}

var courtCounts = map[string]int{
	"Tênis Estádio (Central)": 1,
	"Tênis Saibro Coberta":    2,
	"Tênis Saibro Aberta":     2,
	"Tênis Rápida Coberta":    2,
	"Tênis Rápida Aberta":     1,
	"Padel":                   4,
	"Squash":                  3,
	"Pickleball":              3,
}

// CourtCount is the number of numbered units for a court category, 1 when unknown.
func CourtCount(category string) int {
	if n, ok := courtCounts[category]; ok {
		return n
	}
	return 1
}

// Units lists 1..CourtCount(category).
func Units(category string) []int {
	n := CourtCount(category)
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
