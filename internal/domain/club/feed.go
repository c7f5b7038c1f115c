package club

// Bulletin is a club notice. Body is Markdown.
type Bulletin struct {
	Title string
	Body  string
	Tag   string
}

var bulletins = []Bulletin{
	{Title: "Manutenção de Quadras", Body: "**Saibro 1 e 2** estarão em manutenção hoje das 12h às 13h.", Tag: "Infra"},
	{Title: "Menu de Verão", Body: "Novos drinks refrescantes disponíveis no *deck* do Bistrô.", Tag: "Bistrô"},
	{Title: "Inscrições Abertas", Body: "Últimas vagas para a **Copa Salto de Verão**. Garanta já!", Tag: "Torneios"},
}

// BulletinTags lists the distinct tags in display order.
func BulletinTags() []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range bulletins {
		if !seen[b.Tag] {
			seen[b.Tag] = true
			out = append(out, b.Tag)
		}
	}
	return out
}

// Bulletins returns notices carrying tag, or all of them when tag is empty.
func Bulletins(tag string) []Bulletin {
	out := make([]Bulletin, 0, len(bulletins))
	for _, b := range bulletins {
		if tag == "" || b.Tag == tag {
			out = append(out, b)
		}
	}
	return out
}

// OnSite is a member currently at the club.
type OnSite struct {
	Name     string
	Initials string
	Where    string
}

var MembersOnSite = []OnSite{
	{"Ricardo", "RS", "Quadra 2"},
	{"Bruna", "BG", "Wellness"},
	{"Marcos", "ML", "Bistrô"},
	{"Ana", "AP", "Quadra 5"},
	{"Felipe", "FC", "Quadra 1"},
}

// PartnerRequest is a post looking for someone to play with.
type PartnerRequest struct {
	Member string
	Level  string
	When   string
	Sport  string
	Need   string
}

var PartnerRequests = []PartnerRequest{
	{"Marcos L.", "4.5", "Hoje, 19:00", "Tênis Saibro", "Falta 1 p/ Duplas"},
	{"Ana P.", "3.5", "Amanhã, 08:30", "Padel", "Treino Individual"},
}
