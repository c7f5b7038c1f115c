package club

// FavoriteMatch is a spectator match the member starred. ID is the match name.
type FavoriteMatch struct {
	ID   string
	Name string
	Time string
}

// Favorites is an ordered, in-memory set of starred matches. Nothing is persisted.
type Favorites struct {
	items []FavoriteMatch
}

func (f *Favorites) Contains(name string) bool {
	for _, m := range f.items {
		if m.ID == name {
			return true
		}
	}
	return false
}

// Toggle removes the match if present, otherwise appends it. It reports whether
// the match is a favorite afterwards.
func (f *Favorites) Toggle(name, timeLabel string) bool {
	for i, m := range f.items {
		if m.ID == name {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return false
		}
	}
	f.items = append(f.items, FavoriteMatch{ID: name, Name: name, Time: timeLabel})
	return true
}

func (f *Favorites) Len() int { return len(f.items) }

// Items returns a copy of the favorites in insertion order.
func (f *Favorites) Items() []FavoriteMatch {
	return append([]FavoriteMatch(nil), f.items...)
}

func (f *Favorites) Clear() { f.items = nil }

func (f *Favorites) Clone() Favorites {
	return Favorites{items: append([]FavoriteMatch(nil), f.items...)}
}
