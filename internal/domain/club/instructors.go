package club

import "strings"

// LevelAll is the lesson filter that matches every instructor.
const LevelAll = "Todos"

// Levels are the lesson filters in display order.
var Levels = []string{LevelAll, "Iniciante", "Intermediário", "Competitivo"}

type Instructor struct {
	Name      string
	Level     string
	Specialty string
	Rating    string
	Students  int
}

// Initials are the first letters of each word of the name.
func (i Instructor) Initials() string {
	var b strings.Builder
	for _, f := range strings.Fields(i.Name) {
		r := []rune(f)
		b.WriteRune(r[0])
	}
	return b.String()
}

var instructors = []Instructor{
	{"Jair", "Competitivo", "Alta Performance", "5.0", 22},
	{"Ricardo Santos", "Competitivo", "Saibro / Alta Performance", "4.9", 32},
	{"Gabriel Medeiros", "Iniciante", "Fundamentos", "5.0", 27},
	{"Marcos Lima", "Intermediário", "Tática de Duplas", "4.8", 25},
	{"Armando Marques", "Iniciante", "Fundamentos & Técnica", "4.9", 17},
	{"Bruno Aguiar", "Intermediário", "Saque", "4.6", 12},
	{"Gabriela Passos", "Intermediário", "Preparação Física", "4.7", 33},
	{"Ana Paula", "Iniciante", "Fundamentos & Técnica", "5.0", 40},
	{"Felipe Costa", "Competitivo", "Preparação Física", "4.7", 18},
}

// ValidLevel reports whether level is one of Levels.
func ValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Instructors returns the instructors whose level matches exactly, or all of them for LevelAll.
func Instructors(level string) []Instructor {
	out := make([]Instructor, 0, len(instructors))
	for _, in := range instructors {
		if level == LevelAll || in.Level == level {
			out = append(out, in)
		}
	}
	return out
}

// FindInstructor looks an instructor up by full name.
func FindInstructor(name string) (Instructor, bool) {
	for _, in := range instructors {
		if in.Name == name {
			return in, true
		}
	}
	return Instructor{}, false
}
