package cite

import (
	"reflect"
	"testing"
)

func TestIsInternational(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Convention de sauvegarde des droits de l'homme - 04-11-1950 - Art. 6", true},
		{"Protocole n° 1 - 04-11-1950 - Art. 1", true},
		{"Verdrag van 04-11-1950 - Art. 6", true},
		{"Directive 95/46/CE - 24-10-1995 - Art. 7", true},
		{"Richtlijn 95/46/EG - 24-10-1995 - Art. 7", true},
		{"Loi du 10-10-1967 - Art. 14", false},
		// A collective labour agreement shares the keyword but is domestic.
		{"Convention collective de travail n° 32bis - 07-06-1985 - Art. 8", false},
		{"Collectieve arbeidsovereenkomst nr. 32bis - 07-06-1985 - Art. 8", false},
	}

	for _, tt := range tests {
		if got := IsInternational(tt.line); got != tt.want {
			t.Errorf("IsInternational(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestNormalizeArticles(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		international bool
		want          []string
	}{
		{"single", "14", false, []string{"14"}},
		{"sub-paragraph dropped", "14, § 7", false, []string{"14"}},
		{"alinea dropped", "1382, alinéa 1er", false, []string{"1382"}},
		{"lid dropped", "8, lid 2", false, []string{"8"}},
		{"degree marker dropped", "5, 3°", false, []string{"5"}},
		{"two articles", "14, 15", false, []string{"14", "15"}},
		{"et separator", "14 et 15", false, []string{"14", "15"}},
		{"en separator", "14 en 15", false, []string{"14", "15"}},
		{"code form", "L1234-5", false, []string{"L1234-5"}},
		{"roman dot form", "XX.194", false, []string{"XX.194"}},
		{"dotted domestic kept", "5.4.3.4", false, []string{"5.4.3.4"}},
		{"dotted two-segment domestic kept", "6.3", false, []string{"6.3"}},
		{"dotted international collapsed", "6.3", true, []string{"6"}},
		{"dotted international deep kept", "5.4.3", true, []string{"5.4.3"}},
		{"latin suffix", "32bis", false, []string{"32bis"}},
		{"slash form", "49/1", false, []string{"49/1"}},
		{"duplicates removed", "14, 14", false, []string{"14"}},
		{"empty", "", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArticles(tt.raw, tt.international); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeArticles(%q, %v) = %v, want %v", tt.raw, tt.international, got, tt.want)
			}
		})
	}
}

// Citations list articles in non-decreasing order; a smaller trailing number
// is a missed sub-qualifier, not a new article.
func TestNormalizeArticlesAscendingOrder(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"14, 15, 12", []string{"14", "15"}},
		{"1382, 29", []string{"1382"}},
		{"10, 10, 11", []string{"10", "11"}},
	}

	for _, tt := range tests {
		if got := NormalizeArticles(tt.raw, false); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeArticles(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
