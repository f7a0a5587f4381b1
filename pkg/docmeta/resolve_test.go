package docmeta

import (
	"testing"
)

const canonicalELI = "https://www.ejustice.just.fgov.be/eli/loi/1967/10/10/1967101052/justel"
const dutchELI = "https://www.ejustice.just.fgov.be/eli/wet/1967/10/10/1967101052/justel"

func citationEntry(lang, text string) ReferenceEntry {
	return ReferenceEntry{Kind: RefCitation, Lang: lang, Text: text}
}

func identifierEntry(text string) ReferenceEntry {
	return ReferenceEntry{Kind: RefIdentifier, Lang: "FR", Text: text}
}

func TestResolveReferencesBindsIdentifierToGroup(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("FR", "Loi du 10-10-1967 - Art. 14 - 23"),
		citationEntry("FR", "Art. 15"),
		identifierEntry(canonicalELI),
	})

	if len(resolution.Unresolved) != 0 {
		t.Fatalf("unresolved = %v, want none", resolution.Unresolved)
	}
	if len(resolution.Bases) != 2 {
		t.Fatalf("got %d bases, want 2", len(resolution.Bases))
	}
	for _, basis := range resolution.Bases {
		if basis.Identifier != canonicalELI {
			t.Errorf("identifier = %q, want %q", basis.Identifier, canonicalELI)
		}
	}
	if resolution.Bases[0].Article != "14" || resolution.Bases[1].Article != "15" {
		t.Errorf("articles = %q, %q, want 14, 15", resolution.Bases[0].Article, resolution.Bases[1].Article)
	}
}

// An identifier stated once applies to later repeats of the same law via the
// per-record cache.
func TestResolveReferencesCachedIdentifier(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("FR", "Code civil - 10-10-1967 - Art. 5 - 01"),
		identifierEntry(canonicalELI),
		citationEntry("FR", "Loi du 15-06-1935 - Art. 30 - 02"),
		citationEntry("FR", "Code civil - 10-10-1967 - Art. 6 - 01"),
	})

	if len(resolution.Bases) != 2 {
		t.Fatalf("got %d bases, want 2: %v", len(resolution.Bases), resolution.Bases)
	}
	for _, basis := range resolution.Bases {
		if basis.Identifier != canonicalELI {
			t.Errorf("article %s identifier = %q, want cached %q", basis.Article, basis.Identifier, canonicalELI)
		}
	}

	// The intervening law never got an identifier.
	if len(resolution.Unresolved) != 1 {
		t.Fatalf("got %d unresolved, want 1: %v", len(resolution.Unresolved), resolution.Unresolved)
	}
	unresolved := resolution.Unresolved[0]
	if unresolved.Article == nil || *unresolved.Article != "30" {
		t.Errorf("unresolved article = %v, want 30", unresolved.Article)
	}
	if unresolved.RawLawKey != "Loi du - 15-06-1935" {
		t.Errorf("unresolved law key = %q", unresolved.RawLawKey)
	}
}

func TestResolveReferencesDutchIdentifierCanonicalized(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("NL", "Wet van 10-10-1967 - Art. 14 - 23"),
		identifierEntry(dutchELI),
	})

	if len(resolution.Bases) != 1 {
		t.Fatalf("got %d bases, want 1", len(resolution.Bases))
	}
	if resolution.Bases[0].Identifier != canonicalELI {
		t.Errorf("identifier = %q, want canonical %q", resolution.Bases[0].Identifier, canonicalELI)
	}
}

func TestResolveReferencesCrossLanguageText(t *testing.T) {
	frenchLine := "Loi du 10-10-1967 - Art. 14 - 23"
	dutchLine := "Wet van 10-10-1967 - Art. 14 - 23"

	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("FR", frenchLine),
		identifierEntry(canonicalELI),
		citationEntry("NL", dutchLine),
		identifierEntry(canonicalELI),
	})

	// Same (article, identifier) pair in both languages folds to one basis.
	if len(resolution.Bases) != 1 {
		t.Fatalf("got %d bases, want 1: %v", len(resolution.Bases), resolution.Bases)
	}
	basis := resolution.Bases[0]
	if basis.TextFR != frenchLine {
		t.Errorf("TextFR = %q, want %q", basis.TextFR, frenchLine)
	}
	if basis.TextNL != dutchLine {
		t.Errorf("TextNL = %q, want %q", basis.TextNL, dutchLine)
	}
}

func TestResolveReferencesPrinciple(t *testing.T) {
	principleLine := "Algemeen rechtsbeginsel van de eerbiediging van het recht van verdediging"

	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("NL", principleLine),
	})

	if len(resolution.Unresolved) != 1 {
		t.Fatalf("got %d unresolved, want 1", len(resolution.Unresolved))
	}
	unresolved := resolution.Unresolved[0]
	if unresolved.Article != nil {
		t.Errorf("principle article = %v, want nil", unresolved.Article)
	}
	if unresolved.RawLawKey != principleLine {
		t.Errorf("raw law key = %q", unresolved.RawLawKey)
	}
	if unresolved.TextNL != principleLine || unresolved.TextFR != "" {
		t.Errorf("text FR/NL = %q/%q, want only NL set", unresolved.TextFR, unresolved.TextNL)
	}
}

// A principle between two article groups flushes the first group; the groups
// on either side must not merge.
func TestResolveReferencesPrincipleFlushes(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("FR", "Loi du 10-10-1967 - Art. 14 - 23"),
		citationEntry("FR", "Principe général du droit relatif au respect des droits de la défense"),
		citationEntry("FR", "Art. 15"),
		identifierEntry(canonicalELI),
	})

	if len(resolution.Bases) != 1 || resolution.Bases[0].Article != "15" {
		t.Errorf("bases = %v, want only article 15 bound", resolution.Bases)
	}
	// Article 14 and the principle both land in the unresolved queue.
	if len(resolution.Unresolved) != 2 {
		t.Errorf("got %d unresolved, want 2: %v", len(resolution.Unresolved), resolution.Unresolved)
	}
}

func TestResolveReferencesDocketAndFailed(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		{Kind: RefDocket, Text: "C.19.0123.F"},
		{Kind: RefDocket, Text: "C.19.0456.N"},
		citationEntry("FR", "voir aussi Cass. 12 mars 2020"),
	})

	if resolution.CaseNumber != "C.19.0123.F" {
		t.Errorf("case number = %q, want the first docket entry", resolution.CaseNumber)
	}
	if len(resolution.Failed) != 1 || resolution.Failed[0] != "voir aussi Cass. 12 mars 2020" {
		t.Errorf("failed = %v, want the unrecognized line", resolution.Failed)
	}
}

func TestResolveReferencesDeduplicatesPairs(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("FR", "Loi du 10-10-1967 - Art. 14 - 23"),
		citationEntry("FR", "Art. 14"),
		identifierEntry(canonicalELI),
	})

	if len(resolution.Bases) != 1 {
		t.Errorf("got %d bases, want 1 after deduplication: %v", len(resolution.Bases), resolution.Bases)
	}
}

func TestResolveReferencesUnusableIdentifierKeepsPending(t *testing.T) {
	resolution := ResolveReferences([]ReferenceEntry{
		citationEntry("FR", "Loi du 10-10-1967 - Art. 14 - 23"),
		identifierEntry("https://example.org/not/a/known/form"),
		identifierEntry(canonicalELI),
	})

	if len(resolution.Bases) != 1 || resolution.Bases[0].Identifier != canonicalELI {
		t.Errorf("bases = %v, want article 14 bound by the second identifier", resolution.Bases)
	}
}
