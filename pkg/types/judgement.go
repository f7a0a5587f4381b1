// Package types holds the shared data model of the citation pipeline:
// judgements, resolved and unresolved legal bases, and fiches. Records are
// produced by exactly one parser invocation and owned thereafter by the
// commit phase; nothing here is mutated concurrently.
package types

// Judgement is one parsed source document. Immutable after parsing.
type Judgement struct {
	// ID is the ECLI-like identifier of the judgement.
	ID string `json:"id"`

	// Court is the court code extracted from the identifier or record.
	Court string `json:"court"`

	// Date is the decision date (YYYY-MM-DD).
	Date string `json:"date"`

	// CaseNumber is the role or case number, when the record carries one.
	CaseNumber string `json:"case_number,omitempty"`

	// SourceURL is the canonical source URL of the record.
	SourceURL string `json:"source_url"`

	// AbstractsFR and AbstractsNL are the ordered abstract sequences, one per
	// language. Index i in one language pairs with index i in the other.
	AbstractsFR []string `json:"abstracts_fr,omitempty"`
	AbstractsNL []string `json:"abstracts_nl,omitempty"`

	// Bases holds the resolved legal bases.
	Bases []LegalBasis `json:"bases,omitempty"`

	// Unresolved holds citations whose identifier could not be resolved from
	// this document; they are queued for reconciliation.
	Unresolved []UnresolvedBasis `json:"unresolved,omitempty"`
}

// LegalBasis is one resolved citation: a normalized article token bound to a
// canonical identifier. Article may be the sentinel "general" when the law is
// cited without a specific article. Identifier is always present and
// canonical for any basis stored in the main set.
type LegalBasis struct {
	Article    string `json:"article"`
	Identifier string `json:"identifier"`
	TextFR     string `json:"text_fr,omitempty"`
	TextNL     string `json:"text_nl,omitempty"`
}

// UnresolvedBasis is a citation whose identifier could not be resolved from
// the current document. Article is nil for bare legal principles.
type UnresolvedBasis struct {
	Article   *string `json:"article"`
	RawLawKey string  `json:"raw_law_key"`
	TextFR    string  `json:"text_fr,omitempty"`
	TextNL    string  `json:"text_nl,omitempty"`
}

// Fiche is one abstract-plus-citations card from the judgement HTML page.
type Fiche struct {
	AbstractText string            `json:"abstract_text"`
	Bases        []LegalBasis      `json:"bases,omitempty"`
	Unresolved   []UnresolvedBasis `json:"unresolved,omitempty"`
}

// HasCitations reports whether the fiche carries at least one resolved or
// unresolved basis.
func (f *Fiche) HasCitations() bool {
	return len(f.Bases) > 0 || len(f.Unresolved) > 0
}
