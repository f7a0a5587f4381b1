// Package eli canonicalizes law identifiers. The source publishes identifiers
// either as ELI paths (sometimes with Dutch document-type segments) or as
// legacy query-based CGI URLs in two language flavors. Canonical form is the
// French-typed variant; Normalize and CanonicalizeLegacy are idempotent so
// already-canonical identifiers pass through unchanged.
package eli

import (
	"net/url"
	"strings"
)

// eliMarker is the path segment that precedes the document-type segment in an
// ELI identifier.
const eliMarker = "eli"

// documentTypes maps Dutch ELI document-type path segments to their French
// canonical form.
var documentTypes = map[string]string{
	"wet":                  "loi",
	"decreet":              "decret",
	"besluit":              "arrete",
	"koninklijk-besluit":   "arrete-royal",
	"ministerieel-besluit": "arrete-ministeriel",
	"grondwet":             "constitution",
	"ordonnantie":          "ordonnance",
	"samenwerkingsakkoord": "accord-de-cooperation",
}

// Normalize translates the document-type path segment immediately following
// the ELI marker from Dutch to the French canonical form. Identifiers without
// an ELI marker, or already canonical, are returned unchanged. Idempotent.
func Normalize(identifier string) string {
	segments := strings.Split(identifier, "/")
	for segmentIndex, segment := range segments {
		if segment != eliMarker || segmentIndex+1 >= len(segments) {
			continue
		}
		typeSegment := segments[segmentIndex+1]
		if canonicalType, ok := documentTypes[strings.ToLower(typeSegment)]; ok {
			segments[segmentIndex+1] = canonicalType
		}
		break
	}
	return strings.Join(segments, "/")
}

// Legacy CGI endpoint path tokens. The Dutch flavor is rewritten to the
// French one; the French flavor is already canonical.
const (
	legacyPathFR = "/cgi_loi/loi_a1.pl"
	legacyPathNL = "/cgi_wet/wet_a1.pl"
)

// CanonicalizeLegacy recognizes the two legacy query-based identifier forms.
// The Dutch-flavored form is rewritten into the canonical French one: the CGI
// path token, the language and la query parameters, and the table_name
// document-type value all switch flavor. The canonical form is returned
// untouched. Any other URL returns ok=false so callers can discard it.
func CanonicalizeLegacy(rawURL string) (canonical string, ok bool) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	switch {
	case strings.HasSuffix(parsedURL.Path, legacyPathFR):
		return rawURL, true
	case strings.HasSuffix(parsedURL.Path, legacyPathNL):
		// Rewrite below.
	default:
		return "", false
	}

	parsedURL.Path = strings.TrimSuffix(parsedURL.Path, legacyPathNL) + legacyPathFR

	queryValues := parsedURL.Query()
	if queryValues.Get("language") == "nl" {
		queryValues.Set("language", "fr")
	}
	if queryValues.Get("la") == "N" {
		queryValues.Set("la", "F")
	}
	if tableName := queryValues.Get("table_name"); tableName != "" {
		if canonicalType, found := documentTypes[strings.ToLower(tableName)]; found {
			queryValues.Set("table_name", canonicalType)
		}
	}
	parsedURL.RawQuery = queryValues.Encode()

	return parsedURL.String(), true
}

// IsELI reports whether an identifier contains an ELI path marker.
func IsELI(identifier string) bool {
	for _, segment := range strings.Split(identifier, "/") {
		if segment == eliMarker {
			return true
		}
	}
	return false
}
