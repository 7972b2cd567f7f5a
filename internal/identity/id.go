package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"strings"
)

// GenerateID hashes the case-folded (canonical URL, title, company) triple into
// the record's primary key. Equal inputs give equal ids on every platform;
// colliding ids are deliberately treated as the same job.
func GenerateID(canonicalURL, title, company string) string {

	key := strings.Join([]string{fold(canonicalURL), fold(title), fold(company)}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

// ForPosting canonicalizes the URL and returns it together with the record id.
func ForPosting(rawURL, title, company string) (canonicalURL string, id string) {
	canonicalURL = Canonicalize(rawURL)
	return canonicalURL, GenerateID(canonicalURL, title, company)
}

func fold(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}
