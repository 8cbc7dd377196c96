// Package keys derives the identifying keys used to deduplicate vendors and customers.
package keys

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name, transliterates it to ASCII and collapses every run of other
// characters into a single hyphen. The result never starts or ends with a hyphen.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Identity is what a record says about a vendor or customer.
type Identity struct {
	ID    string
	TaxID string
	Name  string
}

// VendorKey derives the vendor key: explicit id, then tax id, then the slug of the name.
func VendorKey(id Identity) string {
	if k := strings.TrimSpace(id.ID); k != "" {
		return k
	}
	if k := strings.TrimSpace(id.TaxID); k != "" {
		return k
	}
	return Slugify(id.Name)
}

// CustomerKey derives the customer key: explicit id, then the slug of the name.
func CustomerKey(id Identity) string {
	if k := strings.TrimSpace(id.ID); k != "" {
		return k
	}
	return Slugify(id.Name)
}
