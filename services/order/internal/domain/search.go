package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var toneReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// FoldVietnamese lowercases s and strips tone and vowel marks so "Cà Chua Đà Lạt" matches "ca chua da lat".
func FoldVietnamese(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, toneReplacer.Replace(s))
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

// FilterProducts keeps catalog order. Search matches folded name substrings; Code must match exactly.
func FilterProducts(products []Product, filter ProductFilter) []Product {
	search := FoldVietnamese(filter.Search)
	code := strings.TrimSpace(filter.Code)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if code != "" && !strings.EqualFold(p.Code, code) {
			continue
		}
		if search != "" && !strings.Contains(FoldVietnamese(p.Name), search) {
			continue
		}
		out = append(out, p)
	}

	return out
}
