package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dotless = strings.NewReplacer("ı", "i")

// FoldText lowercases s with Turkish rules and maps dotless ı to i, so
// "KARABİBER", "KARABIBER" and "karabiber" fold to the same text.
func FoldText(s string) string {
	// a Caser keeps state and is not safe to share between goroutines
	return dotless.Replace(cases.Lower(language.Turkish).String(s))
}

// RefreshSearchText recomputes the folded name and description that sqlite search matches
func (p *Product) RefreshSearchText() {
	p.SearchText = FoldText(p.Name + " " + p.Description)
}
