package archive

import (
	"fmt"
	"strings"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
)

// buildFilterQuery translates a metadata filter into an FT.SEARCH query
// string. This is a coarse pre-filter over the index; the in-memory filter
// evaluation stays authoritative (tag matching in RediSearch is not
// case-normalized the way the author predicate requires).
func buildFilterQuery(f filter.Filter) string {
	var parts []string

	if a := f.Author(); a != "" {
		parts = append(parts, fmt.Sprintf("@author:{%s}", escapeTag(a)))
	}
	if t := f.Title(); t != "" {
		parts = append(parts, fmt.Sprintf("@title:(%s)", escapeQuery(t)))
	}
	if y := f.Year(); y != 0 {
		parts = append(parts, fmt.Sprintf("@year:[%d %d]", y, y))
	}
	if m := f.Month(); m != 0 {
		parts = append(parts, fmt.Sprintf("@month:[%d %d]", m, m))
	}
	if d := f.Day(); d != 0 {
		parts = append(parts, fmt.Sprintf("@day:[%d %d]", d, d))
	}
	for _, k := range f.Keywords() {
		parts = append(parts, fmt.Sprintf("@keywords:{%s}", escapeTag(k)))
	}

	return strings.Join(parts, " ")
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	` `, `\ `,
	`@`, `\@`,
	`.`, `\.`,
	`-`, `\-`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
)
