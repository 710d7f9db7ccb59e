package review

import (
	"sort"
	"strings"
)

const (
	stackedIssueMarker = "Partially Correct/Incorrect"
	hashtagsPrefix     = "Missing Hashtags:"
	tagsPrefix         = "Missing Tags:"
)

// ParseErrorDescription extracts the missing hashtags and missing tags from a
// free-text audit error. Descriptions may hold several issue blocks stacked
// one after another, each introduced by "Partially Correct/Incorrect" and
// made of "-" separated clauses. Unknown clauses are ignored; malformed input
// just yields empty results. Both results are sorted and de-duplicated.
func ParseErrorDescription(desc string) (hashtags, tags []string) {
	hashtagSet := make(stringSet)
	tagSet := make(stringSet)

	for _, block := range strings.Split(desc, stackedIssueMarker) {
		if strings.TrimSpace(block) == "" {
			continue
		}

		for _, clause := range strings.Split(block, "-") {
			clause = strings.TrimSpace(clause)
			switch {
			case strings.HasPrefix(clause, hashtagsPrefix):
				hashtagSet.addCSV(strings.TrimPrefix(clause, hashtagsPrefix))
			case strings.HasPrefix(clause, tagsPrefix):
				tagSet.addCSV(strings.TrimPrefix(clause, tagsPrefix))
			}
		}
	}

	return hashtagSet.sorted(), tagSet.sorted()
}

type stringSet map[string]struct{}

func (s stringSet) add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s stringSet) addCSV(list string) {
	for _, token := range strings.Split(list, ",") {
		if token = strings.TrimSpace(token); token != "" {
			s[token] = struct{}{}
		}
	}
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
