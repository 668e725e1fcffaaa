package match

import "sort"

// DefaultSuggestionThreshold is the minimum similarity for a name to be
// offered as a suggestion.
const DefaultSuggestionThreshold = 0.6

// Candidate is a known name scored against an unknown one.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is a list of candidates sorted by descending score.
type CandidateList []Candidate

// RankNames scores every known name against name and returns the candidates
// sorted by score (descending), ties broken alphabetically.
func RankNames(name string, known []string) CandidateList {
	candidates := make(CandidateList, 0, len(known))

	for _, k := range known {
		candidates = append(candidates, Candidate{
			Name:  k,
			Score: FieldNameSimilarity(name, k),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns at most limit known names whose similarity to name reaches
// threshold, best first.
func Suggest(name string, known []string, threshold float64, limit int) []string {
	var out []string

	for _, c := range RankNames(name, known) {
		if c.Score < threshold || len(out) == limit {
			break
		}

		out = append(out, c.Name)
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}
