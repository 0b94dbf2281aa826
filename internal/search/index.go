package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/morozRed/lineage/internal/family"
)

const (
	Version      = "member-index-v1"
	DefaultLimit = 10
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

type Document struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Relation string         `json:"relation"`
	Length   int            `json:"length"`
	Terms    map[string]int `json:"terms"`
}

type Index struct {
	Version       string         `json:"version"`
	DocumentCount int            `json:"document_count"`
	AvgDocLength  float64        `json:"avg_doc_length"`
	DocFreq       map[string]int `json:"doc_freq"`
	Documents     []Document     `json:"documents"`
}

type Result struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Build indexes members in the order given. Members with no indexable text
// are skipped.
func Build(members []family.Person) *Index {
	documents := make([]Document, 0, len(members))
	docFreq := make(map[string]int)
	totalLength := 0

	for _, member := range members {
		terms := buildTerms(member)
		length := 0
		for _, count := range terms {
			length += count
		}
		if length == 0 {
			continue
		}

		documents = append(documents, Document{
			ID:       member.ID,
			Name:     member.Name,
			Relation: member.Relation.String(),
			Length:   length,
			Terms:    terms,
		})
		totalLength += length

		for term := range terms {
			docFreq[term]++
		}
	}

	avgDocLength := 0.0
	if len(documents) > 0 {
		avgDocLength = float64(totalLength) / float64(len(documents))
	}

	return &Index{
		Version:       Version,
		DocumentCount: len(documents),
		AvgDocLength:  avgDocLength,
		DocFreq:       docFreq,
		Documents:     documents,
	}
}

// Search ranks members by BM25 and falls back to fuzzy name matching when
// nothing scores.
func Search(index *Index, query string, limit int) []Result {
	if index == nil || len(index.Documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryTerms := uniqueTerms(tokenize(query))
	if len(queryTerms) == 0 {
		return nil
	}

	k1 := 1.2
	b := 0.75
	n := float64(index.DocumentCount)
	avgLen := index.AvgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	for _, doc := range index.Documents {
		score := 0.0
		docLen := float64(doc.Length)
		for _, term := range queryTerms {
			tf := float64(doc.Terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(index.DocFreq[term])
			if df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			numerator := tf * (k1 + 1.0)
			denominator := tf + k1*(1.0-b+b*(docLen/avgLen))
			score += idf * (numerator / denominator)
		}
		if score > 0 {
			results = append(results, Result{ID: doc.ID, Name: doc.Name, Score: score})
		}
	}

	if len(results) == 0 {
		return Fuzzy(index, query, limit)
	}
	return rank(results, limit)
}

// Fuzzy matches the query against member names by edit distance only.
func Fuzzy(index *Index, query string, limit int) []Result {
	if index == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := normalizeForFuzzy(query)
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range index.Documents {
		best := -1
		candidates := append([]string{normalizeForFuzzy(doc.Name)}, tokenize(doc.Name)...)
		for _, candidate := range candidates {
			if candidate == "" {
				continue
			}
			distance := levenshteinDistance(needle, candidate)
			if distance > max(len([]rune(candidate))/3, 2) {
				continue
			}
			if best == -1 || distance < best {
				best = distance
			}
		}
		if best == -1 {
			continue
		}
		results = append(results, Result{ID: doc.ID, Name: doc.Name, Score: 1.0 / float64(1+best)})
	}
	return rank(results, limit)
}

func rank(results []Result, limit int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func buildTerms(member family.Person) map[string]int {
	terms := make(map[string]int)
	addWeighted(terms, member.Name, 4)
	addWeighted(terms, member.Relation.String(), 2)
	addWeighted(terms, member.Designation, 2)
	addWeighted(terms, member.Occupation, 2)
	addWeighted(terms, member.PlaceOfBirth, 1)
	addWeighted(terms, member.Address, 1)
	addWeighted(terms, member.Notes, 1)
	return terms
}

func addWeighted(terms map[string]int, value string, weight int) {
	if weight <= 0 {
		return
	}
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

func tokenize(value string) []string {
	value = strings.ToLower(value)
	if value == "" {
		return nil
	}
	return tokenPattern.FindAllString(value, -1)
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

func normalizeForFuzzy(value string) string {
	return strings.Join(tokenize(value), "")
}

func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if a == b {
		return 0
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		current := make([]int, len(rb)+1)
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = current
	}

	return prev[len(rb)]
}
