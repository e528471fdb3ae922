// Package lexical implements a TF-IDF index over word unigrams and bigrams
// with cosine-similarity ranking.
package lexical

import (
	"cmp"
	"math"
	"slices"
)

// Index is an immutable TF-IDF matrix stored as per-term postings.
// Rows are L2-normalised, so the dot product of a normalised query with a row is their cosine.
type Index struct {
	vocab    map[string]int
	idf      []float64
	postings [][]posting
	docs     int
}

type posting struct {
	doc    int
	weight float64
}

// Hit is a ranked document position with its cosine similarity.
type Hit struct {
	Doc   int
	Score float64
}

// Build fits an index over texts. Positions in the index follow the order of texts.
//
// When maxFeatures > 0 only the maxFeatures terms with the highest corpus-wide
// count are kept; equal counts keep the lexicographically smaller term.
// Weights are raw term counts times the smoothed idf ln((1+n)/(1+df))+1.
func Build(texts []string, maxFeatures int) *Index {
	counts := make([]map[string]int, len(texts))
	total := make(map[string]int)
	df := make(map[string]int)

	for i, text := range texts {
		c := make(map[string]int)
		for _, term := range Terms(text) {
			c[term]++
		}
		for term, n := range c {
			total[term] += n
			df[term]++
		}
		counts[i] = c
	}

	terms := selectVocabulary(total, maxFeatures)

	ix := &Index{
		vocab:    make(map[string]int, len(terms)),
		idf:      make([]float64, len(terms)),
		postings: make([][]posting, len(terms)),
		docs:     len(texts),
	}
	n := float64(len(texts))
	for id, term := range terms {
		ix.vocab[term] = id
		ix.idf[id] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	for doc, c := range counts {
		for _, tw := range ix.weigh(c) {
			ix.postings[tw.id] = append(ix.postings[tw.id], posting{doc: doc, weight: tw.weight})
		}
	}

	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return ix.docs }

// VocabularySize returns the number of retained terms.
func (ix *Index) VocabularySize() int { return len(ix.idf) }

// Scores returns the cosine similarity of query against every document, by position.
// Out-of-vocabulary query terms contribute nothing.
func (ix *Index) Scores(query string) []float64 {
	scores := make([]float64, ix.docs)

	c := make(map[string]int)
	for _, term := range Terms(query) {
		if _, ok := ix.vocab[term]; ok {
			c[term]++
		}
	}
	for _, q := range ix.weigh(c) {
		for _, p := range ix.postings[q.id] {
			scores[p.doc] += q.weight * p.weight
		}
	}
	return scores
}

// Search ranks documents by similarity to query, highest first with load order
// breaking ties, keeps the first topK and then drops every hit whose score is
// not strictly above floor. The filter runs after truncation, so fewer than
// topK hits may come back even when lower-ranked documents clear the floor.
func (ix *Index) Search(query string, topK int, floor float64) []Hit {
	if topK <= 0 || ix.docs == 0 {
		return nil
	}

	ranked := Rank(ix.Scores(query))
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	hits := ranked[:0]
	for _, h := range ranked {
		if h.Score > floor {
			hits = append(hits, h)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}

// Rank orders every position by score descending; equal scores keep position order.
func Rank(scores []float64) []Hit {
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Doc: i, Score: s}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hits
}

type termWeight struct {
	id     int
	weight float64
}

// weigh maps raw in-vocabulary counts to an L2-normalised tf-idf row ordered by term id,
// so accumulation order and therefore scores are reproducible across calls.
func (ix *Index) weigh(counts map[string]int) []termWeight {
	row := make([]termWeight, 0, len(counts))
	for term, n := range counts {
		if id, ok := ix.vocab[term]; ok {
			row = append(row, termWeight{id: id, weight: float64(n) * ix.idf[id]})
		}
	}
	slices.SortFunc(row, func(a, b termWeight) int { return cmp.Compare(a.id, b.id) })

	var norm float64
	for _, tw := range row {
		norm += tw.weight * tw.weight
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for i := range row {
		row[i].weight /= norm
	}
	return row
}

func selectVocabulary(total map[string]int, maxFeatures int) []string {
	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}

	if maxFeatures > 0 && len(terms) > maxFeatures {
		slices.SortFunc(terms, func(a, b string) int {
			if c := cmp.Compare(total[b], total[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		terms = terms[:maxFeatures]
	}

	slices.Sort(terms)
	return terms
}
