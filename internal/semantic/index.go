package semantic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/pkg/utils"
)

// Options tunes the semantic index build.
type Options struct {
	// Dimensions is the reduced rank k. Clamped to the attainable rank of
	// the term-document matrix.
	Dimensions int
	// MinDocFreq drops terms appearing in fewer documents.
	MinDocFreq int
}

// DefaultOptions returns the build defaults (k=100, min document frequency 1).
func DefaultOptions() Options {
	return Options{Dimensions: 100, MinDocFreq: 1}
}

// Match is a semantic search hit. Score is cosine similarity clamped to [0, 1].
type Match struct {
	ID    int
	Score float64
}

// Index is a reduced-rank vector space over quote text. The projection basis
// is computed once at build time and reused for every query; the index is
// immutable and part of its corpus snapshot.
type Index struct {
	available bool
	rank      int

	vocab map[string]int // term -> column
	idf   []float64

	ids     []int       // quote ids aligned with docVecs rows
	docVecs [][]float64 // unit-normalized reduced document vectors, len rank each
	basis   *mat.Dense  // terms x rank, projects a weighted term vector into the space
}

// Build computes the TF-IDF term-document matrix over preprocessed quote
// text, reduces it with a rank-k truncated SVD, and stores the document
// vectors together with the projection basis. A corpus whose vocabulary is
// empty (or whose matrix cannot be factorized) yields an unavailable index:
// queries return no results but nothing errors.
func Build(quotes []models.Quote, opts Options) *Index {
	if opts.Dimensions <= 0 {
		opts.Dimensions = DefaultOptions().Dimensions
	}
	if opts.MinDocFreq <= 0 {
		opts.MinDocFreq = 1
	}

	idx := &Index{}
	if len(quotes) == 0 {
		return idx
	}

	docs := make([][]string, len(quotes))
	df := make(map[string]int)
	for i, q := range quotes {
		docs[i] = Preprocess(q.Text)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= opts.MinDocFreq {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return idx
	}
	sort.Strings(terms)

	idx.vocab = make(map[string]int, len(terms))
	idx.idf = make([]float64, len(terms))
	n := float64(len(quotes))
	for col, term := range terms {
		idx.vocab[term] = col
		// Smoothed IDF; never zero, so present terms always carry weight.
		idx.idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	a := mat.NewDense(len(quotes), len(terms), nil)
	for i, tokens := range docs {
		a.SetRow(i, idx.weigh(tokens))
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return idx
	}
	values := svd.Values(nil)
	rank := 0
	for _, s := range values {
		if s > 1e-10 {
			rank++
		}
	}
	if rank == 0 {
		return idx
	}
	if rank > opts.Dimensions {
		rank = opts.Dimensions
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	idx.rank = rank
	idx.basis = mat.NewDense(len(terms), rank, nil)
	for t := 0; t < len(terms); t++ {
		for j := 0; j < rank; j++ {
			idx.basis.Set(t, j, v.At(t, j))
		}
	}

	idx.ids = make([]int, len(quotes))
	idx.docVecs = make([][]float64, len(quotes))
	for i, q := range quotes {
		idx.ids[i] = q.ID
		vec := make([]float64, rank)
		for j := 0; j < rank; j++ {
			vec[j] = u.At(i, j) * values[j]
		}
		utils.NormalizeL2(vec)
		idx.docVecs[i] = vec
	}
	idx.available = true
	return idx
}

// Available reports whether the semantic index was built successfully.
// False means semantic mode degrades to empty results.
func (idx *Index) Available() bool {
	return idx != nil && idx.available
}

// Rank returns the dimensionality of the reduced space (0 when unavailable).
func (idx *Index) Rank() int {
	if idx == nil {
		return 0
	}
	return idx.rank
}

// Query projects text into the reduced space using the build-time basis and
// returns up to limit quotes by descending cosine similarity, ties broken by
// quote id ascending. Scores are clamped to [0, 1]. A query whose tokens are
// all outside the build-time vocabulary returns no results.
func (idx *Index) Query(text string, limit int) []Match {
	if !idx.Available() || limit <= 0 {
		return nil
	}
	weighted := idx.weigh(Preprocess(text))
	known := false
	for _, w := range weighted {
		if w != 0 {
			known = true
			break
		}
	}
	if !known {
		return nil
	}

	projected := make([]float64, idx.rank)
	qv := mat.NewVecDense(len(weighted), weighted)
	out := mat.NewVecDense(idx.rank, projected)
	out.MulVec(idx.basis.T(), qv)
	utils.NormalizeL2(projected)

	matches := make([]Match, 0, len(idx.ids))
	for i, dv := range idx.docVecs {
		var dot float64
		for j := range dv {
			dot += dv[j] * projected[j]
		}
		matches = append(matches, Match{ID: idx.ids[i], Score: utils.Clamp01(dot)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}

// weigh converts preprocessed tokens into a TF-IDF weighted term vector over
// the build-time vocabulary. Tokens outside the vocabulary are ignored.
func (idx *Index) weigh(tokens []string) []float64 {
	vec := make([]float64, len(idx.idf))
	if len(tokens) == 0 {
		return vec
	}
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if col, ok := idx.vocab[tok]; ok {
			tf[col]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for col, count := range tf {
		vec[col] = float64(count) / float64(total) * idx.idf[col]
	}
	return vec
}
