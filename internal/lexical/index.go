package lexical

import (
	"container/heap"
	"math"
	"sort"

	"hotelsearch/internal/utils"
)

// Doc is a single document to be indexed.
type Doc struct {
	ID   int64
	Text string
}

// Hit is a scored match returned by Query.
type Hit struct {
	ID    int64
	Score float64
}

type posting struct {
	row    int
	weight float64
}

// Index is an immutable TF-IDF index over normalized unigrams and bigrams.
// Build it once and share it; Query is safe for concurrent use.
type Index struct {
	ids      []int64
	postings map[string][]posting
}

// Options control vocabulary pruning at build time.
type Options struct {
	// MinDocFreq drops terms appearing in fewer documents. Zero means 2.
	MinDocFreq int
	// MaxVocab caps the vocabulary at the highest-df terms. Zero means no cap.
	MaxVocab int
}

// Build constructs an index from the given documents. Documents with no
// surviving terms simply never match.
func Build(docs []Doc, opts Options) *Index {
	minDF := opts.MinDocFreq
	if minDF <= 0 {
		minDF = 2
	}

	termDocs := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, d := range docs {
		counts := make(map[string]int)
		toks := utils.Tokenize(d.Text)
		for _, t := range toks {
			counts[t]++
		}
		for j := 0; j+1 < len(toks); j++ {
			counts[toks[j]+" "+toks[j+1]]++
		}
		termDocs[i] = counts
		for t := range counts {
			df[t]++
		}
	}

	vocab := make([]string, 0, len(df))
	for t, n := range df {
		if n >= minDF {
			vocab = append(vocab, t)
		}
	}
	if opts.MaxVocab > 0 && len(vocab) > opts.MaxVocab {
		sort.Slice(vocab, func(a, b int) bool {
			if df[vocab[a]] != df[vocab[b]] {
				return df[vocab[a]] > df[vocab[b]]
			}
			return vocab[a] < vocab[b]
		})
		vocab = vocab[:opts.MaxVocab]
	}
	kept := make(map[string]float64, len(vocab))
	n := float64(len(docs))
	for _, t := range vocab {
		kept[t] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	idx := &Index{
		ids:      make([]int64, len(docs)),
		postings: make(map[string][]posting, len(kept)),
	}
	for i, d := range docs {
		idx.ids[i] = d.ID
		var norm float64
		weights := make(map[string]float64)
		for t, c := range termDocs[i] {
			idf, ok := kept[t]
			if !ok {
				continue
			}
			w := float64(c) * idf
			weights[t] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for t, w := range weights {
			idx.postings[t] = append(idx.postings[t], posting{row: i, weight: w / norm})
		}
	}
	return idx
}

// Query scores text against the index and returns up to k hits with positive
// cosine similarity, best first.
func (idx *Index) Query(text string, k int) []Hit {
	if k <= 0 {
		return nil
	}
	toks := utils.Tokenize(text)
	qcounts := make(map[string]int)
	for _, t := range toks {
		qcounts[t]++
	}
	for j := 0; j+1 < len(toks); j++ {
		qcounts[toks[j]+" "+toks[j+1]]++
	}

	var qnorm float64
	qweights := make(map[string]float64)
	for t, c := range qcounts {
		if _, ok := idx.postings[t]; !ok {
			continue
		}
		w := float64(c)
		qweights[t] = w
		qnorm += w * w
	}
	if len(qweights) == 0 {
		return nil
	}
	qnorm = math.Sqrt(qnorm)

	scores := make(map[int]float64)
	for t, qw := range qweights {
		for _, p := range idx.postings[t] {
			scores[p.row] += (qw / qnorm) * p.weight
		}
	}

	h := &hitHeap{}
	heap.Init(h)
	for row, s := range scores {
		if s <= 0 {
			continue
		}
		if h.Len() < k {
			heap.Push(h, Hit{ID: idx.ids[row], Score: s})
		} else if s > (*h)[0].Score {
			(*h)[0] = Hit{ID: idx.ids[row], Score: s}
			heap.Fix(h, 0)
		}
	}
	out := make([]Hit, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Hit)
	}
	return out
}

// Size reports how many documents the index holds.
func (idx *Index) Size() int { return len(idx.ids) }

type hitHeap []Hit

func (h hitHeap) Len() int            { return len(h) }
func (h hitHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h hitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x interface{}) { *h = append(*h, x.(Hit)) }
func (h *hitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
