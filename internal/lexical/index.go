// Package lexical provides the in-memory BM25 index over normalized profile
// texts. The index is a pure cache: it is rebuildable at any time from the
// full (userID, normalizedText) set and is never a source of truth.
package lexical

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BM25 parameters (standard Robertson/Sparck Jones defaults).
const (
	k1 = 1.2
	b  = 0.75
)

// Hit is one ranked document.
type Hit struct {
	UserID string
	Score  float64
}

// Index is a rebuild-on-write BM25 index. Writes take the write lock and
// recompute the ranking structure wholesale; searches share the read lock.
// Callers never see which strategy is used behind Add/Update/Remove/Search.
type Index struct {
	mu sync.RWMutex

	texts  map[string]string         // userID -> normalized text (backing collection)
	tokens map[string][]string       // userID -> tokenized document
	df     map[string]int            // term -> document frequency
	tf     map[string]map[string]int // term -> userID -> term frequency
	avgdl  float64

	lastUpdated time.Time
	logger      *zap.Logger
}

// New creates an empty index.
func New(logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		texts:  make(map[string]string),
		tokens: make(map[string][]string),
		df:     make(map[string]int),
		tf:     make(map[string]map[string]int),
		logger: logger,
	}
}

// Build replaces the whole document collection and rebuilds the ranking
// structure. Used at startup from persisted records.
func (i *Index) Build(documents map[string]string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.texts = make(map[string]string, len(documents))
	for id, text := range documents {
		i.texts[id] = text
	}
	i.rebuild()
}

// Add indexes a new document.
func (i *Index) Add(userID, text string) {
	i.Update(userID, text)
}

// Update upserts a document and rebuilds.
func (i *Index) Update(userID, text string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.texts[userID] = text
	i.rebuild()
}

// Remove deletes a document and rebuilds. Removing an absent id is a no-op.
func (i *Index) Remove(userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.texts[userID]; !ok {
		return
	}
	delete(i.texts, userID)
	i.rebuild()
}

// rebuild recomputes postings from the backing collection. Caller holds the
// write lock.
func (i *Index) rebuild() {
	i.tokens = make(map[string][]string, len(i.texts))
	i.df = make(map[string]int)
	i.tf = make(map[string]map[string]int)

	totalLen := 0
	for id, text := range i.texts {
		toks := Tokenize(text)
		i.tokens[id] = toks
		totalLen += len(toks)

		seen := make(map[string]struct{}, len(toks))
		for _, term := range toks {
			byDoc, ok := i.tf[term]
			if !ok {
				byDoc = make(map[string]int)
				i.tf[term] = byDoc
			}
			byDoc[id]++
			if _, dup := seen[term]; !dup {
				i.df[term]++
				seen[term] = struct{}{}
			}
		}
	}

	if len(i.texts) > 0 {
		i.avgdl = float64(totalLen) / float64(len(i.texts))
	} else {
		i.avgdl = 0
	}
	i.lastUpdated = time.Now()
}

// Search scores every document against the query and returns hits with
// score > 0, sorted by descending score, truncated to limit. An empty or
// unindexed corpus yields empty results, never an error.
func (i *Index) Search(query string, limit int) []Hit {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.texts) == 0 {
		i.logger.Warn("lexical search on empty index", zap.String("query", query))
		return nil
	}

	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	n := float64(len(i.texts))
	scores := make(map[string]float64)

	for _, term := range terms {
		byDoc, ok := i.tf[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (n-float64(i.df[term])+0.5)/(float64(i.df[term])+0.5))
		for id, freq := range byDoc {
			dl := float64(len(i.tokens[id]))
			tf := float64(freq)
			norm := tf + k1*(1-b+b*dl/i.avgdl)
			scores[id] += idf * tf * (k1 + 1) / norm
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			hits = append(hits, Hit{UserID: id, Score: score})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].UserID < hits[b].UserID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Count returns the number of indexed documents.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.texts)
}

// LastUpdated returns the time of the last index mutation.
func (i *Index) LastUpdated() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.lastUpdated
}
