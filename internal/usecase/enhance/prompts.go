package enhance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talentmesh/profilesearch/internal/domain/search/result"
)

// maxProfileChars truncates serialized profiles in the rerank prompt to keep
// token usage bounded.
const maxProfileChars = 600

// buildEnhancePrompt asks the model to expand a query into a richer search
// string, returning strict JSON.
func buildEnhancePrompt(query, userContext string) string {
	var b strings.Builder
	b.WriteString("You are a search query expander for a professional networking platform.\n")
	b.WriteString("Expand the query below with synonyms, related job titles and related skills.\n\n")
	fmt.Fprintf(&b, "Query: %s\n", query)
	if userContext != "" {
		fmt.Fprintf(&b, "Requester context: %s\n", userContext)
	}
	b.WriteString("\nRespond with ONLY a JSON object, no prose:\n")
	b.WriteString(`{"enhancedQuery": "<expanded search string>", "searchTerms": ["<term>", ...], "intent": "<one-line intent>"}`)
	return b.String()
}

// buildRerankPrompt asks the model to score candidates against the original
// query, dropping low-confidence entries.
func buildRerankPrompt(query, userContext string, items []result.RankedProfile, threshold int) string {
	var b strings.Builder
	b.WriteString("You are ranking candidate profiles for a people search on a professional networking platform.\n\n")
	fmt.Fprintf(&b, "Search query: %s\n", query)
	if userContext != "" {
		fmt.Fprintf(&b, "Requester context: %s\n", userContext)
	}
	b.WriteString("\nCandidates:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- userId: %s, retrievalScore: %.3f, profile: %s\n",
			item.UserID, item.HybridScore, serializeProfile(item.Profile))
	}
	fmt.Fprintf(&b, "\nFor each relevant candidate, assign a confidenceScore from 0 to 100, "+
		"a short matchExplanation, and up to three relevanceFactors. "+
		"Omit candidates scoring below %d.\n", threshold)
	b.WriteString("Respond with ONLY a JSON array, no prose:\n")
	b.WriteString(`[{"userId": "...", "confidenceScore": 0, "matchExplanation": "...", "relevanceFactors": ["..."]}]`)
	return b.String()
}

func serializeProfile(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	s := string(data)
	if len(s) > maxProfileChars {
		s = s[:maxProfileChars]
	}
	return s
}
