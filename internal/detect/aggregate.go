package detect

// Aggregate deduplicates candidate opportunities from all rules. The key is
// (type, sorted market ids); the first occurrence wins and later duplicates
// are dropped. Order-preserving: this is a stable filter, not a re-ranking.
func Aggregate(opportunities []*Opportunity) []*Opportunity {
	seen := make(map[string]bool, len(opportunities))
	unique := make([]*Opportunity, 0, len(opportunities))

	for _, opp := range opportunities {
		key := opp.DedupKey()
		if seen[key] {
			DuplicatesDroppedTotal.Inc()
			continue
		}
		seen[key] = true
		unique = append(unique, opp)
	}

	return unique
}
