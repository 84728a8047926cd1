package domain

import (
	"sort"
)

// combinedCppName is the merged identity some sources report instead of
// separate C and C++ entries.
const combinedCppName = "C/C++"

// splitShareEpsilon is the threshold below which reference shares are treated
// as numerically zero and a combined entry is kept unsplit.
const splitShareEpsilon = 1e-9

// AggregateSamples folds raw per-source samples into one RankingEntry per
// canonical language. Samples whose label canonicalizes to nothing are
// dropped. Within a group the share is the sum of contributing shares, the
// rank is the minimum rank any contributor carried, and the trend is the sum
// of contributing trends when at least one contributor carried one. The
// result is sorted by canonical name, so identical inputs always produce an
// identical entry sequence.
func AggregateSamples(samples []RawSample) []RankingEntry {
	grouped := make(map[string]*RankingEntry, len(samples))
	for _, sample := range samples {
		lang, ok := CanonicalName(sample.Label)
		if !ok {
			continue
		}

		entry, seen := grouped[lang]
		if !seen {
			entry = &RankingEntry{Lang: lang}
			grouped[lang] = entry
		}

		entry.Share += sample.Share
		if sample.Rank != nil && (entry.Rank == nil || *sample.Rank < *entry.Rank) {
			rank := *sample.Rank
			entry.Rank = &rank
		}
		if sample.Trend != nil {
			if entry.Trend == nil {
				entry.Trend = new(float64)
			}
			*entry.Trend += *sample.Trend
		}
	}

	entries := make([]RankingEntry, 0, len(grouped))
	for _, entry := range grouped {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Lang < entries[j].Lang })
	return entries
}

// SplitCombinedEntry reconciles a source that reports one merged "C/C++"
// entry against a reference source that reports C and C++ separately. The
// merged share and trend are split ratio-preserving by the reference shares;
// both split entries inherit the merged rank. The split only happens when
// the reference carries both languages and their shares do not sum to
// numerically zero; otherwise the merged entry is kept as is. The returned
// list is re-sorted by canonical name.
func SplitCombinedEntry(entries, reference []RankingEntry) []RankingEntry {
	combinedIdx := -1
	for i := range entries {
		if entries[i].Lang == combinedCppName {
			combinedIdx = i
			break
		}
	}
	if combinedIdx == -1 {
		return entries
	}

	var cEntry, cppEntry *RankingEntry
	for i := range reference {
		switch reference[i].Lang {
		case "C":
			cEntry = &reference[i]
		case "C++":
			cppEntry = &reference[i]
		}
	}
	if cEntry == nil || cppEntry == nil {
		return entries
	}
	total := cEntry.Share + cppEntry.Share
	if total <= splitShareEpsilon {
		return entries
	}

	combined := entries[combinedIdx]
	cppRatio := cppEntry.Share / total
	cRatio := 1.0 - cppRatio

	result := make([]RankingEntry, 0, len(entries)+1)
	result = append(result, entries[:combinedIdx]...)
	result = append(result, entries[combinedIdx+1:]...)
	result = append(result,
		splitEntry(combined, "C", cRatio),
		splitEntry(combined, "C++", cppRatio),
	)
	sort.Slice(result, func(i, j int) bool { return result[i].Lang < result[j].Lang })
	return result
}

// splitEntry builds one half of a ratio split, scaling share and trend and
// inheriting the combined rank.
func splitEntry(combined RankingEntry, lang string, ratio float64) RankingEntry {
	entry := RankingEntry{
		Lang:  lang,
		Share: combined.Share * ratio,
	}
	if combined.Rank != nil {
		rank := *combined.Rank
		entry.Rank = &rank
	}
	if combined.Trend != nil {
		trend := *combined.Trend * ratio
		entry.Trend = &trend
	}
	return entry
}
