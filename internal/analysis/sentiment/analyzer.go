package sentiment

import "strings"

// Label classifies the mood of a single user message.
type Label string

const (
	Neutral    Label = "neutral"
	Positive   Label = "positive"
	Frustrated Label = "frustrated"
)

var keywordBuckets = map[Label][]string{
	Positive: {
		"thanks", "thank you", "great", "awesome", "perfect", "love it", "love this",
		"amazing", "brilliant", "wonderful", "appreciate",
	},
	Frustrated: {
		"angry", "annoyed", "frustrated", "frustrating", "terrible", "awful", "worst",
		"ridiculous", "unacceptable", "useless", "not working", "doesn't work", "broken",
		"still waiting", "no response", "fed up", "complaint", "disappointed",
	},
}

var punctuationBoost = map[Label]int{
	Frustrated: 1,
}

// Analyze scores a user utterance against the keyword buckets and returns the
// dominant label. Frustration wins ties so an unhappy visitor is never read as
// merely neutral.
func Analyze(text string) Label {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Neutral
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	// Stacked exclamation marks read as agitation when paired with any
	// negative hit, never on their own.
	if exclamations := strings.Count(text, "!"); exclamations > 1 && scores[Frustrated] > 0 {
		scores[Frustrated] += exclamations * punctuationBoost[Frustrated]
	}

	if scores[Frustrated] >= scores[Positive] && scores[Frustrated] > 0 {
		return Frustrated
	}
	if scores[Positive] > 0 {
		return Positive
	}
	return Neutral
}
