package memory

import (
	"strings"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// Conversation type and depth labels produced by the classifier.
const (
	TypeAcademic      = "academic"
	TypeTechnical     = "technical"
	TypeEmotional     = "emotional"
	TypeCasual        = "casual"
	TypePhilosophical = "philosophical"

	DepthShallow  = "shallow"
	DepthModerate = "moderate"
	DepthDeep     = "deep"
)

// keywordCategory pairs a category label with the keywords that score for
// it. Tables are ordered slices, not maps: ties resolve to the first
// category declared.
type keywordCategory struct {
	Label    string
	Keywords []string
}

var conversationTypeTable = []keywordCategory{
	{TypeAcademic, []string{"research", "study", "paper", "analysis", "methodology", "academic"}},
	{TypeTechnical, []string{"code", "programming", "algorithm", "system", "implementation"}},
	{TypeEmotional, []string{"feel", "emotion", "sad", "happy", "excited", "worried"}},
	{TypeCasual, []string{"hello", "how are you", "nice", "good", "thanks", "thank you"}},
	{TypePhilosophical, []string{"think", "believe", "philosophy", "meaning", "purpose", "existence"}},
}

var topicTable = []keywordCategory{
	{"AI", []string{"ai", "artificial intelligence", "machine learning", "neural network"}},
	{"research", []string{"research", "study", "experiment", "analysis", "methodology"}},
	{"technology", []string{"technology", "tech", "software", "computer", "digital"}},
	{"philosophy", []string{"philosophy", "ethics", "morality", "meaning", "purpose"}},
	{"personal", []string{"personal", "life", "experience", "feelings", "emotions"}},
	{"academic", []string{"academic", "university", "education", "learning", "knowledge"}},
}

// complexTopics are the topic labels that count toward conversation depth.
var complexTopics = map[string]bool{
	"AI":         true,
	"research":   true,
	"philosophy": true,
	"academic":   true,
}

// Word lists for per-turn emotional arc labeling. Only agent turns are
// scanned, so these describe the agent's own phrasing.
var (
	arcPositiveWords = []string{"happy", "excited", "great", "wonderful"}
	arcNegativeWords = []string{"sad", "sorry", "unfortunate", "worried"}
)

// Word lists for whole-conversation tone tallies (Observer and summary use).
var (
	tonePositiveWords = []string{"happy", "excited", "great", "wonderful", "amazing", "love", "enjoy"}
	toneNegativeWords = []string{"sad", "angry", "frustrated", "worried", "hate", "terrible", "awful", "bad"}
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true,
	"they": true, "me": true, "him": true, "her": true, "us": true, "them": true,
}

// joinTurnText concatenates turn texts with spaces and lowercases the
// result, the shared input shape for every keyword table.
func joinTurnText(turns []types.Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, t.Text)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// ClassifyType assigns a conversation one of the five type labels by
// keyword hit count. All-zero scores default to casual; ties go to the
// category declared first.
func ClassifyType(turns []types.Turn) string {
	text := joinTurnText(turns)

	best := TypeCasual
	bestScore := 0
	for _, cat := range conversationTypeTable {
		score := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat.Label
			bestScore = score
		}
	}

	return best
}

// ExtractTopics returns up to 5 topic labels whose keywords appear in the
// conversation, in table order. Falls back to ["general"] when nothing
// matches.
func ExtractTopics(turns []types.Turn) []string {
	text := joinTurnText(turns)

	var topics []string
	for _, cat := range topicTable {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				topics = append(topics, cat.Label)
				break
			}
		}
		if len(topics) == 5 {
			break
		}
	}

	if len(topics) == 0 {
		return []string{"general"}
	}
	return topics
}

// ExtractEmotionalArc labels each agent turn positive, negative, or neutral
// and derives the overall tone from the strict majority of positive versus
// negative labels.
func ExtractEmotionalArc(turns []types.Turn) types.EmotionalArc {
	var emotions []string
	for _, t := range turns {
		if t.Sender != types.SenderAgent {
			continue
		}
		text := strings.ToLower(t.Text)
		switch {
		case containsAny(text, arcPositiveWords):
			emotions = append(emotions, "positive")
		case containsAny(text, arcNegativeWords):
			emotions = append(emotions, "negative")
		default:
			emotions = append(emotions, "neutral")
		}
	}

	positive, negative := 0, 0
	for _, e := range emotions {
		switch e {
		case "positive":
			positive++
		case "negative":
			negative++
		}
	}

	tone := types.ToneNeutral
	if positive > negative {
		tone = types.TonePositive
	} else if negative > positive {
		tone = types.ToneNegative
	}

	return types.EmotionalArc{Emotions: emotions, OverallTone: tone}
}

// AssessDepth rates a conversation shallow, moderate, or deep. Deep needs
// long turns on average, a complex topic, and more than half the turns over
// 100 characters; moderate needs either decent average length or a complex
// topic.
func AssessDepth(turns []types.Turn) string {
	if len(turns) == 0 {
		return DepthShallow
	}

	totalLength := 0
	longTurns := 0
	for _, t := range turns {
		totalLength += len(t.Text)
		if len(t.Text) > 100 {
			longTurns++
		}
	}
	avgLength := float64(totalLength) / float64(len(turns))

	hasComplexTopic := false
	for _, topic := range ExtractTopics(turns) {
		if complexTopics[topic] {
			hasComplexTopic = true
			break
		}
	}

	if avgLength > 80 && hasComplexTopic && longTurns > len(turns)/2 {
		return DepthDeep
	}
	if avgLength > 50 || hasComplexTopic {
		return DepthModerate
	}
	return DepthShallow
}

// QualityScore rates a conversation in [0, 1]. Starts from a 0.5 base and
// adds boosts for length, substance, balanced senders, and topical focus.
func QualityScore(turns []types.Turn) float64 {
	if len(turns) == 0 {
		return 0.0
	}

	score := 0.5

	if len(turns) >= 4 {
		score += 0.2
	}

	totalLength := 0
	hasUser, hasAgent := false, false
	for _, t := range turns {
		totalLength += len(t.Text)
		switch t.Sender {
		case types.SenderUser:
			hasUser = true
		case types.SenderAgent:
			hasAgent = true
		}
	}
	if totalLength > 200 {
		score += 0.1
	}
	if hasUser && hasAgent {
		score += 0.1
	}

	topics := ExtractTopics(turns)
	if len(topics) > 1 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// ToneOfText tallies positive and negative keyword hits in lowercased text
// and returns the majority tone, or neutral on a tie.
func ToneOfText(text string) string {
	text = strings.ToLower(text)

	positive, negative := 0, 0
	for _, w := range tonePositiveWords {
		if strings.Contains(text, w) {
			positive++
		}
	}
	for _, w := range toneNegativeWords {
		if strings.Contains(text, w) {
			negative++
		}
	}

	if positive > negative {
		return types.TonePositive
	}
	if negative > positive {
		return types.ToneNegative
	}
	return types.ToneNeutral
}

// ExtractKeywords pulls up to limit meaningful words from text: anything
// longer than two characters that is not a stop word, in input order.
func ExtractKeywords(text string, limit int) []string {
	var keywords []string
	for _, word := range strings.Fields(text) {
		w := strings.ToLower(strings.Trim(word, ".,!?;:\"'"))
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		keywords = append(keywords, w)
		if limit > 0 && len(keywords) == limit {
			break
		}
	}
	return keywords
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
