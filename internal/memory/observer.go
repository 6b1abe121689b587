package memory

import (
	"sync/atomic"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// Observer produces lightweight post-hoc statistics over a finished
// conversation. Pure aggregation; the only state is a monotonically
// increasing observation counter scoped to the instance.
type Observer struct {
	counter atomic.Uint64
}

// NewObserver creates an Observer with a fresh counter.
func NewObserver() *Observer {
	return &Observer{}
}

// Observe aggregates turn counts, average message length, topics, and tone
// for a conversation. Safe for concurrent use.
func (o *Observer) Observe(turns []types.Turn) types.Insights {
	insights := types.Insights{
		ConversationLength: len(turns),
		EmotionalTone:      types.ToneNeutral,
		ObservationID:      o.counter.Add(1),
	}

	if len(turns) == 0 {
		return insights
	}

	totalLength := 0
	for _, t := range turns {
		totalLength += len(t.Text)
		switch t.Sender {
		case types.SenderUser:
			insights.UserMessageCount++
		case types.SenderAgent:
			insights.AgentMessageCount++
		}
	}
	insights.AverageMessageLength = float64(totalLength) / float64(len(turns))
	insights.ConversationTopics = ExtractTopics(turns)
	insights.EmotionalTone = ToneOfText(joinTurnText(turns))

	return insights
}
