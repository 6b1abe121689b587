// Command charlotte runs the Charlotte agent as an interactive terminal
// chat. The surrounding application (web UI, API) is expected to embed the
// memory core directly; this binary is the reference wiring.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlotte-agent/charlotte/internal/config"
	"github.com/charlotte-agent/charlotte/internal/llm"
	"github.com/charlotte-agent/charlotte/internal/memory"
	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/internal/storage/postgres"
	"github.com/charlotte-agent/charlotte/internal/storage/sqlite"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

const defaultPersona = `You are Charlotte, a thoughtful conversational companion with a persistent
memory. You remember past conversations and bring them up when relevant. You
are warm, curious, and honest about what you do and do not remember.`

func main() {
	personaPath := flag.String("persona", "", "path to a persona text file")
	backfill := flag.Bool("backfill", false, "back-fill missing embeddings and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	triggers, err := config.LoadTriggers(cfg.Emotion.TriggersPath)
	if err != nil {
		log.Fatalf("failed to load triggers: %v", err)
	}

	embedGen, err := llm.NewEmbeddingGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create embedding generator: %v", err)
	}
	embedder := memory.NewEmbedderForGenerator(embedGen, cfg.LLM.EmbeddingRateLimit, cfg.LLM.EmbeddingRateBurst)

	ctx := context.Background()

	// A seeded triggers table takes precedence over file and built-in
	// defaults, so deployments can manage triggers in the database.
	if stored, err := store.ListTriggers(ctx); err == nil && len(stored) > 0 {
		triggers = stored
	}

	if *backfill {
		assembler := memory.NewContextAssembler(store, embedder, assemblerOptions(cfg))
		records, err := assembler.BackfillEmbeddings(ctx)
		if err != nil {
			log.Fatalf("back-fill failed: %v", err)
		}
		conversations, err := memory.NewConversationStore(store, embedder).BackfillEmbeddings(ctx, cfg.Memory.BackfillBatchSize)
		if err != nil {
			log.Fatalf("conversation back-fill failed: %v", err)
		}
		fmt.Printf("Back-filled %d record and %d conversation embeddings.\n", records, conversations)
		return
	}

	chat, err := llm.NewChatCompleter(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create chat client: %v", err)
	}
	if hc, ok := chat.(interface{ HealthCheck(context.Context) error }); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			log.Printf("llm backend unreachable, replies will degrade: %v", err)
		}
	}

	persona := defaultPersona
	if *personaPath != "" {
		data, err := os.ReadFile(*personaPath)
		if err != nil {
			log.Fatalf("failed to read persona file: %v", err)
		}
		persona = strings.TrimSpace(string(data))
	}
	if cfg.Agent.UserName != "" {
		persona += fmt.Sprintf("\n\nYou are talking to %s.", cfg.Agent.UserName)
	}

	agent := memory.NewAgent(memory.AgentConfig{
		Store:    store,
		Embedder: embedder,
		Chat:     chat,
		Persona:  persona,
		Triggers: triggers,
		Baseline: types.EmotionalState{
			Emotion:   cfg.Emotion.DefaultEmotion,
			Intensity: cfg.Emotion.DefaultIntensity,
		},
		Options: assemblerOptions(cfg),
	})

	runChat(ctx, agent, cfg)
}

func assemblerOptions(cfg *config.Config) memory.AssemblerOptions {
	return memory.AssemblerOptions{
		RecentWindow:        time.Duration(cfg.Memory.RecentWindowHours) * time.Hour,
		RecentLimit:         cfg.Memory.RecentLimit,
		HistoricalLimit:     cfg.Memory.HistoricalLimit,
		SimilarityThreshold: cfg.Memory.SimilarityThreshold,
		BackfillBatchSize:   cfg.Memory.BackfillBatchSize,
	}
}

func openStore(cfg *config.Config) (storage.RecordStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.NewStore(cfg.Storage.PostgresDSN, cfg.LLM.EmbeddingDimension)
	case "sqlite", "":
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return sqlite.NewStore(filepath.Join(cfg.Storage.DataPath, "charlotte.db"))
	default:
		return nil, fmt.Errorf("unsupported storage engine: %q", cfg.Storage.StorageEngine)
	}
}

func runChat(ctx context.Context, agent *memory.Agent, cfg *config.Config) {
	fmt.Printf("%s is listening. Type /help for commands.\n\n", cfg.Agent.Name)

	var session []types.Turn
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, agent, cfg, line, &session); quit {
				return
			}
			continue
		}

		session = append(session, types.Turn{Sender: types.SenderUser, Text: line, Timestamp: time.Now()})

		// Trigger-based transition on the user's words, then the model's
		// self-reported state from the reply markers.
		recent := session
		if len(recent) > 4 {
			recent = recent[len(recent)-4:]
		}
		agent.UpdateEmotion(ctx, recent)

		reply := agent.Respond(ctx, line, "")
		session = append(session, types.Turn{Sender: types.SenderAgent, Text: reply.Text, Timestamp: time.Now()})

		fmt.Printf("\n%s\n\n[%s, %.2f]\n\n", reply.Text, reply.Emotion.Emotion, reply.Emotion.Intensity)
	}
}

func runCommand(ctx context.Context, agent *memory.Agent, cfg *config.Config, line string, session *[]types.Turn) bool {
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "/help":
		fmt.Println(`/save        save the current session to the conversation archive
/recall <q>  find saved conversations relevant to a query
/show <id>   print a saved conversation
/mood        show the current emotional state
/history     show recent emotional state transitions
/observe     show statistics for the current session
/quit        exit`)
	case "/save":
		id, err := agent.Conversations.SaveConversation(ctx, *session, memory.SaveOptions{})
		if err != nil {
			fmt.Printf("save failed: %v\n", err)
			break
		}
		fmt.Printf("saved as %s\n", id)
	case "/recall":
		if arg == "" {
			fmt.Println("usage: /recall <query>")
			break
		}
		matches := agent.Conversations.FindRelevant(ctx, arg, 3)
		if len(matches) == 0 {
			fmt.Println("nothing relevant found")
			break
		}
		for _, m := range matches {
			fmt.Printf("%.3f  %s  %s (%s)\n", m.Relevance, m.Conversation.ID, m.Conversation.Title, m.Conversation.ConversationType)
			agent.Conversations.RecordUsage(ctx, m.Conversation.ID)
		}
	case "/show":
		if arg == "" {
			fmt.Println("usage: /show <id>")
			break
		}
		conv, err := agent.Conversations.Get(ctx, arg)
		if err != nil {
			fmt.Printf("lookup failed: %v\n", err)
			break
		}
		fmt.Printf("%s (%s, quality %.2f)\n", conv.Title, conv.ConversationType, conv.QualityScore)
		for _, t := range conv.Turns {
			fmt.Printf("%s: %s\n", t.Sender, t.Text)
		}
	case "/mood":
		state := agent.CurrentEmotion()
		fmt.Printf("%s (%.2f), tone %s\n", state.Emotion, state.Intensity, agent.Emotions.Tone())
	case "/history":
		events := agent.Emotions.History(ctx, cfg.Emotion.HistoryLimit)
		for _, e := range events {
			fmt.Printf("%s  %s (%.2f) from %s\n", e.CreatedAt.Format("15:04:05"), e.Emotion, e.Intensity, e.TransitionFrom)
		}
	case "/observe":
		insights := agent.Observe(*session)
		fmt.Printf("turns=%d user=%d agent=%d avg_len=%.1f topics=%s tone=%s\n",
			insights.ConversationLength, insights.UserMessageCount, insights.AgentMessageCount,
			insights.AverageMessageLength, strings.Join(insights.ConversationTopics, ","), insights.EmotionalTone)
	case "/quit", "/exit":
		return true
	default:
		fmt.Println("unknown command; try /help")
	}

	return false
}
