package main

import (
	"context"
	"log"
	"net/http"
	"os"

	httpadapter "github.com/havenlabs/haven-agent/internal/adapters/http"
	"github.com/havenlabs/haven-agent/internal/adapters/llm"
	firestorestore "github.com/havenlabs/haven-agent/internal/adapters/storage/firestore"
	memstore "github.com/havenlabs/haven-agent/internal/adapters/storage/memory"
	redisstore "github.com/havenlabs/haven-agent/internal/adapters/storage/redis"
	"github.com/havenlabs/haven-agent/internal/app/agentflow"
	"github.com/havenlabs/haven-agent/internal/app/assessment"
	"github.com/havenlabs/haven-agent/internal/app/conversation"
	"github.com/havenlabs/haven-agent/internal/app/fallback"
	"github.com/havenlabs/haven-agent/internal/app/tools"
	"github.com/havenlabs/haven-agent/internal/config"
	"github.com/havenlabs/haven-agent/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	llmClient := buildLLMClient(ctx, cfg)
	sessionStore, messageStore, assessmentStore := buildStores(ctx, cfg)

	orchestrator := agentflow.NewOrchestrator(
		llmClient,
		fallback.NewResponder(),
		tools.NewAssessmentTool(assessmentStore),
		cfg.QuestionCadence,
		cfg.AnalysisTimeout,
	)

	convSvc := conversation.NewService(sessionStore, messageStore, orchestrator)
	assessSvc := assessment.NewService(assessmentStore)

	sweeper := conversation.NewSweeper(convSvc, cfg.SweepInterval, cfg.IdleTimeout)
	go sweeper.Run(ctx)

	handler := httpadapter.NewServer(convSvc, assessSvc)

	addr := ":" + cfg.Port
	log.Println("Haven API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}

func buildLLMClient(ctx context.Context, cfg *config.Config) domain.LLMClient {
	switch cfg.LLMBackend {
	case "vertex":
		log.Println("[LLM] Using Vertex LLM client")
		client, err := llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			log.Fatalf("error initializing Vertex LLM client: %v", err)
		}
		return client
	case "openai":
		log.Println("[LLM] Using OpenAI LLM client")
		client, err := llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("error initializing OpenAI LLM client: %v", err)
		}
		return client
	default:
		log.Println("[LLM] Using MOCK LLM client")
		return llm.NewMockLLM()
	}
}

func buildStores(ctx context.Context, cfg *config.Config) (domain.SessionStore, domain.MessageStore, domain.AssessmentStore) {
	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}
		// 1 store, implements 3 interfaces
		return store, store, store

	case "redis":
		log.Printf("[STORE] Using Redis storage (addr=%s)", cfg.RedisAddr)
		store := redisstore.NewStore(cfg.RedisAddr)
		return store, store, store

	default:
		log.Println("[STORE] Using in-memory storage")
		return memstore.NewSessionStore(), memstore.NewMessageStore(), memstore.NewAssessmentStore()
	}
}
