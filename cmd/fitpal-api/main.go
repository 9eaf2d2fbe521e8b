package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/PabloGalante/fitpal-agent/internal/adapters/http"
	"github.com/PabloGalante/fitpal-agent/internal/adapters/llm"
	memstore "github.com/PabloGalante/fitpal-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/fitpal-agent/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/fitpal-agent/internal/app/agents"
	"github.com/PabloGalante/fitpal-agent/internal/app/orchestrator"
	"github.com/PabloGalante/fitpal-agent/internal/app/slotfill"
	"github.com/PabloGalante/fitpal-agent/internal/config"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// LLM: rule-based mock for local dev, Gemini otherwise.
	var (
		extractor domain.Extractor
		generator domain.Generator
		replier   domain.Replier
	)
	if cfg.UseMockLLM {
		log.Println("[LLM] Using rule-based mock")
		mock := llm.NewMock()
		extractor, generator, replier = mock, mock, mock
	} else {
		log.Println("[LLM] Using Gemini via Vertex AI")
		gemini, err := llm.NewGemini(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
		extractor, generator, replier = gemini, gemini, gemini
	}

	// Storage: sqlite or memory.
	var store domain.StateStore
	switch cfg.StorageBackend {
	case "sqlite":
		log.Printf("[STORE] Using SQLite storage (%s)", cfg.SQLitePath)
		s, err := sqlitestore.NewStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("error initializing SQLite store: %v", err)
		}
		defer s.Close()
		store = s
	default:
		log.Println("[STORE] Using in-memory storage")
		store = memstore.NewStateStore()
	}

	engine := slotfill.NewEngine(extractor)
	engine.SetAttempts(cfg.ExtractRetries)
	agentList := []agents.Agent{
		agents.NewHealthAgent(engine, replier),
		agents.NewNutritionAgent(engine, generator),
		agents.NewFitnessAgent(engine, generator),
		agents.NewRecipeAgent(generator),
		agents.NewCoachAgent(generator, replier),
	}

	router := orchestrator.NewRouter(orchestrator.KeywordClassifier{})
	svc := orchestrator.NewService(store, router, agentList, cfg.LLMTimeout)

	handler := httpadapter.NewServer(svc)

	addr := ":" + cfg.Port
	log.Println("FitPal API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
