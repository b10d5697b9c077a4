package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/aletheialabs/aletheia/internal/chat"
	"github.com/aletheialabs/aletheia/internal/chunker"
	"github.com/aletheialabs/aletheia/internal/config"
	"github.com/aletheialabs/aletheia/internal/embed"
	"github.com/aletheialabs/aletheia/internal/llm"
	"github.com/aletheialabs/aletheia/internal/logger"
	"github.com/aletheialabs/aletheia/internal/memory"
	"github.com/aletheialabs/aletheia/internal/store"
)

const farewell = "Aletheia: Farewell. May your path be clear."

// Config represents the application configuration.
type Config struct {
	OpenAIAPIKey   string
	OpenAIModel    string
	EmbeddingModel string
	MilvusHost     string
	MilvusPort     string
	Collection     string
	ConfigDir      string
}

// loadConfig loads configuration from environment variables.
func loadConfig() *Config {
	return &Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    config.GetEnv("OPENAI_MODEL", llm.DefaultModel),
		EmbeddingModel: config.GetEnv("EMBEDDING_MODEL", embed.DefaultModel),
		MilvusHost:     config.GetEnv("MILVUS_HOST", "localhost"),
		MilvusPort:     config.GetEnv("MILVUS_PORT", "19530"),
		Collection:     config.GetEnv("MILVUS_COLLECTION", store.DefaultCollection),
		ConfigDir:      config.GetEnv("ALETHEIA_CONFIG_DIR", "configs"),
	}
}

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger.Init(*debug)
	defer logger.Sync()

	logger.Info("Starting Aletheia chat...")

	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	cfg := loadConfig()

	if cfg.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder, err := embed.NewOpenAI(cfg.OpenAIAPIKey, cfg.EmbeddingModel, 0)
	if err != nil {
		logger.Error("Failed to initialize embedder: %v", err)
		os.Exit(1)
	}

	milvusAddr := cfg.MilvusHost + ":" + cfg.MilvusPort
	handle := store.Open(ctx, milvusAddr, cfg.Collection, embedder.Dimensions())
	defer handle.Store.Close()
	if !handle.Persistent {
		fmt.Println("Note: running on in-memory storage; nothing will persist across sessions.")
	}

	ch, err := chunker.New(chunker.DefaultSize, chunker.DefaultOverlap)
	if err != nil {
		logger.Error("Failed to initialize chunker: %v", err)
		os.Exit(1)
	}
	memoryService := memory.NewService(handle.Store, embedder, ch)

	completer, err := llm.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		logger.Error("Failed to initialize completion service: %v", err)
		os.Exit(1)
	}

	identity, err := llm.LoadIdentity(filepath.Join(cfg.ConfigDir, "system_prompt.yaml"))
	if err != nil {
		logger.Warn("Failed to load identity configuration, using defaults: %v", err)
	}

	lenses, err := llm.LoadLenses(filepath.Join(cfg.ConfigDir, "reasoning_lenses.yaml"))
	if err != nil {
		logger.Warn("Failed to load reasoning lenses, lens commands disabled: %v", err)
	} else {
		logger.Info("Loaded %d reasoning lenses", lenses.Len())
	}

	session := chat.NewSession(memoryService, completer, lenses, identity.SystemPrompt())

	fmt.Println("Aletheia is listening. Type 'quit' to exit, or 'lens: <name> <query>' to use a reasoning lens.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()
		if input == "quit" {
			fmt.Println(farewell)
			break
		}

		reply := session.Respond(ctx, input)
		if reply == "" {
			continue
		}
		fmt.Println("Aletheia: " + reply)
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Input error: %v", err)
	}

	logger.Info("Chat session ended")
}
