package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/ai/gemini"
	"github.com/recruiteros/recruiteros/internal/chat"
	"github.com/recruiteros/recruiteros/internal/document"
	"github.com/recruiteros/recruiteros/internal/logger"
	"github.com/recruiteros/recruiteros/internal/pipeline"
	"github.com/recruiteros/recruiteros/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowBoard    = "Show the board"
	PromptShowAnalysis = "Show a candidate analysis"
	PromptMove         = "Move a candidate"
	PromptFilter       = "Filter candidates"
	PromptChat         = "Chat with the assistant"
	PromptBlind        = "Toggle blind mode"
	PromptExit         = "Exit"
	PromptBack         = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptShowBoard, PromptShowAnalysis, PromptMove,
		PromptFilter, PromptChat, PromptBlind, PromptExit,
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the recruiteros main command",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("blind", "b", false, "analyze without identity signals (blind hiring mode)")

	viper.BindPFlag("blind-mode", runCmd.Flags().Lookup("blind"))
}

// run is the main command for the cli.
func run() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the recruiteros", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.JobDescriptionFile == "" {
		logger.Fatal("a job description file is required under job-description-file to evaluate candidates")
	}

	if len(config.Documents) == 0 {
		logger.Fatal("at least one resume document is required under documents")
	}

	jobDescription, err := os.ReadFile(config.JobDescriptionFile)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	docs, err := document.LoadAll(config.Documents)
	if err != nil {
		logger.Fatal("loading resume documents", zap.Error(err))
	}

	logger.Info("loaded resume documents", zap.Int("count", len(docs)))

	analyzer, filter, assistant, err := newAIServices(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building ai services",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	}

	store := pipeline.NewStore()
	coordinator := pipeline.NewCoordinator(store, analyzer, logger)
	coordinator.SetBlind(viper.GetBool("blind-mode") || config.BlindMode)

	report := coordinator.RunBatch(ctx, string(jobDescription), docs)
	if report.Failed > 0 {
		logger.Warn("some documents could not be analyzed", zap.Error(report.Failures))
	}

	if store.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates made it to the pipeline"))
		return
	}

	board := newBoardView(store)
	adapter := pipeline.NewFilterAdapter(filter, logger)
	session := chat.NewSession(assistant, logger)

	fmt.Println(board.Render())

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, board, coordinator, adapter, session, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, board *boardView, coordinator *pipeline.Coordinator, adapter *pipeline.FilterAdapter, session *chat.Session, logger *zap.Logger) error {
	switch action {
	case PromptShowBoard:
		fmt.Println(board.Render())
		return nil
	case PromptShowAnalysis:
		return showAnalysis(board, logger)
	case PromptMove:
		return moveCandidate(board, logger)
	case PromptFilter:
		return filterBoard(ctx, board, adapter, logger)
	case PromptChat:
		return chatLoop(ctx, board, session)
	case PromptBlind:
		return toggleBlind(ctx, board, coordinator, logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showAnalysis(board *boardView, logger *zap.Logger) error {
	record, err := board.pickCandidate("Choose a candidate and press ENTER")
	if err != nil || record == nil {
		return err
	}

	pretty, _ := json.MarshalIndent(record.Analysis, "", "  ")
	logger.Info(string(pretty),
		zap.String("candidate", record.Name),
		zap.String("stage", string(record.Stage)),
	)
	return nil
}

func moveCandidate(board *boardView, logger *zap.Logger) error {
	record, err := board.pickCandidate("Choose a candidate to move")
	if err != nil || record == nil {
		return err
	}

	items := make([]string, 0, len(pipeline.Stages()))
	for _, stage := range pipeline.Stages() {
		items = append(items, string(stage))
	}

	stagePrompt := promptui.Select{
		Label: "Choose a target stage",
		Items: append(items, PromptBack),
	}

	_, selected, err := stagePrompt.Run()
	if err != nil {
		return err
	}

	if selected == PromptBack {
		return nil
	}

	if !board.store.Move(record.ID, pipeline.Stage(selected)) {
		logger.Warn("candidate disappeared before the move", zap.String("candidate_id", record.ID))
		return nil
	}

	logger.Info("moved candidate",
		zap.String("candidate", record.Name),
		zap.String("stage", selected),
	)
	fmt.Println(board.Render())
	return nil
}

func filterBoard(ctx context.Context, board *boardView, adapter *pipeline.FilterAdapter, logger *zap.Logger) error {
	queryPrompt := promptui.Prompt{Label: "Filter query (empty to clear)"}

	query, err := queryPrompt.Run()
	if err != nil {
		return err
	}

	ids, active := adapter.Filter(ctx, query, board.store.Snapshot())
	if !active {
		board.clearFilter()
		logger.Info("filter cleared")
		fmt.Println(board.Render())
		return nil
	}

	board.applyFilter(query, ids)
	logger.Info("filter applied",
		zap.String("query", strings.TrimSpace(query)),
		zap.Int("matched", len(ids)),
	)
	fmt.Println(board.Render())
	return nil
}

func chatLoop(ctx context.Context, board *boardView, session *chat.Session) error {
	for {
		messagePrompt := promptui.Prompt{Label: "You (empty to go back)"}

		message, err := messagePrompt.Run()
		if err != nil {
			return err
		}

		if strings.TrimSpace(message) == "" {
			return nil
		}

		if err := session.Send(ctx, message, board.store.Snapshot()); err != nil {
			return err
		}

		transcript := session.Transcript()
		fmt.Printf("\nAssistant: %s\n\n", transcript[len(transcript)-1].Text)
	}
}

func toggleBlind(ctx context.Context, board *boardView, coordinator *pipeline.Coordinator, logger *zap.Logger) error {
	blind := !coordinator.Blind()
	coordinator.SetBlind(blind)
	logger.Info("blind mode toggled", zap.Bool("blind", blind))

	analysis, err := coordinator.ReanalyzeLast(ctx)
	if errors.Is(err, pipeline.ErrNoLastResult) {
		logger.Info("skipping re-analysis", zap.String("reason", "no single-document result on display"))
		return nil
	}
	if err != nil {
		logger.Warn("re-analysis failed, keeping the previous result", zap.Error(err))
		return nil
	}

	pretty, _ := json.MarshalIndent(analysis, "", "  ")
	logger.Info(string(pretty), zap.Bool("blind", blind))
	fmt.Println(board.Render())
	return nil
}

func newAIServices(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Analyzer, ai.Filterer, ai.Assistant, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, nil, nil, errors.New("gemini configuration is required under ai.gemini")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, nil, nil, err
	}

	analyzer := gemini.NewAnalyzer(generator, logger, cfg.Gemini.MaxLogLength)
	filter := gemini.NewFilter(generator, logger, cfg.Gemini.MaxLogLength)
	assistant := gemini.NewAssistant(generator, cfg.Gemini.ChatModel, logger, cfg.Gemini.MaxLogLength)

	return analyzer, filter, assistant, nil
}
