package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rageval/internal/answer"
	"rageval/internal/artifact"
	"rageval/internal/config"
	"rageval/internal/dataset"
	"rageval/internal/domain"
	"rageval/internal/evaluate"
	"rageval/internal/index"
	"rageval/internal/regression"
	"rageval/internal/runner"
	"rageval/internal/tui"
)

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func buildAnswerSource(cfg *config.AppConfig) (domain.AnswerSource, error) {
	switch cfg.Answer.Type {
	case "stub", "":
		return answer.NewStub(), nil
	case "openai":
		if cfg.Answer.OpenAI == nil {
			return nil, fmt.Errorf("openai answer source config missing")
		}
		return answer.NewOpenAIClient(answer.OpenAIConfig{
			BaseURL:    cfg.Answer.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Answer.OpenAI.APIKeyEnv,
			Model:      cfg.Answer.OpenAI.Model,
			MaxRetries: cfg.Answer.OpenAI.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unknown answer source: %s", cfg.Answer.Type)
	}
}

func buildRunCmd() *cobra.Command {
	var (
		configPath string
		docsPath   string
		goldPath   string
		outPath    string
		topK       int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run retrieval and answering over the gold set and save a run artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if topK > 0 {
				cfg.Retrieval.TopK = topK
			}
			docs, err := dataset.LoadDocuments(docsPath)
			if err != nil {
				return err
			}
			gold, err := dataset.LoadGoldSet(goldPath)
			if err != nil {
				return err
			}
			idx, err := index.Build(docs)
			if err != nil {
				return err
			}
			source, err := buildAnswerSource(cfg)
			if err != nil {
				return err
			}
			log := slog.Default()
			log.Info("starting run", "documents", len(docs), "questions", len(gold), "answer_source", source.Name(), "top_k", cfg.Retrieval.TopK)

			r := runner.New(idx, source, runner.Options{
				TopK:            cfg.Retrieval.TopK,
				MaxContextChars: cfg.Retrieval.MaxContextChars,
				AnswerTimeout:   time.Duration(cfg.Answer.TimeoutSecs) * time.Second,
			}, log)
			records := r.Run(cmd.Context(), gold)

			if outPath == "" {
				outPath = filepath.Join(cfg.ResultsDir, fmt.Sprintf("run_%s.jsonl", artifact.Timestamp()))
			}
			if err := artifact.WriteRun(outPath, records); err != nil {
				return err
			}
			fmt.Printf("Wrote: %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVar(&docsPath, "docs", "data/documents.jsonl", "Path to documents.jsonl")
	cmd.Flags().StringVar(&goldPath, "gold", "data/eval_set.jsonl", "Path to eval_set.jsonl")
	cmd.Flags().StringVar(&outPath, "out", "", "Run artifact path (default: <results_dir>/run_<ts>.jsonl)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of documents to retrieve per question (overrides config)")
	return cmd
}

func buildEvalCmd() *cobra.Command {
	var (
		runPath  string
		goldPath string
		outPath  string
		csvPath  string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score a run artifact against the gold set and save an eval artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := artifact.LoadRun(runPath)
			if err != nil {
				return err
			}
			gold, err := dataset.LoadGoldSet(goldPath)
			if err != nil {
				return err
			}
			records, err := evaluate.Evaluate(runs, evaluate.GoldByID(gold))
			if err != nil {
				return err
			}
			ts := artifact.Timestamp()
			if outPath == "" {
				outPath = filepath.Join(filepath.Dir(runPath), fmt.Sprintf("eval_%s.jsonl", ts))
			}
			if err := artifact.WriteEval(outPath, records); err != nil {
				return err
			}
			if csvPath == "" {
				csvPath = filepath.Join(filepath.Dir(runPath), fmt.Sprintf("eval_%s.csv", ts))
			}
			if err := artifact.WriteEvalCSV(csvPath, records); err != nil {
				return err
			}
			fmt.Printf("Wrote:\n- %s\n- %s\n", outPath, csvPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&runPath, "run", "", "Path to run_*.jsonl artifact")
	cmd.Flags().StringVar(&goldPath, "gold", "data/eval_set.jsonl", "Path to eval_set.jsonl")
	cmd.Flags().StringVar(&outPath, "out", "", "Eval artifact path (default: alongside run artifact)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Eval CSV export path (default: alongside run artifact)")
	cobra.CheckErr(cmd.MarkFlagRequired("run"))
	return cmd
}

func buildCompareCmd() *cobra.Command {
	var (
		configPath string
		oldPath    string
		newPath    string
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two eval artifacts and report regressions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			older, err := artifact.LoadEval(oldPath)
			if err != nil {
				return err
			}
			newer, err := artifact.LoadEval(newPath)
			if err != nil {
				return err
			}
			report, err := regression.Compare(older, newer, regression.Options{
				Tolerance: cfg.Report.Tolerance,
				WorstN:    cfg.Report.WorstN,
			})
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.ResultsDir
			}
			ts := artifact.Timestamp()
			jsonPath := filepath.Join(outDir, fmt.Sprintf("regression_%s.json", ts))
			mdPath := filepath.Join(outDir, fmt.Sprintf("regression_%s.md", ts))
			if err := artifact.WriteRegressionJSON(jsonPath, report); err != nil {
				return err
			}
			if err := artifact.WriteRegressionMarkdown(mdPath, report, oldPath, newPath); err != nil {
				return err
			}
			fmt.Printf("Wrote:\n- %s\n- %s\n", jsonPath, mdPath)
			fmt.Print(regression.RenderMarkdown(report, oldPath, newPath))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVar(&oldPath, "old", "", "Older eval_*.jsonl artifact")
	cmd.Flags().StringVar(&newPath, "new", "", "Newer eval_*.jsonl artifact")
	cmd.Flags().StringVar(&outDir, "outdir", "", "Output directory (default: results_dir from config)")
	cobra.CheckErr(cmd.MarkFlagRequired("old"))
	cobra.CheckErr(cmd.MarkFlagRequired("new"))
	return cmd
}

func buildSummaryCmd() *cobra.Command {
	var evalPath string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize an eval artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := artifact.LoadEval(evalPath)
			if err != nil {
				return err
			}
			s := evaluate.Summarize(records)
			fmt.Printf("Questions: %d\n", s.Count)
			fmt.Printf("Failed questions: %d\n", s.FailedCount)
			fmt.Printf("Avg must_include_score: %.3f\n", s.AvgMustInclude)
			fmt.Printf("Avg grounding_score: %.3f\n", s.AvgGrounding)
			fmt.Printf("Total must_not_include_violations: %d\n", s.TotalViolations)
			return nil
		},
	}
	cmd.Flags().StringVar(&evalPath, "eval", "", "Path to eval_*.jsonl artifact")
	cobra.CheckErr(cmd.MarkFlagRequired("eval"))
	return cmd
}

func buildProbeCmd() *cobra.Command {
	var (
		docsPath string
		query    string
		topK     int
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe TF-IDF retrieval interactively or for a single query",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := dataset.LoadDocuments(docsPath)
			if err != nil {
				return err
			}
			idx, err := index.Build(docs)
			if err != nil {
				return err
			}
			if query != "" {
				fmt.Printf("Query: %s\n\nTop hits:\n", query)
				for _, h := range idx.Retrieve(query, topK) {
					title := ""
					if d, ok := idx.Doc(h.DocID); ok {
						title = d.Title
					}
					fmt.Printf("- %s (score=%.3f) — %s\n", h.DocID, h.Score, title)
				}
				return nil
			}
			_, err = tea.NewProgram(tui.New(idx, topK)).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&docsPath, "docs", "data/documents.jsonl", "Path to documents.jsonl")
	cmd.Flags().StringVar(&query, "query", "", "Run a single query and print hits instead of starting the console")
	cmd.Flags().IntVar(&topK, "top-k", 3, "Number of documents to retrieve")
	return cmd
}
