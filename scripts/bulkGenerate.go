package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"quizgen/config"
	"quizgen/database"
	"quizgen/inference"
	"quizgen/pipeline"
	"quizgen/translate"

	"gorm.io/gorm"
)

// bulkRow is one passage to generate questions for.
type bulkRow struct {
	Line    int
	UserID  string
	Name    string
	Context string
}

func main() {
	var (
		file    = flag.String("file", "passages.csv", "CSV file with uid,name,context columns")
		timeout = flag.Duration("timeout", 10*time.Minute, "Time budget per row")
		dryRun  = flag.Bool("dry-run", false, "Use an in-memory database instead of the configured one")
	)
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	cfg := config.AppConfig
	pipeline.SetVerbose(cfg.LogVerbose)

	db := openDatabase(cfg, *dryRun)
	store := database.NewStore(db)

	translator, err := translate.New(translate.Options{
		Provider: cfg.Translator,
		BaseURL:  cfg.TranslateURL,
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatalf("Failed to set up translator: %v", err)
	}
	models, err := inference.New(inference.Options{
		Backend: cfg.InferenceBackend,
		BaseURL: inferenceBaseURL(cfg),
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to set up inference backend: %v", err)
	}
	p := pipeline.New(translator, models, store, cfg.TranslateSourceLang, cfg.TranslateTargetLang).
		WithTimeout(cfg.GenerationTimeout)

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer f.Close()

	rows, skipped, err := readRows(f)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	log.Printf("Total rows to generate: %d (skipped %d)", len(rows), skipped)

	generated, failed := 0, 0
	for _, row := range rows {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		questions, err := p.RunSplit(ctx, pipeline.Request{Context: row.Context, UserID: row.UserID, TopicName: row.Name})
		cancel()
		if err != nil {
			log.Printf("Row %d (%s/%s) failed: %v", row.Line, row.UserID, row.Name, err)
			failed++
			continue
		}
		generated += len(questions)
		log.Printf("Row %d (%s/%s): %d questions", row.Line, row.UserID, row.Name, len(questions))
	}

	log.Printf("Generation complete. Questions: %d, Failed rows: %d, Skipped rows: %d", generated, failed, skipped)
}

func openDatabase(cfg *config.Config, dryRun bool) *gorm.DB {
	if !dryRun {
		return database.ConnectDb(cfg)
	}
	db, err := database.OpenInMemory()
	if err != nil {
		log.Fatalf("Failed to open in-memory database: %v", err)
	}
	return db
}

func inferenceBaseURL(cfg *config.Config) string {
	if cfg.InferenceBackend == "openai" {
		return cfg.OpenAIBaseURL
	}
	return cfg.InferenceURL
}

// readRows parses a CSV with a header naming the uid, name and context
// columns in any order. Rows missing one of them are skipped.
func readRows(r io.Reader) ([]bulkRow, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) < 2 {
		return nil, 0, fmt.Errorf("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"uid", "name", "context"} {
		if _, ok := headerIndex[col]; !ok {
			return nil, 0, fmt.Errorf("missing %q column", col)
		}
	}

	var rows []bulkRow
	skipped := 0
	for i, record := range records[1:] {
		row := bulkRow{
			Line:    i + 2,
			UserID:  getField(record, headerIndex, "uid"),
			Name:    getField(record, headerIndex, "name"),
			Context: getField(record, headerIndex, "context"),
		}
		if row.UserID == "" || row.Name == "" || row.Context == "" {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
