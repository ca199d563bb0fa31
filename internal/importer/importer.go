// Package importer loads cards in bulk from Excel workbooks or CSV
// files. Rows that fail validation are reported per row and never
// abort the rest of the import.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lingo/pkg/models"
)

// CardStore is the storage access the importer needs
type CardStore interface {
	Exists(cardType models.CardType, front string) (bool, error)
	Create(card *models.Card) error
}

// Config defines the import configuration
type Config struct {
	FilePath      string
	SheetName     string // Excel only
	StartRow      int    // 1-based, rows before it are skipped
	TypeColumn    string
	FrontColumn   string
	BackColumn    string
	HintColumn    string
	ReadingColumn string
	ContextColumn string
}

// DefaultConfig returns the default column layout:
// type, front, back, hint, reading, context sentence.
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:      filePath,
		SheetName:     "Sheet1",
		StartRow:      2, // skip header
		TypeColumn:    "A",
		FrontColumn:   "B",
		BackColumn:    "C",
		HintColumn:    "D",
		ReadingColumn: "E",
		ContextColumn: "F",
	}
}

// Result holds the outcome of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportCards imports cards from an Excel or CSV file, dispatching on
// the file extension.
func ImportCards(store CardStore, cfg Config) (*Result, error) {
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		return importFromCSV(store, cfg)
	}
	return importFromExcel(store, cfg)
}

func importFromExcel(store CardStore, cfg Config) (*Result, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := processRow(store, cfg, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func importFromCSV(store CardStore, cfg Config) (*Result, error) {
	file, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < cfg.StartRow {
			continue
		}

		result.TotalProcessed++
		if err := processRow(store, cfg, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// processRow validates one row and creates the card unless an
// identical one already exists.
func processRow(store CardStore, cfg Config, row []string, result *Result) error {
	card := models.Card{
		CardType:        models.CardType(strings.ToLower(cell(row, cfg.TypeColumn))),
		Front:           cell(row, cfg.FrontColumn),
		Back:            cell(row, cfg.BackColumn),
		Hint:            cell(row, cfg.HintColumn),
		Reading:         cell(row, cfg.ReadingColumn),
		ContextSentence: cell(row, cfg.ContextColumn),
	}

	switch card.CardType {
	case models.CardTypeVocab, models.CardTypeGrammar, models.CardTypeExpression:
	case "":
		card.CardType = models.CardTypeVocab
	default:
		return fmt.Errorf("unknown card type %q", card.CardType)
	}
	if card.Front == "" {
		return fmt.Errorf("front side cannot be empty")
	}
	if card.Back == "" {
		return fmt.Errorf("back side cannot be empty")
	}

	exists, err := store.Exists(card.CardType, card.Front)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		result.Skipped++
		return nil
	}

	if err := store.Create(&card); err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	result.Created++
	return nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
