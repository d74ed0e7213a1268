package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	adapterrepo "github.com/lexloop/lexloop/internal/adapter/repository"
	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/infrastructure/config"
	"github.com/lexloop/lexloop/internal/infrastructure/database"
	"github.com/lexloop/lexloop/internal/usecase"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import words from a spreadsheet into a book",
	Long: `Reads word rows (text, phonetic, definition, example, difficulty) from the
first sheet of an xlsx file and appends them to the given book. Words that
already exist by text are reused instead of duplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, _ := cmd.Flags().GetInt64("book")
		if bookID <= 0 {
			return fmt.Errorf("--book is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		books := adapterrepo.NewBookRepository(db)
		vocab := usecase.NewVocabularyUsecase(adapterrepo.NewWordRepository(db), books)

		ctx := cmd.Context()
		book, err := books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}

		file, err := excelize.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("open spreadsheet: %w", err)
		}
		defer file.Close()

		rows, err := file.GetRows(file.GetSheetName(0))
		if err != nil {
			return fmt.Errorf("read sheet: %w", err)
		}

		var ids []int64
		for i, row := range rows {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "text") {
				continue
			}
			word := rowToWord(row)
			created, err := vocab.CreateWord(ctx, word)
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", i+1, word.Text, err)
			}
			ids = append(ids, created.ID)
		}
		if len(ids) == 0 {
			return fmt.Errorf("no word rows found in %s", args[0])
		}

		added, err := vocab.AddWordsToBook(ctx, book.UserID, book.ID, ids)
		if err != nil {
			return err
		}
		cmd.Printf("imported %d words, %d added to book %q\n", len(ids), added, book.Name)
		return nil
	},
}

func rowToWord(row []string) *entity.Word {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	word := &entity.Word{
		Text:       cell(0),
		Phonetic:   cell(1),
		Definition: cell(2),
		Example:    cell(3),
	}
	if raw := cell(4); raw != "" {
		if difficulty, err := strconv.ParseFloat(raw, 64); err == nil {
			word.Difficulty = difficulty
		}
	}
	return word
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Int64("book", 0, "target vocabulary book id")
}
