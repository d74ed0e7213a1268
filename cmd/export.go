package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	adapterrepo "github.com/lexloop/lexloop/internal/adapter/repository"
	"github.com/lexloop/lexloop/internal/infrastructure/config"
	"github.com/lexloop/lexloop/internal/infrastructure/database"
	"github.com/lexloop/lexloop/internal/repository"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export a book's words to a spreadsheet",
	Args:  cobra.ExactArgs(1),
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
		ctx := cmd.Context()
		book, err := books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}

		file := excelize.NewFile()
		defer file.Close()
		sheet := file.GetSheetName(0)
		if err := file.SetSheetRow(sheet, "A1", &[]string{"text", "phonetic", "definition", "example", "difficulty"}); err != nil {
			return err
		}

		line := 2
		page := repository.Pagination{PageNo: 1, PageSize: 100}
		for {
			words, _, err := books.ListWords(ctx, bookID, page)
			if err != nil {
				return err
			}
			if len(words) == 0 {
				break
			}
			for _, w := range words {
				row := []any{w.Text, w.Phonetic, w.Definition, w.Example, w.Difficulty}
				if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", line), &row); err != nil {
					return err
				}
				line++
			}
			page.PageNo++
		}

		if err := file.SaveAs(args[0]); err != nil {
			return fmt.Errorf("write spreadsheet: %w", err)
		}
		cmd.Printf("exported %d words from book %q to %s\n", line-2, book.Name, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Int64("book", 0, "source vocabulary book id")
}
