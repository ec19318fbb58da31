package main

import (
	"fmt"
	"os"
	"strings"

	"fygallery/internal/catalog"
	"fygallery/internal/config"
	"fygallery/internal/scan"
	"fygallery/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// OpenServiceFunc opens the catalog workspace at dbPath.
type OpenServiceFunc func(dbPath string, logger catalog.LoggerFunc) (*service.Service, error)

func splitList(arg string) []string {
	var out []string
	for _, part := range strings.Split(arg, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewRootCmd creates the root command for the CLI application.
// openService opens the workspace for each invocation, so tests can point it
// at a temporary database.
func NewRootCmd(openService OpenServiceFunc, logger *logrus.Logger) *cobra.Command {
	var (
		dbPathFlag string
		verbose    bool
	)
	cliLogger := func(msg string) {}

	// withService opens the workspace for one command and always closes it,
	// so a failing command never leaves the database locked.
	withService := func(run func(cmd *cobra.Command, args []string, svc *service.Service) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, err := openService(dbPathFlag, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to open catalog workspace: %w", err)
			}
			defer svc.Store.Close()
			return run(cmd, args, svc)
		}
	}

	rootCmd := &cobra.Command{
		Use:           "fygallery-cli",
		Short:         "fygallery CLI - manage the photo catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
				cliLogger = config.ComponentLogger(logger, "fygallery-cli")
			}
		},
	}

	// Import a catalog file or URL
	importCmd := &cobra.Command{
		Use:   "import [file-or-url]",
		Short: "Import records from a catalog file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			records, err := catalog.Load(cmd.Context(), args[0], cliLogger)
			if err != nil {
				return err
			}
			n, err := svc.Import(records)
			cmd.Printf("Imported %d of %d records from %s\n", n, len(records), args[0])
			return err
		}),
	}
	rootCmd.AddCommand(importCmd)

	// Add records for new image files
	var prefixFlag string
	syncCmd := &cobra.Command{
		Use:   "sync [directory]",
		Short: "Add a default record for every image file without one",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			added, err := svc.Sync(args[0], prefixFlag)
			if err != nil {
				return err
			}
			cmd.Printf("Added %d records\n", added)
			return nil
		}),
	}
	syncCmd.Flags().StringVar(&prefixFlag, "prefix", "images", "src prefix for new records")
	rootCmd.AddCommand(syncCmd)

	// Set text fields
	var titleFlag, altFlag, alt2Flag string
	setCmd := &cobra.Command{
		Use:   "set [src]",
		Short: "Set the title, alt or alt2 text of a record",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			var fields service.RecordFields
			if cmd.Flags().Changed("title") {
				fields.Title = &titleFlag
			}
			if cmd.Flags().Changed("alt") {
				fields.Alt = &altFlag
			}
			if cmd.Flags().Changed("alt2") {
				fields.Alt2 = &alt2Flag
			}
			if fields == (service.RecordFields{}) {
				return fmt.Errorf("nothing to set: use --title, --alt or --alt2")
			}
			if err := svc.SetFields(args[0], fields); err != nil {
				return err
			}
			cmd.Printf("Updated %s\n", args[0])
			return nil
		}),
	}
	setCmd.Flags().StringVar(&titleFlag, "title", "", "caption title")
	setCmd.Flags().StringVar(&altFlag, "alt", "", "alternative text")
	setCmd.Flags().StringVar(&alt2Flag, "alt2", "", "secondary caption")
	rootCmd.AddCommand(setCmd)

	addCategoryCmd := &cobra.Command{
		Use:   "add-category [src] [cat1,cat2,...]",
		Short: "Add categories to a record",
		Args:  cobra.ExactArgs(2),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			cats := splitList(args[1])
			if err := svc.AddCategories(args[0], cats); err != nil {
				return err
			}
			for _, c := range cats {
				cmd.Printf("Added category '%s' to %s\n", c, args[0])
			}
			return nil
		}),
	}
	rootCmd.AddCommand(addCategoryCmd)

	removeCategoryCmd := &cobra.Command{
		Use:   "remove-category [src] [cat1,cat2,...]",
		Short: "Remove categories from a record",
		Args:  cobra.ExactArgs(2),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			cats := splitList(args[1])
			if err := svc.RemoveCategories(args[0], cats); err != nil {
				return err
			}
			for _, c := range cats {
				cmd.Printf("Removed category '%s' from %s\n", c, args[0])
			}
			return nil
		}),
	}
	rootCmd.AddCommand(removeCategoryCmd)

	// List records
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every record in catalog order",
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			records, err := svc.Store.All()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("The catalog is empty.")
				return nil
			}
			for _, rec := range records {
				cmd.Printf("%s\t%s\t%s\n", rec.Src, rec.DisplayTitle(), strings.Join(rec.Categories, ", "))
			}
			return nil
		}),
	}
	rootCmd.AddCommand(listCmd)

	listCategoriesCmd := &cobra.Command{
		Use:   "list-categories",
		Short: "List all categories with record counts",
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			cats, err := svc.ListCategories()
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				cmd.Println("No categories found in the catalog.")
				return nil
			}
			cmd.Println("All categories in catalog:")
			for _, c := range cats {
				cmd.Printf("%s (%d)\n", c.Name, c.Count)
			}
			return nil
		}),
	}
	rootCmd.AddCommand(listCategoriesCmd)

	findByCategoryCmd := &cobra.Command{
		Use:   "find-by-category [category]",
		Short: "List records with a given category",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			images, err := svc.ListImagesForCategory(args[0])
			if err != nil {
				return err
			}
			for _, img := range images {
				cmd.Println(img)
			}
			return nil
		}),
	}
	rootCmd.AddCommand(findByCategoryCmd)

	// Export the catalog file the gallery reads
	var outFlag string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as JSON",
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			if outFlag == "" || outFlag == "-" {
				_, err := svc.Export(cmd.OutOrStdout())
				return err
			}
			f, err := os.Create(outFlag)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outFlag, err)
			}
			n, err := svc.Export(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			cmd.Printf("Wrote %d records to %s\n", n, outFlag)
			return nil
		}),
	}
	exportCmd.Flags().StringVarP(&outFlag, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)

	cleanCmd := &cobra.Command{
		Use:   "clean [root]",
		Short: "Remove records whose local image file is missing",
		Args:  cobra.MaximumNArgs(1),
		RunE: withService(func(cmd *cobra.Command, args []string, svc *service.Service) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			n, err := svc.Clean(root)
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d records\n", n)
			return nil
		}),
	}
	rootCmd.AddCommand(cleanCmd)

	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "dbpath", "", "Path to the catalog workspace database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store and scanner activity")

	return rootCmd
}

func main() {
	logger, _ := config.NewLogger("info", os.Stderr)
	openService := func(dbPath string, l catalog.LoggerFunc) (*service.Service, error) {
		store, err := catalog.OpenStore(dbPath, l)
		if err != nil {
			return nil, err
		}
		return service.NewService(store, scan.FileScannerImpl{}, l), nil
	}
	rootCmd := NewRootCmd(openService, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("fygallery-cli failed")
		os.Exit(1)
	}
}
