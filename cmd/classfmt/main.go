package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classfmt/config"
	"classfmt/formatter"
	"classfmt/logger"
)

func main() {
	err := newRootCmd(config.New()).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "classfmt [paths...]",
		Short:         "Sort and group utility classes in JSX and TSX files",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args

			log, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return runFormat(cmd, cfg, log)
		},
	}

	cfg.BindFlags(root.PersistentFlags())
	root.AddCommand(newClassifyCmd(cfg))

	return root
}

func newClassifyCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [classes...]",
		Short: "Format a class string given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			input := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "reading stdin")
				}
				input = strings.TrimRight(string(data), "\n")
			}

			ranker := formatter.NewCategoryRanker(cfg.Formatter.Categories, cfg.Formatter.Viewports)
			output := formatter.SortClasses(input, formatter.SortOptions{
				Ranker:             ranker,
				PreserveDuplicates: cfg.PreserveDuplicates,
				PreserveWhitespace: cfg.PreserveWhitespace,
				MergeConflicts:     cfg.MergeConflicts,
				UseCategories:      cfg.UseCategories,
				Formatter:          cfg.Formatter,
				Indent:             formatter.IndentUnit(cfg.Formatter.UsesTabs, cfg.Formatter.TabWidth),
			})

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Trim(output, "\n"))
			return err
		},
	}
}

// setup loads the options file and categories and builds the logger.
func setup(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	if cfg.ConfigPath != "" {
		fc, err := config.LoadFile(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		err = cfg.Apply(fc, cmd.Flags().Changed)
		if err != nil {
			return nil, errors.Wrap(err, "applying config file")
		}
	}

	err := cfg.Finalize()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.CategoriesPath != "" {
		categories, err := config.ResolveCategories(cfg.CategoriesPath, cfg.Formatter.Categories)
		if err != nil {
			log.Warn("Failed to load categories, keeping current ones",
				zap.String("path", cfg.CategoriesPath), zap.Error(err))
		}
		cfg.Formatter.Categories = categories
	}

	return log, nil
}

func runFormat(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := formatter.NewProcessor(cfg, log)

	summary, err := processor.Run(ctx)
	log.Info("Done",
		zap.Int("files", summary.Files),
		zap.Int("changed", summary.Changed),
		zap.Int("failed", summary.Failed))
	if err != nil {
		return err
	}

	if !cfg.Watch {
		return nil
	}

	log.Info("Watching for changes")
	return processor.Watch(ctx)
}
