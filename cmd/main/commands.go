package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CTAG07/hashmark/pkg/locallang"
	"github.com/CTAG07/hashmark/pkg/templating"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// app holds the state shared by all commands.
type app struct {
	configPath string
	logLevel   string
	config     *Config
	logger     *slog.Logger
}

// load reads the configuration and sets up logging. A --log-level flag
// overrides the configured level.
func (a *app) load(cmd *cobra.Command) error {
	bootLogger := newLogger(cmd.ErrOrStderr(), slog.LevelInfo)
	config, err := LoadConfig(a.configPath, bootLogger)
	if err != nil {
		return err
	}
	level := config.Server.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.config = config
	a.logger = newLogger(cmd.ErrOrStderr(), parseLevel(level))
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "hashmark",
		Short: "Render ###MARKER### templates",
		Long: `hashmark renders HTML templates with ###MARKER### placeholders and
<!-- ###SUBPART### --> blocks, filling them from configuration files,
flexforms and localized labels.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "path to the JSON config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRenderCmd(a),
		newServeCmd(a),
		newLabelsCmd(a),
		newConfCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "hashmark version %s\n", Version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", Commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		req  RenderRequest
		sets []string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Render a template to stdout or a file",
		Long: `Render a template from the template directory. Without an argument the
template named by the templateFile setting is rendered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Template = args[0]
			}
			markers, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			req.Markers = markers

			db, store, err := openLabelStore(a.config.Server.DatabasePath, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				store.Close()
				_ = db.Close()
			}()

			tm, err := templating.NewTemplateManager(a.logger, a.config.Templates, a.config.Server.DataDir)
			if err != nil {
				return err
			}
			renderer := NewRenderer(tm, store, a.config.Render, a.logger)

			if out != "" {
				return renderer.RenderToFile(cmd.Context(), req, out)
			}
			page, err := renderer.Render(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), page)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Subpart, "subpart", "", "render only this subpart")
	flags.StringArrayVar(&sets, "set", nil, "set a marker, as NAME=VALUE (repeatable)")
	flags.StringSliceVar(&req.Hide, "hide", nil, "comma-separated subparts to hide")
	flags.StringVar(&req.Language, "lang", "", "label language (default from config)")
	flags.StringVar(&out, "out", "", "write the page to this file instead of stdout")
	flags.BoolVar(&req.Minify, "minify", false, "minify the rendered HTML")
	return cmd
}

// parseAssignments turns NAME=VALUE arguments into a map.
func parseAssignments(sets []string) (map[string]string, error) {
	markers := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid marker assignment %q, expected NAME=VALUE", s)
		}
		markers[name] = value
	}
	return markers, nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the template preview API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, store, err := openLabelStore(a.config.Server.DatabasePath, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				a.logger.Info("Closing database connection.")
				store.Close()
				if err := db.Close(); err != nil {
					a.logger.Error("Failed to close database", "error", err)
				}
			}()

			server, err := NewServer(a.config, a.logger, store)
			if err != nil {
				return err
			}
			if err = server.Run(ctx); err != nil {
				return err
			}
			a.logger.Info("hashmark has shut down.")
			return nil
		},
	}
}

func newLabelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Manage the labels in the database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import labels from a YAML file",
		Long: `Import labels from a YAML file of the form

  default:
    label_title: Title
  de:
    label_title: Titel

Existing labels with the same language and key are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := locallang.LoadYAMLFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read labels: %w", err)
			}
			return withStore(a, func(store *locallang.Store) error {
				if err := store.Import(cmd.Context(), catalog); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d labels\n", catalog.Len())
				return err
			})
		},
	})

	var lang string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the labels in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(a, func(store *locallang.Store) error {
				catalog, err := store.Catalog(cmd.Context())
				if err != nil {
					return err
				}
				return printCatalog(cmd, catalog, lang)
			})
		},
	}
	listCmd.Flags().StringVar(&lang, "lang", "", "only list this language")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <lang> <key>",
		Short: "Delete a label from the database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(a, func(store *locallang.Store) error {
				return store.Delete(cmd.Context(), args[0], args[1])
			})
		},
	})
	return cmd
}

func withStore(a *app, fn func(store *locallang.Store) error) error {
	db, store, err := openLabelStore(a.config.Server.DatabasePath, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		store.Close()
		_ = db.Close()
	}()
	return fn(store)
}

func printCatalog(cmd *cobra.Command, catalog *locallang.Catalog, only string) error {
	out := cmd.OutOrStdout()
	for _, lang := range catalog.Languages() {
		if only != "" && lang != only {
			continue
		}
		for _, key := range catalog.Keys(lang) {
			value, _ := catalog.Get(lang, key)
			if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", lang, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func newConfCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conf",
		Short: "Print the effective template configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := NewRenderer(nil, nil, a.config.Render, a.logger)
			source, err := renderer.loadConf()
			if err != nil {
				return err
			}
			doc := map[string]any{
				"templating": a.config.Templates,
				"render":     a.config.Render,
				"plugin":     source.All(),
			}
			if flex := source.Flexform(); flex != nil {
				sheets := map[string]map[string]string{}
				for _, sheet := range flex.Sheets() {
					fields := map[string]string{}
					for _, field := range flex.Fields(sheet) {
						fields[field], _ = flex.Value(sheet, field)
					}
					sheets[sheet] = fields
				}
				doc["flexform"] = sheets
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(doc)
		},
	}
}
