package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/japaniel/nichiei/pkg/analysis"
	"github.com/japaniel/nichiei/pkg/config"
	"github.com/japaniel/nichiei/pkg/db"
	"github.com/japaniel/nichiei/pkg/dictionary"
	"github.com/japaniel/nichiei/pkg/logger"
	"github.com/japaniel/nichiei/pkg/morph"
	"github.com/japaniel/nichiei/pkg/terms"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// appContext holds what every command needs once configuration is loaded.
type appContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Glossary *dictionary.Glossary
	Analyzer *analysis.Analyzer
	Out      io.Writer
}

func newAppContext(ctx context.Context, cmd *cli.Command) (*appContext, error) {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("db"); v != "" {
		cfg.DBPath = v
	}
	if v := cmd.String("dictionary"); v != "" {
		cfg.DictionaryPath = v
	}
	if cmd.Bool("no-cache") {
		cfg.Cache = false
	}

	log := logger.New(logger.Config{Level: logger.ParseLevel(cfg.Log.Level), Format: cfg.Log.Format})
	app := &appContext{Config: cfg, Logger: log, Out: cmd.Root().Writer}
	if app.Out == nil {
		app.Out = os.Stdout
	}

	ex := terms.NewExtractor(morph.Config{Charset: cfg.Charset})
	ex.MaxRetries = cfg.TokenizerRetries
	ex.Logger = log
	app.Analyzer = analysis.NewAnalyzer(ex)
	app.Analyzer.UseCache = cfg.Cache
	app.Analyzer.Logger = log

	if cfg.DBPath != "" {
		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		app.DB = conn
		rec := db.NewRecorder(conn)
		rec.BatchSize = cfg.BatchSize
		rec.Logger = log
		app.Analyzer.Recorder = rec
	}

	if cfg.DictionaryPath != "" {
		if cfg.FetchDictionary {
			d := dictionary.NewDownloader()
			d.Logger = log
			if err := d.EnsureDictionary(ctx, cfg.DictionaryPath); err != nil {
				log.Warn("continuing without glosses", slog.Any("error", err))
			}
		}
		entries, err := dictionary.LoadJMdictSimplified(cfg.DictionaryPath)
		if err != nil {
			log.Warn("continuing without glosses", slog.Any("error", err))
		} else {
			app.Glossary = dictionary.NewGlossary(entries)
			log.Debug("dictionary loaded", slog.Int("entries", len(entries)))
		}
	}
	return app, nil
}

func (a *appContext) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func (a *appContext) reading(k terms.Key) string {
	if a.Glossary != nil {
		return a.Glossary.Reading(k.Root, k.Pronunciation)
	}
	return dictionary.ToHiragana(k.Pronunciation)
}

func (a *appContext) gloss(k terms.Key) string {
	if a.Glossary == nil {
		return ""
	}
	return a.Glossary.Gloss(k.Root, k.Pronunciation)
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errors.New("analyze: at least one FILE is required")
	}
	translated := cmd.Bool("translated")

	app, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	table := tablewriter.NewWriter(app.Out)
	table.Header("Document", "Pairs", "Terms", "Cached", "Skipped sheets")
	var problems []error
	for _, p := range paths {
		doc, err := app.Analyzer.Analyze(ctx, p, translated)
		if err != nil {
			return err
		}
		if err := table.Append(p, strconv.Itoa(len(doc.Pairs)), strconv.Itoa(len(doc.Terms)),
			strconv.FormatBool(doc.FromCache), strconv.Itoa(len(doc.Problems))); err != nil {
			return err
		}
		problems = append(problems, doc.Problems...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	for _, p := range problems {
		fmt.Fprintln(app.Out, "skipped:", p)
	}
	return nil
}

func matchAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	u, err := app.Analyzer.Analyze(ctx, cmd.String("untranslated"), false)
	if err != nil {
		return err
	}
	t, err := app.Analyzer.Analyze(ctx, cmd.String("translated"), true)
	if err != nil {
		return err
	}
	for _, p := range t.Problems {
		fmt.Fprintln(app.Out, "skipped:", p)
	}

	matches := terms.Correlate(u.Terms, t.Terms)
	if len(matches) == 0 {
		fmt.Fprintln(app.Out, "no shared terms")
		return nil
	}

	table := tablewriter.NewWriter(app.Out)
	table.Header("Term", "Reading", "Untranslated", "Translated", "Translation", "Gloss")
	for _, k := range matches.Keys() {
		ui, ti := matches[k].First()
		if err := table.Append(k.Root, app.reading(k), u.Pairs[ui].Source, t.Pairs[ti].Source, t.Pairs[ti].Translation, app.gloss(k)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%d shared terms\n", len(matches))
	return nil
}

func glossaryAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()
	if app.DB == nil {
		return errors.New("glossary: --db or NICHIEI_DB is required")
	}

	u, err := db.GetDocument(app.DB, cmd.String("untranslated"))
	if err != nil {
		return err
	}
	t, err := db.GetDocument(app.DB, cmd.String("translated"))
	if err != nil {
		return err
	}
	shared, err := db.SharedTerms(app.DB, u.ID, t.ID)
	if err != nil {
		return err
	}
	if len(shared) == 0 {
		fmt.Fprintln(app.Out, "no shared terms")
		return nil
	}

	table := tablewriter.NewWriter(app.Out)
	table.Header("Term", "Reading", "Untranslated", "Translated", "Translation", "Gloss")
	for _, s := range shared {
		if err := table.Append(s.Key.Root, app.reading(s.Key), s.UntranslatedSource, s.TranslatedSource, s.Translation, app.gloss(s.Key)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%d shared terms (revisions %s, %s)\n", len(shared), u.Revision, t.Revision)
	return nil
}
