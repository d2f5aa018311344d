package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mrotools/mroparse/extractor"
	"github.com/mrotools/mroparse/internal/lexfile"
)

// Header candidates for auto-detecting the relevant CSV columns.
var (
	descriptionColumns = []string{"description", "desc", "item description", "item_description", "text", "long description", "material description"}
	hintColumns        = []string{"supplier", "vendor", "mfr", "mfg", "manufacturer", "distributor", "source"}
)

type cliOptions struct {
	configPath  string
	lexiconPath string
	inputPath   string
	outputPath  string
	outputDir   string
	textColumn  string
	hintColumn  string
	workers     int
	sampleCap   int
	archetype   string
	threshold   float64
	jsonLogs    bool
	stdout      bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mroparse: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts cliOptions
	cmd := &cobra.Command{
		Use:   "mroparse --input FILE [flags]",
		Short: "Extract manufacturer and part-number fields from tabular descriptions",
		Long: `mroparse reads a CSV of free-text item descriptions, profiles the file,
runs the multi-strategy extraction engine on every row, and writes a result
CSV with the resolved manufacturer, part number, confidences, and review
flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadViperConfig(&opts); err != nil {
				return err
			}
			if opts.inputPath == "" {
				return errors.New("missing required --input file")
			}
			return run(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a mroparse.yaml config file")
	flags.StringVar(&opts.lexiconPath, "lexicon", "", "Path to the lexicon YAML (default: built-in set)")
	flags.StringVarP(&opts.inputPath, "input", "i", "", "CSV file containing item descriptions")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "CSV file to write results (default uses --output-dir/result_*.csv)")
	flags.StringVar(&opts.outputDir, "output-dir", "csv", "Directory for result CSVs when --output is omitted")
	flags.StringVar(&opts.textColumn, "text-column", "", "Column name or #index of the description column")
	flags.StringVar(&opts.hintColumn, "hint-column", "", "Column name or #index of the supplier/vendor hint column")
	flags.IntVar(&opts.workers, "workers", 0, "Row-resolution worker count (0 = default)")
	flags.IntVar(&opts.sampleCap, "sample-cap", 0, "Profiler sample cap (0 = default)")
	flags.StringVar(&opts.archetype, "archetype", "", "Force the file archetype (labeled-rich, catalog-only, compressed-short, mixed)")
	flags.Float64Var(&opts.threshold, "threshold", 0, "Override the confidence threshold")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Emit JSON structured logs")
	flags.BoolVar(&opts.stdout, "stdout", false, "Print a result preview to STDOUT")
	return cmd
}

// loadViperConfig layers an optional YAML config and MROPARSE_* environment
// variables under the flag values. Flags win.
func loadViperConfig(opts *cliOptions) error {
	v := viper.New()
	v.SetEnvPrefix("mroparse")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if opts.configPath != "" {
		v.SetConfigFile(opts.configPath)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", opts.configPath)
		}
	} else {
		v.SetConfigName("mroparse")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return errors.Wrap(err, "read config")
			}
		}
	}
	if opts.lexiconPath == "" {
		opts.lexiconPath = v.GetString("lexicon")
	}
	if opts.workers == 0 {
		opts.workers = v.GetInt("workers")
	}
	if opts.sampleCap == 0 {
		opts.sampleCap = v.GetInt("sample_cap")
	}
	if opts.archetype == "" {
		opts.archetype = v.GetString("archetype")
	}
	if opts.threshold == 0 {
		opts.threshold = v.GetFloat64("threshold")
	}
	if opts.textColumn == "" {
		opts.textColumn = v.GetString("text_column")
	}
	if opts.hintColumn == "" {
		opts.hintColumn = v.GetString("hint_column")
	}
	return nil
}

func newLogger(jsonLogs bool) (*zap.Logger, error) {
	if jsonLogs {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func run(ctx context.Context, opts cliOptions) error {
	logger, err := newLogger(opts.jsonLogs)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer logger.Sync()

	if opts.lexiconPath != "" {
		if err := lexfile.Ensure(opts.lexiconPath); err != nil {
			return err
		}
	}
	lex, err := lexfile.Load(opts.lexiconPath)
	if err != nil {
		return errors.Wrap(err, "load lexicon")
	}

	cfg := extractor.Config{
		Workers:   opts.workers,
		SampleCap: opts.sampleCap,
		Archetype: extractor.Archetype(opts.archetype),
		Threshold: float32(opts.threshold),
	}
	service, err := extractor.New(lex, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "init service")
	}

	rows, headers, err := readInputCSV(opts.inputPath, opts.textColumn, opts.hintColumn)
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	if len(rows) == 0 {
		return errors.New("input file does not contain any rows")
	}
	logger.Info("input loaded",
		zap.String("file", opts.inputPath),
		zap.Int("rows", len(rows)),
		zap.String("text_column", headers.text),
		zap.String("hint_column", headers.hint))

	outs, stats, err := service.ParseTable(ctx, rows)
	if err != nil {
		return errors.Wrap(err, "parse table")
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	if err := writeResultCSV(outputPath, rows, outs); err != nil {
		return err
	}
	fmt.Printf("results written to %s (archetype=%s identifier=%d/%d code=%d/%d retracted=%d)\n",
		outputPath, stats.Archetype,
		stats.IdentifierFill, stats.Rows, stats.CodeFill, stats.Rows, stats.Retracted)

	if opts.stdout {
		printPreview(rows, outs)
	}
	return nil
}

type detectedColumns struct {
	text string
	hint string
}

func readInputCSV(path, textColumn, hintColumn string) ([]extractor.Row, detectedColumns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, detectedColumns{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, detectedColumns{}, errors.Wrap(err, "read header")
	}

	textIdx, textName := resolveColumn(header, textColumn, descriptionColumns)
	if textIdx < 0 {
		if textColumn != "" {
			return nil, detectedColumns{}, errors.Newf("text column %q not found", textColumn)
		}
		// Headerless single-column files: treat every cell as description.
		textIdx, textName = 0, header[0]
	}
	hintIdx, hintName := resolveColumn(header, hintColumn, hintColumns)

	var rows []extractor.Row
	// The header row of a headerless file is data too.
	if textColumn == "" && !headerLike(header) {
		rows = append(rows, recordToRow(header, textIdx, hintIdx, hintName))
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, detectedColumns{}, errors.Wrap(err, "read record")
		}
		rows = append(rows, recordToRow(record, textIdx, hintIdx, hintName))
	}
	return rows, detectedColumns{text: textName, hint: hintName}, nil
}

func recordToRow(record []string, textIdx, hintIdx int, hintName string) extractor.Row {
	row := extractor.Row{}
	if textIdx < len(record) {
		row.Texts = []string{record[textIdx]}
	}
	if hintIdx >= 0 && hintIdx < len(record) && strings.TrimSpace(record[hintIdx]) != "" {
		row.Hints = map[string]string{hintName: record[hintIdx]}
	}
	return row
}

// resolveColumn finds a column by explicit name, by "#index", or by the
// candidate list.
func resolveColumn(header []string, explicit string, candidates []string) (int, string) {
	if explicit != "" {
		if strings.HasPrefix(explicit, "#") {
			var idx int
			if _, err := fmt.Sscanf(explicit, "#%d", &idx); err == nil && idx >= 0 && idx < len(header) {
				return idx, header[idx]
			}
			return -1, ""
		}
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), explicit) {
				return i, h
			}
		}
		return -1, ""
	}
	for i, h := range header {
		normed := strings.ToLower(strings.TrimSpace(h))
		for _, cand := range candidates {
			if normed == cand {
				return i, h
			}
		}
	}
	return -1, ""
}

// headerLike guesses whether the first record is a header row rather than
// data: any cell matching a known column candidate counts.
func headerLike(record []string) bool {
	for _, cell := range record {
		normed := strings.ToLower(strings.TrimSpace(cell))
		for _, cand := range append(append([]string{}, descriptionColumns...), hintColumns...) {
			if normed == cand {
				return true
			}
		}
	}
	return false
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", errors.Wrap(err, "resolve output path")
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", errors.Wrap(err, "create output directory")
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve output dir")
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create output dir")
	}
	filename := fmt.Sprintf("result_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeResultCSV(path string, rows []extractor.Row, outs []extractor.Outcome) error {
	if len(rows) != len(outs) {
		return errors.Newf("rows/results length mismatch: %d vs %d", len(rows), len(outs))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create result file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := []string{"row", "description", "manufacturer", "mfr_confidence", "mfr_strategy", "part_number", "pn_confidence", "pn_strategy", "flags"}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, out := range outs {
		record := []string{
			fmt.Sprintf("%d", i+1),
			strings.Join(rows[i].Texts, " "),
			out.Identifier.Value,
			formatConfidence(out.Identifier),
			string(out.Identifier.Strategy),
			out.Code.Value,
			formatConfidence(out.Code),
			string(out.Code.Strategy),
			strings.Join(out.Flags, "|"),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush result")
	}
	return nil
}

func formatConfidence(r extractor.FieldResult) string {
	if r.Empty() {
		return ""
	}
	return fmt.Sprintf("%.3f", r.Confidence)
}

func printPreview(rows []extractor.Row, outs []extractor.Outcome) {
	limit := len(outs)
	if limit > 20 {
		limit = 20
	}
	fmt.Println()
	fmt.Println("==== result preview ====")
	for i := 0; i < limit; i++ {
		text := strings.Join(rows[i].Texts, " ")
		if len(text) > 60 {
			text = text[:60] + "…"
		}
		fmt.Printf("%d. %s\n", i+1, text)
		if !outs[i].Identifier.Empty() {
			fmt.Printf("    manufacturer: %s (%.3f, %s)\n", outs[i].Identifier.Value, outs[i].Identifier.Confidence, outs[i].Identifier.Strategy)
		}
		if !outs[i].Code.Empty() {
			fmt.Printf("    part number:  %s (%.3f, %s)\n", outs[i].Code.Value, outs[i].Code.Confidence, outs[i].Code.Strategy)
		}
		if len(outs[i].Flags) > 0 {
			fmt.Printf("    flags: %s\n", strings.Join(outs[i].Flags, ", "))
		}
	}
}
