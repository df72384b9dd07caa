package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang-sales-analytics-service/cmd/salesanalyzer/config"
	"golang-sales-analytics-service/internal/enrichment"
	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/internal/pipeline"
	"golang-sales-analytics-service/internal/reporter"
	"golang-sales-analytics-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the analyze command
var (
	inputFile    string
	outputFormat string
	outputFile   string
	showProgress bool
	noHeader     bool

	// Filter flags
	filterRegion string
	minAmount    string
	maxAmount    string

	// Report flags
	topN         int
	lowThreshold int

	// Enrichment flags
	enableEnrich bool
	catalogURL   string
	enrichedFile string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Clean, validate and analyze a sales data file",
	Long: `Analyze reads a pipe-delimited sales data file, rejects defective
records with per-reason accounting, and reports aggregate sales metrics.

The input file uses the 8-column schema:
  TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region

Examples:
  # Basic analysis
  salesanalyzer analyze --input sales_data.txt

  # Filter by region and amount range before aggregating
  salesanalyzer analyze --input sales_data.txt \
    --region North --min-amount 1000 --max-amount 50000

  # JSON output to a file
  salesanalyzer analyze --input sales_data.txt \
    --output-format json --output-file report.json

  # Enrich with product catalog data and save the enriched file
  salesanalyzer analyze --input sales_data.txt \
    --enrich --enriched-file output/enriched_sales_data.txt

  # Input without a header row, with progress indicators
  salesanalyzer analyze --input sales_data.txt --no-header --progress`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Required flags
	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to pipe-delimited sales data file (required)")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "text", "output format: text, json")
	analyzeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Filter flags
	analyzeCmd.Flags().StringVarP(&filterRegion, "region", "r", "", "keep only transactions from this region")
	analyzeCmd.Flags().StringVar(&minAmount, "min-amount", "", "keep only transactions with line total >= this amount")
	analyzeCmd.Flags().StringVar(&maxAmount, "max-amount", "", "keep only transactions with line total <= this amount")

	// Report flags
	analyzeCmd.Flags().IntVar(&topN, "top-n", 5, "number of entries in product and customer rankings")
	analyzeCmd.Flags().IntVar(&lowThreshold, "low-threshold", 10, "quantity threshold for low performing products")

	// Enrichment flags
	analyzeCmd.Flags().BoolVar(&enableEnrich, "enrich", false, "enrich transactions with product catalog data")
	analyzeCmd.Flags().StringVar(&catalogURL, "catalog-url", enrichment.DefaultCatalogURL, "product catalog base URL")
	analyzeCmd.Flags().StringVar(&enrichedFile, "enriched-file", "", "path to write the enriched data file (implies --enrich)")

	// UI flags
	analyzeCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")
	analyzeCmd.Flags().BoolVar(&noHeader, "no-header", false, "treat the first line as data, not a header")

	// Mark required flags
	analyzeCmd.MarkFlagRequired("input")

	// Bind flags to viper
	viper.BindPFlag("input", analyzeCmd.Flags().Lookup("input"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", analyzeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("region", analyzeCmd.Flags().Lookup("region"))
	viper.BindPFlag("min-amount", analyzeCmd.Flags().Lookup("min-amount"))
	viper.BindPFlag("max-amount", analyzeCmd.Flags().Lookup("max-amount"))
	viper.BindPFlag("top-n", analyzeCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("low-threshold", analyzeCmd.Flags().Lookup("low-threshold"))
	viper.BindPFlag("enrich", analyzeCmd.Flags().Lookup("enrich"))
	viper.BindPFlag("catalog-url", analyzeCmd.Flags().Lookup("catalog-url"))
	viper.BindPFlag("enriched-file", analyzeCmd.Flags().Lookup("enriched-file"))
	viper.BindPFlag("progress", analyzeCmd.Flags().Lookup("progress"))
	viper.BindPFlag("no-header", analyzeCmd.Flags().Lookup("no-header"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	filterRegion = viper.GetString("region")
	minAmount = viper.GetString("min-amount")
	maxAmount = viper.GetString("max-amount")
	topN = viper.GetInt("top-n")
	lowThreshold = viper.GetInt("low-threshold")
	enableEnrich = viper.GetBool("enrich")
	catalogURL = viper.GetString("catalog-url")
	enrichedFile = viper.GetString("enriched-file")
	showProgress = viper.GetBool("progress")
	noHeader = viper.GetBool("no-header")

	// Validate required flags
	if inputFile == "" {
		return fmt.Errorf("input is required")
	}

	// Validate file existence
	if err := validateFileExists(inputFile, "sales data file"); err != nil {
		return err
	}

	// Validate output format
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: text, json", outputFormat)
	}

	// Validate amount bounds. Range consistency (min <= max) is checked by
	// the filter itself so it faults before any filtering happens.
	if minAmount != "" {
		if _, err := decimal.NewFromString(minAmount); err != nil {
			return fmt.Errorf("invalid min amount '%s': %w", minAmount, err)
		}
	}
	if maxAmount != "" {
		if _, err := decimal.NewFromString(maxAmount); err != nil {
			return fmt.Errorf("invalid max amount '%s': %w", maxAmount, err)
		}
	}

	// Validate report bounds
	if topN <= 0 {
		return fmt.Errorf("top-n must be positive")
	}
	if lowThreshold < 0 {
		return fmt.Errorf("low-threshold cannot be negative")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	configureLogging()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting analysis...\n")
		fmt.Fprintf(os.Stderr, "Input file: %s\n", inputFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Create configurations
	readerConfig := config.CreateReaderConfig(noHeader)
	schemaConfig := config.CreateSchemaConfig()

	filterCriteria, err := config.CreateFilterCriteria(filterRegion, minAmount, maxAmount)
	if err != nil {
		return fmt.Errorf("failed to create filter criteria: %w", err)
	}

	// Create pipeline
	p, err := pipeline.New(readerConfig, schemaConfig)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	// Add progress callback if requested
	if showProgress {
		p.AddProgressCallback(func(progress *pipeline.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s (%.1f%% complete)",
				progress.CompletedSteps, progress.TotalSteps,
				progress.CurrentStep, progress.PercentComplete)
		})
	}

	// Run the cleaning and validation pipeline
	result, err := p.Run(ctx, inputFile)
	if err != nil {
		handler := NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "\n")
	}

	// Filter faults (min > max) surface before any filtering happens
	transactions, err := filterCriteria.Apply(result.Accepted)
	if err != nil {
		handler := NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}

	// Enrich with catalog data if requested. Catalog failures degrade to an
	// unenriched report instead of aborting the analysis.
	var enrichResult *enrichment.Result
	if enableEnrich || enrichedFile != "" {
		enrichResult = runEnrichment(ctx, transactions)

		if enrichResult != nil && enrichedFile != "" {
			if err := enrichment.SaveEnrichedFile(enrichedFile, enrichResult.Enriched); err != nil {
				handler := NewCLIErrorHandler()
				os.Exit(handler.HandleError(err))
			}
			if viper.GetBool("verbose") {
				fmt.Fprintf(os.Stderr, "Enriched data written to %s\n", enrichedFile)
			}
		}
	}

	// Generate report
	reportConfig := config.CreateReportConfig(outputFormat, topN, lowThreshold)
	generator, err := reporter.NewGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	reportData := &reporter.ReportData{
		Transactions: transactions,
		Summary:      result.Summary,
		Enrichment:   enrichResult,
	}
	if err := generator.Generate(reportData, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nAnalysis completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Read %d lines, parsed %d records.\n",
			result.Summary.TotalLines, result.Summary.RecordsParsed)
		fmt.Fprintf(os.Stderr, "Accepted %d records, rejected %d.\n",
			result.Summary.AcceptedCount, result.Summary.RejectedCount)
		if !filterCriteria.IsEmpty() {
			fmt.Fprintf(os.Stderr, "%d records matched the filter criteria.\n", len(transactions))
		}
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Summary.Duration)
	}

	return nil
}

// runEnrichment fetches the product catalog and enriches transactions. A
// fetch failure degrades to an empty catalog so the analysis still completes;
// a bad client configuration disables enrichment entirely.
func runEnrichment(ctx context.Context, transactions []*models.Transaction) *enrichment.Result {
	clientConfig := config.CreateCatalogClientConfig(catalogURL)

	client, err := enrichment.NewCatalogClient(clientConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: enrichment disabled: %v\n", err)
		return nil
	}

	products, err := client.FetchProducts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: catalog fetch failed, enriching with empty catalog: %v\n", err)
		products = nil
	}

	return enrichment.Enrich(transactions, enrichment.BuildCatalog(products))
}

// configureLogging sets up the global logger from the verbose flag
func configureLogging() {
	logConfig := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		logConfig.Level = logger.DebugLevel
	} else {
		logConfig.Level = logger.WarnLevel
	}

	if log, err := logger.NewLogger(logConfig); err == nil {
		logger.SetGlobalLogger(log)
	}
}
