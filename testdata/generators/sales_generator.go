package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"
)

// SalesGeneratorConfig holds configuration for generating sales data files
type SalesGeneratorConfig struct {
	Count       int
	OutputFile  string
	Header      bool
	DefectRatio float64
	StartDate   time.Time
	DayCount    int
	Seed        int64
}

var productNames = []string{
	"Laptop", "Wireless Mouse", "Mechanical Keyboard", "USB-C Hub",
	"Monitor", "Webcam", "Headphones", "Desk Lamp", "Phone Stand",
	"External SSD", "Graphics Tablet", "Microphone",
}

var regions = []string{"North", "South", "East", "West"}

// defect kinds injected when generating messy data
const (
	defectZeroQuantity = iota
	defectNegativePrice
	defectMissingCustomer
	defectMissingRegion
	defectBadPrefix
	defectUnparsableNumber
	defectShortRow
	defectCommaNoise
	defectCount
)

func main() {
	config := &SalesGeneratorConfig{}

	flag.IntVar(&config.Count, "count", 100, "Number of data rows to generate")
	flag.StringVar(&config.OutputFile, "output", "sales_data.txt", "Output file path")
	flag.BoolVar(&config.Header, "header", true, "Include a header row")
	flag.Float64Var(&config.DefectRatio, "defect-ratio", 0.1, "Ratio of defective rows (0.0-1.0)")
	flag.IntVar(&config.DayCount, "days", 30, "Number of days to spread dates over")
	flag.Int64Var(&config.Seed, "seed", 42, "Random seed for reproducible output")

	startDateStr := flag.String("start-date", "2024-12-01", "First transaction date (YYYY-MM-DD)")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	config.StartDate = start

	if config.DefectRatio < 0 || config.DefectRatio > 1 {
		log.Fatalf("Defect ratio must be between 0.0 and 1.0, got %f", config.DefectRatio)
	}

	if err := generateSalesFile(config); err != nil {
		log.Fatalf("Failed to generate sales data: %v", err)
	}

	fmt.Printf("Generated %d rows in %s (defect ratio %.0f%%)\n",
		config.Count, config.OutputFile, config.DefectRatio*100)
}

func generateSalesFile(config *SalesGeneratorConfig) error {
	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	defer w.Flush()

	if config.Header {
		fmt.Fprintln(w, "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region")
	}

	rng := rand.New(rand.NewSource(config.Seed))

	for i := 0; i < config.Count; i++ {
		row := generateRow(rng, config, i+1)

		if rng.Float64() < config.DefectRatio {
			row = injectDefect(rng, row)
		}

		fmt.Fprintln(w, strings.Join(row, "|"))
	}

	return nil
}

func generateRow(rng *rand.Rand, config *SalesGeneratorConfig, seq int) []string {
	productIdx := rng.Intn(len(productNames))
	date := config.StartDate.AddDate(0, 0, rng.Intn(config.DayCount))

	quantity := rng.Intn(10) + 1
	price := float64(rng.Intn(9900000)+10000) / 100.0

	return []string{
		fmt.Sprintf("T%03d", seq),
		date.Format("2006-01-02"),
		fmt.Sprintf("P%d", 101+productIdx),
		productNames[productIdx],
		fmt.Sprintf("%d", quantity),
		fmt.Sprintf("%.2f", price),
		fmt.Sprintf("C%03d", rng.Intn(40)+1),
		regions[rng.Intn(len(regions))],
	}
}

// injectDefect mutates a well-formed row into one of the known defect shapes
func injectDefect(rng *rand.Rand, row []string) []string {
	switch rng.Intn(defectCount) {
	case defectZeroQuantity:
		row[4] = "0"
	case defectNegativePrice:
		row[5] = "-" + row[5]
	case defectMissingCustomer:
		row[6] = ""
	case defectMissingRegion:
		row[7] = ""
	case defectBadPrefix:
		// Strip the prefix from one of the ID columns
		col := []int{0, 2, 6}[rng.Intn(3)]
		row[col] = row[col][1:]
	case defectUnparsableNumber:
		row[4] = "abc"
	case defectShortRow:
		row = row[:5]
	case defectCommaNoise:
		// Indian-style digit grouping; the cleaner strips these commas
		row[5] = addThousandsSeparators(row[5])
	}
	return row
}

func addThousandsSeparators(amount string) string {
	dot := strings.Index(amount, ".")
	if dot < 0 {
		dot = len(amount)
	}
	whole, rest := amount[:dot], amount[dot:]

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	return strings.Join(parts, ",") + rest
}
