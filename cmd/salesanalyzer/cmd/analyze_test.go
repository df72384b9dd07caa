package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "sales.txt")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/sales.txt",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateAnalyzeFlags(t *testing.T) {
	tmpDir := t.TempDir()
	salesFile := filepath.Join(tmpDir, "sales_data.txt")
	if err := os.WriteFile(salesFile, []byte("T001|2024-12-01|P101|Laptop|2|59328.00|C001|North"), 0644); err != nil {
		t.Fatalf("failed to create sales file: %v", err)
	}

	baseFlags := func() {
		viper.Set("input", salesFile)
		viper.Set("output-format", "text")
		viper.Set("output-file", "")
		viper.Set("region", "")
		viper.Set("min-amount", "")
		viper.Set("max-amount", "")
		viper.Set("top-n", 5)
		viper.Set("low-threshold", 10)
		viper.Set("enrich", false)
		viper.Set("catalog-url", "")
		viper.Set("enriched-file", "")
		viper.Set("progress", false)
		viper.Set("no-header", false)
	}

	tests := []struct {
		name        string
		setupFlags  func()
		expectError bool
	}{
		{
			name:        "valid flags",
			setupFlags:  baseFlags,
			expectError: false,
		},
		{
			name: "missing input",
			setupFlags: func() {
				baseFlags()
				viper.Set("input", "")
			},
			expectError: true,
		},
		{
			name: "non-existent input",
			setupFlags: func() {
				baseFlags()
				viper.Set("input", "/non/existent/sales.txt")
			},
			expectError: true,
		},
		{
			name: "invalid output format",
			setupFlags: func() {
				baseFlags()
				viper.Set("output-format", "xml")
			},
			expectError: true,
		},
		{
			name: "unparsable min amount",
			setupFlags: func() {
				baseFlags()
				viper.Set("min-amount", "lots")
			},
			expectError: true,
		},
		{
			name: "unparsable max amount",
			setupFlags: func() {
				baseFlags()
				viper.Set("max-amount", "1,000")
			},
			expectError: true,
		},
		{
			name: "valid amount range",
			setupFlags: func() {
				baseFlags()
				viper.Set("min-amount", "1000")
				viper.Set("max-amount", "50000")
			},
			expectError: false,
		},
		{
			name: "zero top-n",
			setupFlags: func() {
				baseFlags()
				viper.Set("top-n", 0)
			},
			expectError: true,
		},
		{
			name: "negative low-threshold",
			setupFlags: func() {
				baseFlags()
				viper.Set("low-threshold", -1)
			},
			expectError: true,
		},
		{
			name: "output file in missing directory",
			setupFlags: func() {
				baseFlags()
				viper.Set("output-file", "/non/existent/dir/report.txt")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setupFlags()

			err := validateAnalyzeFlags(analyzeCmd, nil)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
