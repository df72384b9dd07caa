// Package reader loads pipe-delimited sales data files whose encoding is not
// known in advance.
//
// The reader tries an ordered list of candidate encodings and uses the first
// one that decodes the whole file without error; there is no per-line
// encoding mixing. Decoded text is split into lines in file order, trailing
// line terminators are stripped, and fully blank lines are dropped.
//
// Failures are distinct from parse/validation errors: a missing file,
// a permission problem, and an exhausted encoding list each surface as a
// file-category error with its own code, and the pipeline does not proceed
// to parsing.
package reader

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang-sales-analytics-service/pkg/errors"
	"golang-sales-analytics-service/pkg/logger"

	"golang.org/x/text/encoding/charmap"
)

// Supported encoding names, matched case-insensitively.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin-1"
	EncodingWindows1252 = "windows-1252"
)

// Config holds configuration for the encoding-resilient reader.
type Config struct {
	// Encodings is the ordered candidate list. The first encoding that
	// decodes the entire file without error wins.
	Encodings []string `json:"encodings"`

	// SkipHeader drops the first line of the file before blank-line
	// filtering. Sales data files carry a header row.
	SkipHeader bool `json:"skip_header"`
}

// DefaultConfig returns a configuration with the standard encoding order.
// Latin-1 accepts any byte sequence, so candidates after it are only
// reachable with a custom list.
func DefaultConfig() *Config {
	return &Config{
		Encodings:  []string{EncodingUTF8, EncodingLatin1, EncodingWindows1252},
		SkipHeader: true,
	}
}

// Validate validates the reader configuration
func (c *Config) Validate() error {
	if len(c.Encodings) == 0 {
		return fmt.Errorf("at least one candidate encoding is required")
	}
	for _, name := range c.Encodings {
		if _, err := decoderFor(name); err != nil {
			return err
		}
	}
	return nil
}

// Reader reads text files using an ordered list of candidate encodings
type Reader struct {
	config *Config
	logger logger.Logger
}

// NewReader creates a Reader with the given configuration
func NewReader(config *Config) (*Reader, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"reader_config",
			config.Encodings,
			err,
		).WithSuggestion("Use encodings from: utf-8, latin-1, windows-1252")
	}

	log := logger.GetGlobalLogger().WithComponent("reader")
	log.WithFields(logger.Fields{
		"encodings":   config.Encodings,
		"skip_header": config.SkipHeader,
	}).Debug("Created reader")

	return &Reader{
		config: config,
		logger: log,
	}, nil
}

// ReadLines reads the file at path, decoding with the first candidate
// encoding that succeeds, and returns non-blank lines in file order.
func (r *Reader) ReadLines(path string) ([]string, error) {
	r.logger.WithField("file_path", path).Info("Reading sales data file")

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.WithError(err).WithField("file_path", path).Error("Failed to read file")

		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	text, encodingUsed, err := r.decode(data)
	if err != nil {
		r.logger.WithError(err).WithFields(logger.Fields{
			"file_path": path,
			"encodings": r.config.Encodings,
		}).Error("All candidate encodings failed")
		return nil, errors.FileError(errors.CodeEncodingUnreadable, path, err)
	}

	lines := splitLines(text, r.config.SkipHeader)

	r.logger.WithFields(logger.Fields{
		"file_path": path,
		"encoding":  encodingUsed,
		"lines":     len(lines),
	}).Info("File read successfully")

	return lines, nil
}

// decode tries each candidate encoding in order and returns the decoded text
// together with the name of the encoding that succeeded.
func (r *Reader) decode(data []byte) (string, string, error) {
	var lastErr error
	for _, name := range r.config.Encodings {
		text, err := decodeWith(name, data)
		if err != nil {
			r.logger.WithField("encoding", name).Debug("Encoding candidate failed")
			lastErr = err
			continue
		}
		return text, name, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate encodings configured")
	}
	return "", "", fmt.Errorf("unable to decode file with encodings %v: %w", r.config.Encodings, lastErr)
}

// decodeWith decodes data using the named encoding, failing on any byte the
// encoding does not define.
func decodeWith(name string, data []byte) (string, error) {
	cm, err := decoderFor(name)
	if err != nil {
		return "", err
	}

	// UTF-8 is handled strictly rather than through a charmap.
	if cm == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid UTF-8 byte sequence")
		}
		return string(data), nil
	}

	var sb strings.Builder
	sb.Grow(len(data))
	for i, b := range data {
		r := cm.DecodeByte(b)
		if r == utf8.RuneError {
			return "", fmt.Errorf("byte 0x%02X at offset %d is not defined in %s", b, i, name)
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

// decoderFor maps an encoding name to its charmap; nil means strict UTF-8.
func decoderFor(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EncodingUTF8, "utf8":
		return nil, nil
	case EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

// splitLines splits decoded text into lines, optionally dropping the header
// row, stripping trailing carriage returns and dropping fully blank lines.
func splitLines(text string, skipHeader bool) []string {
	raw := strings.Split(text, "\n")

	lines := make([]string, 0, len(raw))
	for i, line := range raw {
		if skipHeader && i == 0 {
			continue
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
