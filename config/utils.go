package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/YaCodeDev/GoYaRSABench/yalogger"
)

// safetyCheck replaces a nil logger with a default one and says so.
func safetyCheck(log *yalogger.Logger) {
	if log == nil {
		return
	}

	if *log == nil {
		*log = yalogger.NewBaseLogger(nil).NewLogger()

		(*log).Warn("Logger is nil, using default logger")
	}
}

// toScreamingSnakeCase converts a string to SCREAMING_SNAKE_CASE.
// For example, "BitWidthLow" becomes "BIT_WIDTH_LOW" and "HTTPResponse" becomes "HTTP_RESPONSE".
func toScreamingSnakeCase(s string) string {
	s = matchFirstCap.ReplaceAllString(s, "${1}_${2}")
	s = matchAllCap.ReplaceAllString(s, "${1}_${2}")

	return strings.ToUpper(s)
}

// loadDotEnv reads KEY=VALUE lines. Blank lines and lines starting with # are
// skipped, an optional "export " prefix is dropped and matching surrounding
// quotes are removed from values. A missing file is not an error.
func loadDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		text = strings.TrimPrefix(text, "export ")

		parts := strings.SplitN(text, "=", DotEnvKVParts)
		if len(parts) != DotEnvKVParts || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidDotEnvFileFormat, line)
		}

		values[strings.TrimSpace(parts[0])] = unquote(strings.TrimSpace(parts[1]))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

func unquote(value string) string {
	const minQuoted = 2

	if len(value) >= minQuoted {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}

	return value
}
