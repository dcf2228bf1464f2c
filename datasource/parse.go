package datasource

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"forecast-viewer/models"
)

const (
	fieldsPerRow  = 3
	maxLineLength = 1024 * 1024
)

// ParseSeries parses a forecast file of the form
//
//	timestamp,actual_value,predicted_value
//
// The first non-blank line is a header and is discarded. Blank lines are skipped.
// A value keeps its leading number when followed by other text; values with no
// leading number become NaN. Both are reported as warnings. The only error
// returned is a failure to read r.
//
// Rows with fewer than three fields keep their position with NaN for the missing
// values. Rows with more than three fields are truncated to the first three. Both
// cases are reported as warnings with Field "row".
func ParseSeries(r io.Reader) (models.ForecastSeries, []models.ParseWarning, error) {
	series := models.ForecastSeries{
		Timestamps: []string{},
		Actual:     models.Values{},
		Predicted:  models.Values{},
	}
	var warnings []models.ParseWarning

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	headerSeen := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		fields := strings.Split(line, ",")
		switch {
		case len(fields) < fieldsPerRow:
			warnings = append(warnings, models.ParseWarning{
				Line:   lineNo,
				Field:  "row",
				Value:  line,
				Reason: fmt.Sprintf("expected %d fields, got %d", fieldsPerRow, len(fields)),
			})
			for len(fields) < fieldsPerRow {
				fields = append(fields, "")
			}
		case len(fields) > fieldsPerRow:
			warnings = append(warnings, models.ParseWarning{
				Line:   lineNo,
				Field:  "row",
				Value:  line,
				Reason: fmt.Sprintf("expected %d fields, got %d; extra fields ignored", fieldsPerRow, len(fields)),
			})
			fields = fields[:fieldsPerRow]
		}

		actual, w := parseValue(lineNo, "actual", fields[1])
		if w != nil {
			warnings = append(warnings, *w)
		}
		predicted, w := parseValue(lineNo, "predicted", fields[2])
		if w != nil {
			warnings = append(warnings, *w)
		}

		series.Timestamps = append(series.Timestamps, strings.TrimSpace(fields[0]))
		series.Actual = append(series.Actual, actual)
		series.Predicted = append(series.Predicted, predicted)
	}
	if err := scanner.Err(); err != nil {
		return series, warnings, fmt.Errorf("failed to read forecast data: %w", err)
	}

	return series, warnings, nil
}

// parseValue converts one numeric field the way a lenient float parser does: the
// longest leading decimal number is used and any trailing text is ignored with a
// warning. NaN is returned when there is no leading number or it is not finite.
func parseValue(lineNo int, field, raw string) (float64, *models.ParseWarning) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return math.NaN(), &models.ParseWarning{Line: lineNo, Field: field, Value: raw, Reason: "empty value"}
	}
	prefix := numericPrefix(text)
	if prefix == "" {
		return math.NaN(), &models.ParseWarning{Line: lineNo, Field: field, Value: raw, Reason: "not a number"}
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN(), &models.ParseWarning{Line: lineNo, Field: field, Value: raw, Reason: "not a finite number"}
	}
	if len(prefix) < len(text) {
		return v, &models.ParseWarning{Line: lineNo, Field: field, Value: raw, Reason: "trailing characters ignored"}
	}
	return v, nil
}

// numericPrefix returns the longest prefix of s of the form
// [+-] digits [. digits] [(e|E) [+-] digits], with at least one mantissa digit.
// An exponent marker without digits is not part of the prefix.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			end = j
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
