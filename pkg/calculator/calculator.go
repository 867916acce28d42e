// Package calculator sums delimited strings of numbers.
//
// Input is a list of numeric tokens separated by commas or newlines. A
// leading "//<delim>\n" line swaps the separator for the rest of the input:
//
//	Add("1,2\n3")   // 6
//	Add("//;\n1;2") // 3
//
// The custom delimiter is matched as a literal string, so "//.\n1.2" sums to
// 3. Set Calculator.PatternDelimiters to compile it as a regular expression
// instead; "." then matches every character.
//
// Negative tokens are rejected with a *NegativeNumberError listing every
// offender in input order. A sum beyond the float64 range fails with
// ErrSumOverflow.
package calculator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const declPrefix = "//"

var defaultDelimiter = regexp.MustCompile(`,|\n`)

// Calculator evaluates inputs. The zero value treats custom delimiters as
// literal strings.
type Calculator struct {
	// PatternDelimiters compiles a custom delimiter as a regular expression
	// instead of matching it literally.
	PatternDelimiters bool
}

var std Calculator

// Add returns the sum of the numbers in input using literal custom delimiters.
func Add(input string) (float64, error) { return std.Add(input) }

// Parse returns the numbers in input in order, without negative validation.
func Parse(input string) ([]float64, error) { return std.Parse(input) }

// Add parses input, rejects negatives and returns the sum.
func (c Calculator) Add(input string) (float64, error) {
	if input == "" {
		return 0, nil
	}
	values, err := c.Parse(input)
	if err != nil {
		return 0, err
	}
	return Total(values)
}

// Total rejects negatives and sums values left to right.
func Total(values []float64) (float64, error) {
	if neg := Negatives(values); len(neg) > 0 {
		return 0, &NegativeNumberError{Values: neg}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	if math.IsInf(sum, 0) {
		return 0, ErrSumOverflow
	}
	return sum, nil
}

// Parse resolves the delimiter, splits input and converts every token.
// An empty input yields no values.
func (c Calculator) Parse(input string) ([]float64, error) {
	if input == "" {
		return nil, nil
	}
	delim, body, err := c.resolve(input)
	if err != nil {
		return nil, err
	}
	tokens := delim.Split(body, -1)
	values := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := parseToken(tok)
		if err != nil {
			return nil, &MalformedNumberError{Token: tok, Position: i}
		}
		values[i] = v
	}
	return values, nil
}

// resolve picks the active delimiter and strips a custom declaration.
func (c Calculator) resolve(input string) (*regexp.Regexp, string, error) {
	if !strings.HasPrefix(input, declPrefix) {
		return defaultDelimiter, input, nil
	}
	rest := input[len(declPrefix):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 1 {
		// "//" with no spec or no newline is just data
		return defaultDelimiter, input, nil
	}
	spec, body := rest[:nl], rest[nl+1:]
	if !c.PatternDelimiters {
		return regexp.MustCompile(regexp.QuoteMeta(spec)), body, nil
	}
	re, err := regexp.Compile(spec)
	if err != nil {
		return nil, "", &DelimiterError{Spec: spec, Err: err}
	}
	if re.MatchString("") {
		return nil, "", &DelimiterError{Spec: spec, Err: errEmptyMatch}
	}
	return re, body, nil
}

func parseToken(tok string) (float64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("non-finite value %q", tok)
	}
	return v, nil
}

// Negatives returns the values below zero, in their original order.
func Negatives(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

// FormatNumber renders v in its shortest decimal form ("2", "-2.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
