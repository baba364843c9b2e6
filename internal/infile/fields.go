package infile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/danmuck/ebopctl/internal/params"
)

// formatFloat writes the shortest decimal that parses back to v, always with
// a decimal point so the tool's list-directed read sees a real.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func parseFloat(tok string) (float64, error) {
	v, err := strconv.ParseFloat(normalizeExponent(tok), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, tok)
	}
	return v, nil
}

// normalizeExponent accepts Fortran D exponents (1.5D-3).
func normalizeExponent(tok string) string {
	return strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'e'
		}
		return r
	}, tok)
}

// parseInt accepts integral reals ("3.0") as well as plain integers.
func parseInt(tok string) (int, error) {
	if v, err := strconv.Atoi(tok); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(normalizeExponent(tok), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q", ErrBadInteger, tok)
	}
	return int(f), nil
}

// literalEccentricityToken writes e as e+10 by prefixing the decimal text,
// so the fraction digits survive without floating point addition.
func literalEccentricityToken(e float64) string {
	s := strconv.FormatFloat(e, 'f', -1, 64)
	switch {
	case s == "0":
		return "10.0"
	case strings.HasPrefix(s, "0."):
		return "10" + s[1:]
	default:
		return formatFloat(e + params.EccentricityOffset)
	}
}

// literalEccentricity recovers e from an e+10 token, preferring the decimal
// text over float subtraction.
func literalEccentricity(tok string, v float64) float64 {
	t := strings.TrimPrefix(tok, "+")
	if t == "10" {
		return 0
	}
	if strings.HasPrefix(t, "10.") && !strings.ContainsAny(t, "eEdD") {
		if e, err := strconv.ParseFloat("0"+t[2:], 64); err == nil {
			return e
		}
	}
	return v - params.EccentricityOffset
}

// checkToken reports why s cannot be written as a single bounded token.
func checkToken(field, s string, maxLen int) error {
	if strings.ContainsAny(s, "\r\n") {
		return &EncodingError{Field: field, Err: ErrLineBreak}
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return &EncodingError{Field: field, Err: ErrWhitespace}
	}
	if strings.HasPrefix(s, "#") {
		return &EncodingError{Field: field, Err: ErrCommentLike}
	}
	if maxLen > 0 && len(s) > maxLen {
		return &EncodingError{Field: field, Err: fmt.Errorf("%w: %d > %d", ErrTooLong, len(s), maxLen)}
	}
	return nil
}
