package infile

import (
	"math"
	"strings"

	"github.com/danmuck/ebopctl/internal/params"
)

// Wire forms of the overloaded pairs. Encoding switches on the variant type;
// decoding switches on the sign or magnitude of the first token.

func radiiTokens(r params.RadiiEncoding) (string, string) {
	switch v := r.(type) {
	case params.DirectRadii:
		return formatFloat(-v.RA), formatFloat(v.RB)
	case params.SumRatio:
		return formatFloat(v.Sum), formatFloat(v.Ratio)
	default:
		return "", ""
	}
}

func decodeRadii(first, second float64) params.RadiiEncoding {
	if first < 0 {
		return params.DirectRadii{RA: -first, RB: second}
	}
	return params.SumRatio{Sum: first, Ratio: second}
}

func massRatioToken(q params.MassRatio) string {
	if q.Spherical {
		return formatFloat(-q.Q)
	}
	return formatFloat(q.Q)
}

func decodeMassRatio(v float64) params.MassRatio {
	if v < 0 {
		return params.MassRatio{Q: -v, Spherical: true}
	}
	return params.MassRatio{Q: v}
}

func eccentricityTokens(e params.EccentricityEncoding) (string, string) {
	switch v := e.(type) {
	case params.EccentricityOmega:
		return literalEccentricityToken(v.E), formatFloat(v.Omega)
	case params.EccentricityVector:
		return formatFloat(v.ECosW), formatFloat(v.ESinW)
	default:
		return "", ""
	}
}

// decodeEccentricity classifies the pair on |first| alone; both tokens
// switch meaning together.
func decodeEccentricity(firstTok string, first, second float64) (params.EccentricityEncoding, error) {
	if math.Abs(first) < params.EccentricityOffset {
		return params.EccentricityVector{ECosW: first, ESinW: second}, nil
	}
	if first < 0 {
		return nil, ErrNegativeE
	}
	return params.EccentricityOmega{E: literalEccentricity(firstTok, first), Omega: second}, nil
}

func reflectionToken(r params.Reflection) string {
	return formatFloat(params.ReflectionValue(r))
}

func lawToken(l params.LDLaw) string {
	return strings.ToLower(string(l))
}
