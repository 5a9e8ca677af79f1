package regcps

import (
	"github.com/KromDaniel/regcps/internal/compiler"
	"github.com/KromDaniel/regcps/internal/parser"
)

// AnalysisResult contains the results of pattern analysis without code generation.
type AnalysisResult = compiler.Analysis

// Analyze parses pattern and reports its feature labels, nested quantifier
// risk, stub count and minimum match length.
//
// Example:
//
//	result := regcps.Analyze(`(a+)+|\1`)
//	fmt.Println(result.FeatureLabels)       // [Alternation Captures Quantifiers Stubs]
//	fmt.Println(result.HasCatastrophicRisk) // true
func Analyze(pattern string) AnalysisResult {
	return compiler.Analyze(parser.Parse(pattern).Root)
}
