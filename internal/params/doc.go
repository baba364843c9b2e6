// Package params owns the eclipsing binary parameter set.
//
// Ownership boundary:
// - typed parameter record and its overloaded-pair variants
//
// - validation rules
//
// - defaults and construction options
//
// Overloaded pairs in the "in" file are modeled as sealed variants:
// RadiiEncoding, EccentricityEncoding and Reflection. The variant type picks
// the wire interpretation at encode time; package infile picks the variant
// from sign/magnitude at decode time.
//
// A ParameterSet built by New is validated and resolved (LDB "same" copied
// from LDA). Treat it as a value: to change a field build a new one with
// New(From(p), ...).
package params
