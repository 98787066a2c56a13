package domain

import "strings"

// numberSeparators are the characters stripped from document numbers.
// "7.675/11" and "7675-11" both normalise to "767511".
var numberSeparators = strings.NewReplacer(".", "", "-", "", "/", "")

// NormalizeNumber canonicalises a document-number string by removing the
// separator characters '.', '-' and '/'. All other characters keep their
// order. The same transformation is applied at ingestion time and at query
// time; equality filtering depends on both sides using this exact function.
// It is idempotent.
func NormalizeNumber(s string) string {
	return numberSeparators.Replace(s)
}
