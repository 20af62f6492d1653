package reduce

import (
	"errors"
	"fmt"
)

// ErrUnsupportedInput flags inputs outside the pipeline's contract, such as
// a subword overlapping more than two words or an expansion pattern buried
// inside a longer token. These cases are rejected rather than guessed at.
var ErrUnsupportedInput = errors.New("unsupported input")

// AlignmentError reports that the subword character stream could not be
// reconciled with the original word characters after applying the known
// substitutions. Fatal for the sentence; never silently mis-align.
type AlignmentError struct {
	TokenStream string
	WordStream  string
}

func (e *AlignmentError) Error() string {
	// Point at the first divergence to keep the diagnostic readable.
	tr := []rune(e.TokenStream)
	wr := []rune(e.WordStream)
	at := len(tr)
	if len(wr) < at {
		at = len(wr)
	}
	for i := 0; i < at; i++ {
		if tr[i] != wr[i] {
			at = i
			break
		}
	}
	return fmt.Sprintf("subword stream diverges from word stream at rune %d: tokens %q vs words %q", at, e.TokenStream, e.WordStream)
}

// RenormalizationError reports a probability row whose retained mass is zero
// after dropping unmapped classes. Renormalizing such a row would divide by
// zero.
type RenormalizationError struct {
	Row int
}

func (e *RenormalizationError) Error() string {
	return fmt.Sprintf("row %d has zero retained probability mass after dropping unmapped classes", e.Row)
}
