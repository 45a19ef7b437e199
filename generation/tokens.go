package generation

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know.
const fallbackEncoding = "cl100k_base"

// TokenCounter returns the number of tokens in text.
type TokenCounter func(text string) int

// NewTokenCounter returns a tiktoken based counter for model.
func NewTokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load token encoding: %w", err)
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}
