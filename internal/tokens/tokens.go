// Package tokens estimates prompt sizes with tiktoken. Estimates feed the
// batch header line only; the authoritative counts come from the service's
// usage report.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

type tokenizerEntry struct {
	tkm *tiktoken.Tiktoken
	err error
}

var (
	tokenizerCache   = make(map[string]tokenizerEntry)
	tokenizerCacheMu sync.RWMutex
)

// tokenizerFor returns a cached tiktoken encoder for the given model,
// falling back to cl100k_base for models tiktoken does not know. Failures
// are cached too: tiktoken fetches encoding data on first use, and an
// offline environment should pay for that attempt once, not per call.
func tokenizerFor(model string) (*tiktoken.Tiktoken, error) {
	tokenizerCacheMu.RLock()
	if e, ok := tokenizerCache[model]; ok {
		tokenizerCacheMu.RUnlock()
		return e.tkm, e.err
	}
	tokenizerCacheMu.RUnlock()

	tokenizerCacheMu.Lock()
	defer tokenizerCacheMu.Unlock()

	if e, ok := tokenizerCache[model]; ok {
		return e.tkm, e.err
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		tokenizerCache[model] = tokenizerEntry{err: err}
		return nil, err
	}

	tokenizerCache[model] = tokenizerEntry{tkm: tkm}
	return tkm, nil
}

// Estimate counts the tokens in text for the given model.
func Estimate(text, model string) (int, error) {
	tkm, err := tokenizerFor(model)
	if err != nil {
		return 0, err
	}
	return len(tkm.Encode(text, nil, nil)), nil
}
