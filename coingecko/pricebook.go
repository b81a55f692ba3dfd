package coingecko

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
)

// PriceBook holds the latest known USD quote per coin ID. It is safe
// for one refresher goroutine and many concurrent readers.
type PriceBook struct {
	mu      sync.RWMutex
	prices  map[string]coinflip.Money
	updated time.Time
}

// NewPriceBook returns an empty book.
func NewPriceBook() *PriceBook {
	return &PriceBook{prices: make(map[string]coinflip.Money)}
}

// Set merges quotes into the book and stamps the update time.
// Coins absent from the batch keep their previous quote.
func (b *PriceBook) Set(prices map[string]coinflip.Money) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, p := range prices {
		b.prices[id] = p
	}
	b.updated = time.Now()
}

// Lookup returns the latest quote for a coin. It satisfies
// coinflip.PriceLookup.
func (b *PriceBook) Lookup(coinID string) (coinflip.Money, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.prices[coinID]
	return p, ok
}

// UpdatedAt returns when the book last absorbed a batch of quotes,
// zero if never.
func (b *PriceBook) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updated
}

// Len returns the number of quoted coins.
func (b *PriceBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.prices)
}

// priceBookFile is the on-disk form of a book.
type priceBookFile struct {
	Updated time.Time                 `json:"updated"`
	Prices  map[string]coinflip.Money `json:"prices"`
}

// EncodePriceBook writes the book as a single JSON object.
func EncodePriceBook(w io.Writer, b *PriceBook) error {
	b.mu.RLock()
	file := priceBookFile{Updated: b.updated, Prices: make(map[string]coinflip.Money, len(b.prices))}
	for id, p := range b.prices {
		file.Prices[id] = p
	}
	b.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// DecodePriceBook reads a book previously written by EncodePriceBook.
func DecodePriceBook(r io.Reader) (*PriceBook, error) {
	var file priceBookFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid price book: %w", err)
	}
	b := NewPriceBook()
	if file.Prices != nil {
		b.prices = file.Prices
	}
	b.updated = file.Updated
	return b, nil
}

// SavePriceBook atomically writes the book to a file.
func SavePriceBook(filename string, b *PriceBook) error {
	tmp := filename + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := EncodePriceBook(f, b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filename)
}

// LoadPriceBook reads a book from a file.
func LoadPriceBook(filename string) (*PriceBook, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePriceBook(f)
}
