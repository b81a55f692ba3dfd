package coinflip

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// The ledger is persisted as JSONL: one human-readable, git-friendly
// line per record. The first line is an "init" record carrying the user
// id and starting balance; every following line is one transaction in
// chronological order. Loading a ledger replays the log, which both
// restores the exact state and audits it on the way in.

const cmdInit = "init"

// initRecord is the ledger file header.
type initRecord struct {
	User            string `json:"user"`
	StartingBalance Money  `json:"starting_balance"`
}

func (r initRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", cmdInit)
	w.Append("user", r.User)
	w.Append("starting_balance", r.StartingBalance)
	return w.MarshalJSON()
}

// EncodeTransaction marshals a single transaction to JSON and writes it
// to the writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	jsonData, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger persists a portfolio to an io.Writer in JSONL format: the
// init header first, then every transaction in chronological order.
func EncodeLedger(w io.Writer, p *Portfolio) error {
	snap := p.Snapshot()

	header, err := json.Marshal(initRecord{User: snap.UserID, StartingBalance: snap.StartingBalance})
	if err != nil {
		return fmt.Errorf("failed to marshal ledger header: %w", err)
	}
	if _, err := w.Write(append(header, '\n')); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}

	for _, tx := range snap.Transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeLedger reads a JSONL ledger stream and rebuilds the portfolio by
// replaying its transaction log from the starting balance.
func DecodeLedger(r io.Reader) (*Portfolio, error) {
	scanner := bufio.NewScanner(r)

	var header *initRecord
	var log []Transaction

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		switch identifier.Command {
		case cmdInit:
			if header != nil {
				return nil, fmt.Errorf("duplicate init record in ledger")
			}
			var rec initRecord
			if err := json.Unmarshal(lineBytes, &rec); err != nil {
				return nil, fmt.Errorf("invalid init record %q: %w", string(lineBytes), err)
			}
			header = &rec
		case string(SideBuy), string(SideSell):
			var tx Transaction
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("invalid transaction %q: %w", string(lineBytes), err)
			}
			log = append(log, tx)
		default:
			return nil, fmt.Errorf("unknown ledger command: %q", identifier.Command)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("ledger has no init record")
	}

	return Replay(header.User, header.StartingBalance, log)
}

// SaveLedger writes the portfolio's ledger file atomically: the new
// content replaces the old only after it was fully written.
func SaveLedger(filename string, p *Portfolio) error {
	tmp := filename + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("cannot create ledger file %q: %w", tmp, err)
	}
	if err := EncodeLedger(f, p); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot close ledger file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("cannot replace ledger file %q: %w", filename, err)
	}
	return nil
}

// LoadLedger reads and replays a ledger file. A missing file surfaces as
// an fs.ErrNotExist so callers can decide to start fresh.
func LoadLedger(filename string) (*Portfolio, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger file %q: %w", filename, err)
	}
	defer f.Close()
	p, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode ledger file %q: %w", filename, err)
	}
	return p, nil
}
