// Package coinflip implements the portfolio ledger of a virtual
// cryptocurrency trading simulator. It tracks a user's simulated cash
// balance, per-coin holdings with weighted-average cost basis, and an
// append-only transaction history.
//
// The core functionalities include:
//   - Ledger Management: executing buy and sell orders against live coin
//     prices while preserving the ledger invariants (non-negative cash,
//     non-negative holdings, cash conservation).
//   - Valuation: a stateless calculator that derives holdings value, cost
//     basis, unrealized gains and net worth from a portfolio snapshot and
//     an externally supplied price lookup.
//   - Data Persistence: encoding and decoding the ledger to and from a
//     human-readable, version-controllable JSONL format; a persisted
//     ledger is restored by replaying its transaction log.
//
// All monetary amounts and coin quantities are exact decimals; the ledger
// never performs floating-point arithmetic on its own state. This package
// serves as the single source of truth for the `cfs` command-line tool
// and the HTTP API in the server package.
package coinflip
