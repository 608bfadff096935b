// Package model defines the persistent data shapes shared across the
// indexer: tickers, deploys, balances, the operation log, supply state, and
// processed-block bookkeeping. These are plain data types; behavior lives
// in the packages that operate on them (validator, opi, commit, ...).
package model

// Ticker is the normalized (uppercased) form of a token identifier.
// Normalization and syntax checks live in package validator; this type is
// just the storage key.
type Ticker string

// Op is the canonical set of built-in operation tags. OPI processors may
// register additional tags at runtime (see package opi); those are not
// enumerated here.
type Op string

const (
	OpDeploy   Op = "deploy"
	OpMint     Op = "mint"
	OpTransfer Op = "transfer"
	OpNoReturn Op = "no-return"
)

// Deploy is the one-per-ticker deploy record (spec.md §3).
type Deploy struct {
	Ticker            Ticker
	MaxSupply         uint64
	LimitPerMint      uint64 // enforced only when HasLimitPerMint is set
	HasLimitPerMint   bool
	Decimals          uint8
	SelfMintEnabled   bool
	DeployerAddress   string
	DeployTxID        string
	DeployBlockHeight uint64
	DeployTxIndex     int
	Timestamp         int64
	LegacyValidated   bool
	LegacySnapshot    []byte // opaque, oracle-defined
}

// Balance is keyed by (Address, Ticker) in the store; this struct is the
// value side only.
type Balance struct {
	Address string
	Ticker  Ticker
	Amount  uint64
}

// OperationLogEntry is one append-only row in the operation log.
type OperationLogEntry struct {
	ID            uint64 // monotonic, assigned at commit time
	Txid          string
	Op            Op
	Ticker        Ticker
	HasAmount     bool
	Amount        uint64
	BlockHeight   uint64
	BlockHash     string
	TxIndex       int
	SubIndex      int
	FromAddress   string
	ToAddress     string
	Valid         bool
	ErrorCode     string // empty when Valid
	Timestamp     int64
	RawPayload    []byte
}

// SupplyField selects which bucket of a ticker's supply a delta applies to.
type SupplyField string

const (
	SupplyUniversal SupplyField = "universal"
	SupplyLegacy    SupplyField = "legacy"
	SupplyBurned    SupplyField = "burned"
)

// SupplyState is the per-ticker supply decomposition (spec.md §3).
type SupplyState struct {
	Ticker          Ticker
	UniversalMinted uint64
	LegacyMinted    uint64
	Burned          uint64
}

// Total returns universal + legacy minted, excluding burns.
func (s SupplyState) Total() uint64 {
	return s.UniversalMinted + s.LegacyMinted
}

// Remaining computes max_supply - total - burned for the given deploy. It
// does not clamp at zero: a negative result signals a caller invariant
// violation and must be rejected before it is ever produced.
func (s SupplyState) Remaining(maxSupply uint64) int64 {
	return int64(maxSupply) - int64(s.Total()) - int64(s.Burned)
}

// ProcessedBlock records a committed block and the blob needed to invert it
// during a reorg (spec.md §3, §4.10).
type ProcessedBlock struct {
	Height         uint64
	Hash           string
	PrevHash       string
	CommitPlanBlob []byte
	CommitChecksum [32]byte
	CommittedAt    int64
}

// LegacyTokenRecord is the denormalized cache of an external
// inscription-based deploy, as returned by legacyoracle.Oracle.
type LegacyTokenRecord struct {
	Ticker             Ticker
	MaxSupply          uint64
	Decimals           uint8
	LimitPerMint       uint64
	HasLimitPerMint    bool
	DeployInscriptionID string
	DeployBlockHeight  uint64
	DeployerAddress    string
	LastVerifiedAt     int64
}

// LegacyTransferEvent represents an inscription-based transfer credited in
// a given transaction, as returned by legacyoracle.Oracle.
type LegacyTransferEvent struct {
	Ticker          Ticker
	Amount          uint64
	SenderAddress   string
	InscriptionID   string
}
