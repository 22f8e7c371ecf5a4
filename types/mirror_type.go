package types

// Rows below live in the ledger mirror database maintained by the host
// chain's observer plugin; this service only ever reads them.

type MirrorAccount struct {
	Name         string `gorm:"primary_key"`
	Balance      uint64
	LastVoteTime int64
}

func (MirrorAccount) TableName() string { return "accounts" }

type MirrorVestingBalance struct {
	BalanceId string `gorm:"primary_key"`
	Owner     string
	Amount    uint64
	IsGpos    bool
}

func (MirrorVestingBalance) TableName() string { return "vesting_balances" }

type MirrorVoteEdge struct {
	VoteId string `gorm:"primary_key"`
	Voter  string
	Target string
	Kind   int
}

func (MirrorVoteEdge) TableName() string { return "vote_edges" }

type MirrorDividendAsset struct {
	AssetId             string `gorm:"primary_key"`
	Symbol              string
	DistributionAccount string
	PayoutInterval      int64
	NextPayoutTime      int64
}

func (MirrorDividendAsset) TableName() string { return "dividend_assets" }

type MirrorTransfer struct {
	TrxId    string `gorm:"primary_key"`
	Sender   string
	Receiver string
	Amount   uint64
	Memo     string
	BlockNum uint64
	Final    bool
}

func (MirrorTransfer) TableName() string { return "transfers" }

// LedgerStatus is the mirror's head progression marker; a stalled head means
// the mirror node fell behind and the service should switch to another one.
type LedgerStatus struct {
	HeadBlockNum  uint64
	HeadBlockTime int64
}

func (LedgerStatus) TableName() string { return "ledger_status" }
