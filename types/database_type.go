package types

const (
	ProcessingStatusDefault = 0   //payout computed, transfer not yet confirmed
	ProcessingStatusSuccess = 1   //transfer confirmed on the ledger
	ProcessingStatusFail    = 2   //transfer rejected by the ledger
	ProcessingStatusNotNeedTransfer = 3 //not need to transfer(share amount floored to 0)

	TargetKindWitness   = 0
	TargetKindCommittee = 1
	TargetKindWorker    = 2
)

// ChainParams is the single persisted row holding the GPOS window. Mutated
// in place by governance parameter updates and by window rollover.
type ChainParams struct {
	Id  int  `gorm:"primary_key"`
	PeriodStart int64      `gorm:"not null"`
	VestingPeriod int64    `gorm:"not null"`
	VestingSubperiod int64 `gorm:"not null"`
}

// AccountInfo mirrors one ledger account. LastVoteTime is 0 until the
// account casts its first vote.
type AccountInfo struct {
	AccountId   string       `gorm:"primary_key"`
	Time     int64           `gorm:"not null"`
	Name  string             `gorm:"not null"`
	Balance uint64			 `gorm:"not null"`
	LastVoteTime int64		 `gorm:"not null"`
}

// VestingBalance mirrors one vesting balance row; only rows flagged IsGpos
// count toward governance weight and dividend shares.
type VestingBalance struct {
	BalanceId string  `gorm:"primary_key"`
	AccountId string  `gorm:"not null;index"`
	Amount    uint64  `gorm:"not null"`
	IsGpos    bool    `gorm:"not null"`
	Time      int64   `gorm:"not null"`
}

// VoteEdgeRecord mirrors one live voter-to-target vote relation.
type VoteEdgeRecord struct {
	VoteId   string  `gorm:"primary_key"`
	Voter    string  `gorm:"not null;index"`
	Target   string  `gorm:"not null"`
	Kind     int     `gorm:"not null"`
	Time     int64   `gorm:"not null"`
}

// TallyRecord is one target's freshly recomputed vote total. The whole table
// is replaced every maintenance tick.
type TallyRecord struct {
	TallyId string  `gorm:"primary_key"`
	Target  string  `gorm:"not null"`
	Kind    int     `gorm:"not null"`
	TotalVotes uint64 `gorm:"not null"`
	TickTime int64  `gorm:"not null"`
}

// DividendAsset is the payout schedule of one dividend-enabled asset.
// MirrorNextPayoutTime remembers the schedule last seen on the ledger, so a
// governance reschedule can be told apart from our own post-payout advance.
type DividendAsset struct {
	AssetId string  `gorm:"primary_key"`
	Symbol  string  `gorm:"not null"`
	DistributionAccount string `gorm:"not null"`
	PayoutInterval int64 `gorm:"not null"`
	NextPayoutTime int64 `gorm:"not null"`
	MirrorNextPayoutTime int64 `gorm:"not null"`
}

// PayoutRecord is one computed dividend transfer together with the inputs it
// was derived from, so a payout can be audited and confirmed later.
type PayoutRecord struct {
	Id  string  `gorm:"primary_key"`
	Period uint64
	AssetId string  `gorm:"not null"`
	Symbol  string  `gorm:"not null"`
	Account string  `gorm:"not null"`
	Amount  uint64  `gorm:"not null"`
	WeightedStake uint64 `gorm:"not null"`
	TotalWeight string   `gorm:"not null"`
	Pool    uint64  `gorm:"not null"`
	TransferHash string `gorm:"not null"`
	Time   int64   `gorm:"not null"`
	Status  int    `gorm:"not null"`
}
