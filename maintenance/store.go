package maintenance

import (
	"gpos_engine/db"
	"gpos_engine/gpos"
	"gpos_engine/types"
)

// Store is the slice of persistence the maintenance tick runs against. The
// service db implements it; tests use an in-memory fake.
type Store interface {
	ChainParams() (*types.ChainParams, error)
	SavePeriodStart(start int64) error
	StakeStates() (map[string]gpos.StakeState, error)
	VoteEdges() ([]gpos.VoteEdge, error)
	ReplaceTally(recs []*types.TallyRecord) error
	DividendAssets() ([]*types.DividendAsset, error)
	AccountBalance(name string) (uint64, error)
	GposHolders() ([]gpos.Holder, error)
	ExecutePayout(asset *types.DividendAsset, recs []*types.PayoutRecord, distributed uint64, nextPayout int64) error
	AdvanceSchedule(assetId string, next int64) error
}

type dbStore struct{}

// NewDbStore returns the Store backed by the service database.
func NewDbStore() Store {
	return dbStore{}
}

func (dbStore) ChainParams() (*types.ChainParams, error) { return db.GetChainParams() }

func (dbStore) SavePeriodStart(start int64) error { return db.SavePeriodStart(start) }

func (dbStore) StakeStates() (map[string]gpos.StakeState, error) { return db.GetStakeStates() }

func (dbStore) VoteEdges() ([]gpos.VoteEdge, error) { return db.GetVoteEdges() }

func (dbStore) ReplaceTally(recs []*types.TallyRecord) error { return db.ReplaceTallyRecords(recs) }

func (dbStore) DividendAssets() ([]*types.DividendAsset, error) { return db.GetDividendAssets() }

func (dbStore) AccountBalance(name string) (uint64, error) { return db.GetAccountBalance(name) }

func (dbStore) GposHolders() ([]gpos.Holder, error) { return db.GetGposHolders() }

func (dbStore) ExecutePayout(asset *types.DividendAsset, recs []*types.PayoutRecord, distributed uint64, nextPayout int64) error {
	return db.ExecutePayout(asset, recs, distributed, nextPayout)
}

func (dbStore) AdvanceSchedule(assetId string, next int64) error {
	return db.UpdateNextPayoutTime(assetId, next)
}
