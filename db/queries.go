package db

import (
	"errors"
	"fmt"
	"time"

	"gpos_engine/gpos"
	"gpos_engine/logs"
	"gpos_engine/types"

	"github.com/jinzhu/gorm"
)

// ErrInsufficientPool marks the internal-consistency violation of a payout
// exceeding the distribution account's balance at transfer time. It is fatal
// to the tick, never swallowed.
var ErrInsufficientPool = errors.New("distribution account balance below computed payout")

//
// window parameters
//

func GetChainParams() (*types.ChainParams, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetChainParams: fail to get db, the error is %v", err)
		return nil, err
	}
	var params types.ChainParams
	err = db.Take(&params, "id = ?", 1).Error
	if err != nil {
		log.Errorf("GetChainParams: fail to get window params, the error is %v", err)
		return nil, err
	}
	return &params, nil
}

func SavePeriodStart(start int64) error {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("SavePeriodStart: fail to get db, the error is %v", err)
		return err
	}
	err = db.Model(&types.ChainParams{}).Where("id = ?", 1).Update("period_start", start).Error
	if err != nil {
		log.Errorf("SavePeriodStart: fail to persist period start %v, the error is %v", start, err)
	}
	return err
}

//
// tick inputs
//

// GetStakeStates builds the voter lookup consumed by the tally: every
// account's last vote time plus its summed GPOS vesting balance.
func GetStakeStates() (map[string]gpos.StakeState, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetStakeStates: fail to get db, the error is %v", err)
		return nil, err
	}
	var accounts []*types.AccountInfo
	if err = db.Find(&accounts).Error; err != nil {
		log.Errorf("GetStakeStates: fail to get accounts, the error is %v", err)
		return nil, err
	}
	totals,err := gposBalanceTotals(db)
	if err != nil {
		return nil, err
	}
	states := make(map[string]gpos.StakeState, len(accounts))
	for _,acct := range accounts {
		states[acct.Name] = gpos.StakeState{
			LastVoteTime: acct.LastVoteTime,
			GposBalance: totals[acct.Name],
		}
	}
	return states, nil
}

// GetGposHolders lists every account holding a nonzero GPOS vesting balance,
// the qualifying population of a dividend payout.
func GetGposHolders() ([]gpos.Holder, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetGposHolders: fail to get db, the error is %v", err)
		return nil, err
	}
	totals,err := gposBalanceTotals(db)
	if err != nil {
		return nil, err
	}
	var holders []gpos.Holder
	for owner,total := range totals {
		if total == 0 {
			continue
		}
		var acct types.AccountInfo
		err = db.Take(&acct, "name = ?", owner).Error
		if err != nil {
			if gorm.IsRecordNotFoundError(err) {
				// balance row outlived its account, it weighs nothing
				log.Warnf("GetGposHolders: vesting balance owner %v has no account row, skip", owner)
				continue
			}
			log.Errorf("GetGposHolders: fail to get account %v, the error is %v", owner, err)
			return nil, err
		}
		holders = append(holders, gpos.Holder{
			AccountID: acct.Name,
			LastVoteTime: acct.LastVoteTime,
			GposBalance: total,
		})
	}
	return holders, nil
}

func gposBalanceTotals(db *gorm.DB) (map[string]uint64, error) {
	log := logs.GetLogger()
	rows,err := db.Table("vesting_balances").
		Select("account_id, sum(amount) as total").
		Where("is_gpos = ?", true).
		Group("account_id").Rows()
	if err != nil {
		log.Errorf("gposBalanceTotals: fail to sum gpos balances, the error is %v", err)
		return nil, err
	}
	defer rows.Close()
	totals := make(map[string]uint64)
	for rows.Next() {
		var (
			owner string
			total uint64
		)
		if err = rows.Scan(&owner, &total); err != nil {
			log.Errorf("gposBalanceTotals: fail to scan gpos balance row, the error is %v", err)
			return nil, err
		}
		totals[owner] = total
	}
	return totals, nil
}

func GetVoteEdges() ([]gpos.VoteEdge, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetVoteEdges: fail to get db, the error is %v", err)
		return nil, err
	}
	var recs []*types.VoteEdgeRecord
	if err = db.Find(&recs).Error; err != nil {
		log.Errorf("GetVoteEdges: fail to get vote edges, the error is %v", err)
		return nil, err
	}
	edges := make([]gpos.VoteEdge, 0, len(recs))
	for _,rec := range recs {
		edges = append(edges, gpos.VoteEdge{
			Voter: rec.Voter,
			Target: rec.Target,
			Kind: gpos.TargetKind(rec.Kind),
		})
	}
	return edges, nil
}

func GetDividendAssets() ([]*types.DividendAsset, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetDividendAssets: fail to get db, the error is %v", err)
		return nil, err
	}
	var assets []*types.DividendAsset
	err = db.Order("asset_id ASC").Find(&assets).Error
	if err != nil {
		log.Errorf("GetDividendAssets: fail to get dividend assets, the error is %v", err)
		return nil, err
	}
	return assets, nil
}

func GetAccountBalance(name string) (uint64, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetAccountBalance: fail to get db, the error is %v", err)
		return 0, err
	}
	var acct types.AccountInfo
	err = db.Take(&acct, "name = ?", name).Error
	if err != nil {
		log.Errorf("GetAccountBalance: fail to get account %v, the error is %v", name, err)
		return 0, err
	}
	return acct.Balance, nil
}

//
// tick outputs
//

// ReplaceTallyRecords drops every prior total and writes the fresh tally in
// one transaction; totals are never merged across ticks.
func ReplaceTallyRecords(recs []*types.TallyRecord) error {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("ReplaceTallyRecords: fail to get db, the error is %v", err)
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err = tx.Delete(&types.TallyRecord{}).Error; err != nil {
		tx.Rollback()
		log.Errorf("ReplaceTallyRecords: fail to clear prior tally, the error is %v", err)
		return err
	}
	for _,rec := range recs {
		if err = tx.Create(rec).Error; err != nil {
			tx.Rollback()
			log.Errorf("ReplaceTallyRecords: fail to insert tally record of %v, the error is %v", rec.Target, err)
			return err
		}
	}
	return tx.Commit().Error
}

// ExecutePayout applies one asset's dividend distribution atomically: debit
// the distribution account, credit every share, insert the payout records
// and advance the schedule. A shortfall against the computed total rolls the
// whole tick back via ErrInsufficientPool.
func ExecutePayout(asset *types.DividendAsset, recs []*types.PayoutRecord, distributed uint64, nextPayout int64) error {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("ExecutePayout: fail to get db, the error is %v", err)
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	var distAcct types.AccountInfo
	err = tx.Take(&distAcct, "name = ?", asset.DistributionAccount).Error
	if err != nil {
		tx.Rollback()
		log.Errorf("ExecutePayout: fail to get distribution account %v, the error is %v", asset.DistributionAccount, err)
		return err
	}
	if distAcct.Balance < distributed {
		tx.Rollback()
		log.Errorf("ExecutePayout: distribution account %v holds %v but payout needs %v", asset.DistributionAccount, distAcct.Balance, distributed)
		return ErrInsufficientPool
	}
	err = tx.Model(&types.AccountInfo{}).Where("name = ?", asset.DistributionAccount).
		Update("balance", distAcct.Balance-distributed).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	for _,rec := range recs {
		if rec.Amount > 0 {
			var recv types.AccountInfo
			if err = tx.Take(&recv, "name = ?", rec.Account).Error; err != nil {
				tx.Rollback()
				log.Errorf("ExecutePayout: fail to get receiver %v, the error is %v", rec.Account, err)
				return err
			}
			err = tx.Model(&types.AccountInfo{}).Where("name = ?", rec.Account).
				Update("balance", recv.Balance+rec.Amount).Error
			if err != nil {
				tx.Rollback()
				return err
			}
		}
		if err = tx.Create(rec).Error; err != nil {
			tx.Rollback()
			log.Errorf("ExecutePayout: fail to insert payout record for %v, the error is %v", rec.Account, err)
			return err
		}
	}
	err = tx.Model(&types.DividendAsset{}).Where("asset_id = ?", asset.AssetId).
		Update("next_payout_time", nextPayout).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// UpdateNextPayoutTime advances the schedule when a firing distributed
// nothing (zero pool or zero total weight).
func UpdateNextPayoutTime(assetId string, next int64) error {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("UpdateNextPayoutTime: fail to get db, the error is %v", err)
		return err
	}
	return db.Model(&types.DividendAsset{}).Where("asset_id = ?", assetId).
		Update("next_payout_time", next).Error
}

//
// payout record maintenance
//

func GetAllNotSuccessPayoutRecords() ([]*types.PayoutRecord, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetAllNotSuccessPayoutRecords: fail to get db, the error is %v \n", err)
		return nil,err
	}
	var recs []*types.PayoutRecord
	err = db.Find(&recs, "status = ? and transfer_hash != ?", types.ProcessingStatusDefault, "").Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		log.Errorf("GetAllNotSuccessPayoutRecords: fail to query fields, the error is %v", err)
		return nil, err
	}
	return recs,nil
}

func MdPayoutProcessStatus(id string, status int) error {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("MdPayoutProcessStatus: fail to get db, the error is %v", err)
		return err
	}
	return db.Model(&types.PayoutRecord{}).Where("id = ?", id).Update("status", status).Error
}

//
// web api queries
//

func GetAccountStakeInfo(name string) (*types.AccountInfo, uint64, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetAccountStakeInfo: fail to get db, the error is %v", err)
		return nil, 0, err
	}
	var acct types.AccountInfo
	if err = db.Take(&acct, "name = ?", name).Error; err != nil {
		log.Errorf("GetAccountStakeInfo: fail to get account %v, the error is %v", name, err)
		return nil, 0, err
	}
	var total struct{ Total uint64 }
	err = db.Table("vesting_balances").Select("coalesce(sum(amount),0) as total").
		Where("is_gpos = ? AND account_id = ?", true, name).Scan(&total).Error
	if err != nil {
		log.Errorf("GetAccountStakeInfo: fail to sum gpos balance of %v, the error is %v", name, err)
		return nil, 0, err
	}
	return &acct, total.Total, nil
}

func GetTallyRecords(kind int) ([]*types.TallyRecord, error) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetTallyRecords: fail to get db, the error is %v", err)
		return nil, err
	}
	var recs []*types.TallyRecord
	query := db.Order("total_votes DESC")
	if kind >= 0 {
		query = query.Where("kind = ?", kind)
	}
	if err = query.Find(&recs).Error; err != nil {
		log.Errorf("GetTallyRecords: fail to get tally records, the error is %v", err)
		return nil, err
	}
	return recs, nil
}

func GetAccountPayoutHistory(acctName string, pageIndex int, pageSize int) ([]*types.PayoutRecord, error, int) {
	log := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		log.Errorf("GetAccountPayoutHistory: fail to get db, the error is %v", err)
		return nil, err, types.StatusGetDbError
	}
	if pageIndex < 1 {
		pageIndex = types.DefaultPageIndex
	}
	if pageSize < 1 {
		pageSize = types.DefaultPageSize
	}
	var recs []*types.PayoutRecord
	err = db.Where("account = ?", acctName).Order("time DESC").
		Offset((pageIndex-1)*pageSize).Limit(pageSize).Find(&recs).Error
	if err != nil {
		log.Errorf("GetAccountPayoutHistory: fail to get payout history of %v, the error is %v", acctName, err)
		return nil, err, types.StatusDbQueryError
	}
	return recs, nil, types.StatusSuccess
}

//
// ledger mirror reads
//

func GetMirrorAccounts(t time.Time) ([]*types.AccountInfo, error) {
	logger := logs.GetLogger()
	db,err := getMirrorDb()
	if err != nil {
		logger.Errorf("GetMirrorAccounts: fail to get mirror db, the error is %v", err)
		return nil, err
	}
	var (
		mirrored []*types.MirrorAccount
		list []*types.AccountInfo
	)
	err = db.Order("name ASC").Find(&mirrored).Error
	if err != nil {
		logger.Errorf("GetMirrorAccounts: fail to get accounts, the error is %v", err)
		return nil, err
	}
	for _,m := range mirrored {
		list = append(list, &types.AccountInfo{
			AccountId: m.Name,
			Name: m.Name,
			Balance: m.Balance,
			LastVoteTime: m.LastVoteTime,
			Time: t.Unix(),
		})
	}
	return list,nil
}

func GetMirrorVestingBalances(t time.Time) ([]*types.VestingBalance, error) {
	logger := logs.GetLogger()
	db,err := getMirrorDb()
	if err != nil {
		logger.Errorf("GetMirrorVestingBalances: fail to get mirror db, the error is %v", err)
		return nil, err
	}
	var (
		mirrored []*types.MirrorVestingBalance
		list []*types.VestingBalance
	)
	err = db.Order("balance_id ASC").Find(&mirrored).Error
	if err != nil {
		logger.Errorf("GetMirrorVestingBalances: fail to get vesting balances, the error is %v", err)
		return nil, err
	}
	for _,m := range mirrored {
		list = append(list, &types.VestingBalance{
			BalanceId: m.BalanceId,
			AccountId: m.Owner,
			Amount: m.Amount,
			IsGpos: m.IsGpos,
			Time: t.Unix(),
		})
	}
	return list,nil
}

func GetMirrorVoteEdges(t time.Time) ([]*types.VoteEdgeRecord, error) {
	logger := logs.GetLogger()
	db,err := getMirrorDb()
	if err != nil {
		logger.Errorf("GetMirrorVoteEdges: fail to get mirror db, the error is %v", err)
		return nil, err
	}
	var (
		mirrored []*types.MirrorVoteEdge
		list []*types.VoteEdgeRecord
	)
	err = db.Order("vote_id ASC").Find(&mirrored).Error
	if err != nil {
		logger.Errorf("GetMirrorVoteEdges: fail to get vote edges, the error is %v", err)
		return nil, err
	}
	for _,m := range mirrored {
		list = append(list, &types.VoteEdgeRecord{
			VoteId: m.VoteId,
			Voter: m.Voter,
			Target: m.Target,
			Kind: m.Kind,
			Time: t.Unix(),
		})
	}
	return list,nil
}

func GetMirrorDividendAssets() ([]*types.MirrorDividendAsset, error) {
	logger := logs.GetLogger()
	db,err := getMirrorDb()
	if err != nil {
		logger.Errorf("GetMirrorDividendAssets: fail to get mirror db, the error is %v", err)
		return nil, err
	}
	var mirrored []*types.MirrorDividendAsset
	err = db.Order("asset_id ASC").Find(&mirrored).Error
	if err != nil {
		logger.Errorf("GetMirrorDividendAssets: fail to get dividend assets, the error is %v", err)
		return nil, err
	}
	return mirrored,nil
}

// CheckPayoutTransferIsFinal looks the payout's transfer up in the mirror's
// transfer log and reports whether the host applied it irreversibly.
func CheckPayoutTransferIsFinal(txHash string) (bool,error) {
	logger := logs.GetLogger()
	db,err := getMirrorDb()
	if err != nil {
		logger.Errorf("CheckPayoutTransferIsFinal: fail to get mirror db, the error is %v", err)
		return false, err
	}
	var transfer types.MirrorTransfer
	err = db.Take(&transfer, "trx_id = ?", txHash).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return false, nil
		}
		logger.Errorf("CheckPayoutTransferIsFinal: fail to get transfer %v, the error is %v", txHash, err)
		return false, err
	}
	return transfer.Final, nil
}

//
// snapshot refresh writes
//

// BatchReplaceAccountInfo refreshes the mirrored account rows consumed by the
// snapshot service. REPLACE keeps reruns idempotent.
func BatchReplaceAccountInfo(list []*types.AccountInfo) error {
	logger := logs.GetLogger()
	length := len(list)
	if length < 1 {
		return errors.New("can't insert empty account info list")
	}
	db,err := getServiceDB()
	if err != nil {
		logger.Errorf("BatchReplaceAccountInfo: fail to get db,the error is %v", err)
		return err
	}
	sql := "REPLACE INTO account_infos (account_id, time, name, balance, last_vote_time) VALUES"
	for i,info := range list {
		if i + 1 == length {
			sql += fmt.Sprintf("('%s',%v,'%s',%v,%v);", info.AccountId, info.Time, info.Name, info.Balance, info.LastVoteTime)
		} else {
			sql += fmt.Sprintf("('%s',%v,'%s',%v,%v),", info.AccountId, info.Time, info.Name, info.Balance, info.LastVoteTime)
		}
	}
	_,err = db.DB().Exec(sql)
	if err != nil {
		logger.Errorf("BatchReplaceAccountInfo: fail to batch replace accounts, the error is %v", err)
	}
	return err
}

func BatchReplaceVestingBalances(list []*types.VestingBalance) error {
	logger := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		logger.Errorf("BatchReplaceVestingBalances: fail to get db,the error is %v", err)
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	// withdrawals delete rows on chain, a pure upsert would keep them forever;
	// an empty mirror set means every balance was withdrawn, so clear and stop
	if err = tx.Delete(&types.VestingBalance{}).Error; err != nil {
		tx.Rollback()
		logger.Errorf("BatchReplaceVestingBalances: fail to clear balances, the error is %v", err)
		return err
	}
	length := len(list)
	if length > 0 {
		sql := "INSERT INTO vesting_balances (balance_id, account_id, amount, is_gpos, time) VALUES"
		for i,b := range list {
			gposFlag := 0
			if b.IsGpos {
				gposFlag = 1
			}
			if i + 1 == length {
				sql += fmt.Sprintf("('%s','%s',%v,%v,%v);", b.BalanceId, b.AccountId, b.Amount, gposFlag, b.Time)
			} else {
				sql += fmt.Sprintf("('%s','%s',%v,%v,%v),", b.BalanceId, b.AccountId, b.Amount, gposFlag, b.Time)
			}
		}
		if err = tx.Exec(sql).Error; err != nil {
			tx.Rollback()
			logger.Errorf("BatchReplaceVestingBalances: fail to batch insert balances, the error is %v", err)
			return err
		}
	}
	return tx.Commit().Error
}

func BatchReplaceVoteEdges(list []*types.VoteEdgeRecord) error {
	logger := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		logger.Errorf("BatchReplaceVoteEdges: fail to get db,the error is %v", err)
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	// cancelled votes vanish from the mirror, clear before reinserting
	if err = tx.Delete(&types.VoteEdgeRecord{}).Error; err != nil {
		tx.Rollback()
		logger.Errorf("BatchReplaceVoteEdges: fail to clear vote edges, the error is %v", err)
		return err
	}
	length := len(list)
	if length > 0 {
		sql := "INSERT INTO vote_edge_records (vote_id, voter, target, kind, time) VALUES"
		for i,e := range list {
			if i + 1 == length {
				sql += fmt.Sprintf("('%s','%s','%s',%v,%v);", e.VoteId, e.Voter, e.Target, e.Kind, e.Time)
			} else {
				sql += fmt.Sprintf("('%s','%s','%s',%v,%v),", e.VoteId, e.Voter, e.Target, e.Kind, e.Time)
			}
		}
		if err = tx.Exec(sql).Error; err != nil {
			tx.Rollback()
			logger.Errorf("BatchReplaceVoteEdges: fail to batch insert vote edges, the error is %v", err)
			return err
		}
	}
	return tx.Commit().Error
}

// resolveNextPayoutTime picks the schedule the next tick should honor. Any
// change in the mirror's next_payout_time, earlier or later, is a governance
// reschedule and overrides the local value; an unchanged mirror value keeps
// the locally advanced schedule.
func resolveNextPayoutTime(localNext, lastMirror, mirrorNext int64) int64 {
	if mirrorNext != lastMirror {
		return mirrorNext
	}
	return localNext
}

// UpsertDividendAssets folds mirror asset configs into the service db. The
// local advance of next_payout_time is authoritative within a payout cycle,
// but a rescheduled mirror value wins in either direction.
func UpsertDividendAssets(list []*types.MirrorDividendAsset) error {
	logger := logs.GetLogger()
	db,err := getServiceDB()
	if err != nil {
		logger.Errorf("UpsertDividendAssets: fail to get db,the error is %v", err)
		return err
	}
	for _,m := range list {
		var existing types.DividendAsset
		err = db.Take(&existing, "asset_id = ?", m.AssetId).Error
		if gorm.IsRecordNotFoundError(err) {
			asset := &types.DividendAsset{
				AssetId: m.AssetId,
				Symbol: m.Symbol,
				DistributionAccount: m.DistributionAccount,
				PayoutInterval: m.PayoutInterval,
				NextPayoutTime: m.NextPayoutTime,
				MirrorNextPayoutTime: m.NextPayoutTime,
			}
			if err = db.Create(asset).Error; err != nil {
				logger.Errorf("UpsertDividendAssets: fail to insert asset %v, the error is %v", m.AssetId, err)
				return err
			}
			continue
		}
		if err != nil {
			logger.Errorf("UpsertDividendAssets: fail to get asset %v, the error is %v", m.AssetId, err)
			return err
		}
		updates := map[string]interface{}{
			"symbol": m.Symbol,
			"distribution_account": m.DistributionAccount,
			"payout_interval": m.PayoutInterval,
			"next_payout_time": resolveNextPayoutTime(existing.NextPayoutTime, existing.MirrorNextPayoutTime, m.NextPayoutTime),
			"mirror_next_payout_time": m.NextPayoutTime,
		}
		if err = db.Model(&types.DividendAsset{}).Where("asset_id = ?", m.AssetId).Updates(updates).Error; err != nil {
			logger.Errorf("UpsertDividendAssets: fail to update asset %v, the error is %v", m.AssetId, err)
			return err
		}
	}
	return nil
}
