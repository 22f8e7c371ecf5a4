package webServer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gpos_engine/db"
	"gpos_engine/gpos"
	"gpos_engine/logs"
	"gpos_engine/types"
	"gpos_engine/utils"
)

const (
	pageSizeKey = "pageSize"
	pageIndexKey = "index"
	accountNameKey = "account"
	paramKindKey = "kind"
)

//
// get an account's current decay coefficient and weighted stake
//
func getAccountWeight(w http.ResponseWriter, r *http.Request)  {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	res := &types.AccountWeightResponse{
		Info: &types.AccountWeightInfo{},
	}

	acctName,err,code := parseParameterFromRequest(r, accountNameKey)
	if err != nil {
		res.Status = code
		res.Msg = "params account error"
		writeResponse(w, res)
		return
	}

	params,err := db.GetChainParams()
	if err != nil {
		res.Status = types.StatusGetParamsError
		res.Msg = "fail to get window params"
		writeResponse(w, res)
		return
	}
	acct,gposBalance,err := db.GetAccountStakeInfo(acctName)
	if err != nil {
		res.Status = types.StatusGetStakeError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}
	now := time.Now().Unix()
	coeff := gpos.Coefficient(now, acct.LastVoteTime, params.VestingPeriod)
	res.Status = types.StatusSuccess
	res.Info = &types.AccountWeightInfo{
		Account: acct.Name,
		LastVoteTime: utils.FormatUnixTime(acct.LastVoteTime),
		GposBalance: utils.CalcDisplayAmount(gposBalance),
		Coefficient: utils.FormatRat(coeff, 6),
		WeightedStake: strconv.FormatUint(gpos.WeightedStake(gposBalance, coeff), 10),
	}
	writeResponse(w, res)
}

//
// get last tick's tally totals, optionally filtered by target kind
//
func getTallyTotals(w http.ResponseWriter, r *http.Request)  {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	logger := logs.GetLogger()
	res := &types.TallyResponse{
		List: make([]*types.TallyInfo, 0),
	}

	kind := -1
	kindStr,err,_ := parseParameterFromRequest(r, paramKindKey)
	if err == nil {
		k,ok := parseTargetKind(kindStr)
		if !ok {
			logger.Errorf("getTallyTotals: unknown target kind %v", kindStr)
			res.Status = types.StatusParamParseError
			res.Msg = "params kind error"
			writeResponse(w, res)
			return
		}
		kind = k
	}

	recs,err := db.GetTallyRecords(kind)
	if err != nil {
		res.Status = types.StatusDbQueryError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}
	res.Status = types.StatusSuccess
	for _,rec := range recs {
		res.List = append(res.List, &types.TallyInfo{
			Target: rec.Target,
			Kind: gpos.TargetKind(rec.Kind).String(),
			TotalVotes: strconv.FormatUint(rec.TotalVotes, 10),
			TickTime: utils.FormatUnixTime(rec.TickTime),
		})
	}
	writeResponse(w, res)
}

//
// get a list of an account's dividend payout history
//
func getPayoutHistory(w http.ResponseWriter, r *http.Request)  {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	logger := logs.GetLogger()
	res := types.PayoutHistoryResponse{
		List: make([]*types.PayoutHistory,0),
	}

	acctName,err,code := parseParameterFromRequest(r, accountNameKey)
	if err != nil {
		res.Status = code
		res.Msg = "params account error"
		writeResponse(w, res)
		return
	}

	index := types.DefaultPageIndex
	pIndexStr,err,_ := parseParameterFromRequest(r, pageIndexKey)
	if err == nil {
		pIndex,err := strconv.Atoi(pIndexStr)
		if err == nil {
			index = pIndex
		} else {
			logger.Errorf("getPayoutHistory: fail to convert string %v to int", pIndexStr)
			res.Status = types.StatusParamParseError
			res.Msg = "params index error"
			writeResponse(w, res)
			return
		}
	}

	pageSize := types.DefaultPageSize
	pSize,err,_ := parseParameterFromRequest(r, pageSizeKey)
	if err == nil {
		s,err := strconv.Atoi(pSize)
		if err == nil {
			pageSize = s
		} else {
			res.Status = types.StatusParamParseError
			res.Msg = "params pageSize error"
			writeResponse(w, res)
			return
		}
	}

	list,err,code := db.GetAccountPayoutHistory(acctName, index, pageSize)
	var payoutList []*types.PayoutHistory
	if err != nil {
		res.Status = code
		res.Msg = err.Error()
	} else {
		res.Status = types.StatusSuccess
		for _,payout := range list {
			history := &types.PayoutHistory{
				Account: payout.Account,
				Asset: payout.Symbol,
				Amount: utils.CalcDisplayAmount(payout.Amount),
				Pool: utils.CalcDisplayAmount(payout.Pool),
				WeightedStake: strconv.FormatUint(payout.WeightedStake, 10),
				TotalWeight: payout.TotalWeight,
				Period: strconv.FormatUint(payout.Period, 10),
				Time: utils.FormatUnixTime(payout.Time),
			}
			payoutList = append(payoutList, history)
		}
	}

	if payoutList == nil {
		payoutList = make([]*types.PayoutHistory,0)
	}
	res.List = payoutList
	writeResponse(w, res)
}

//
// get every dividend-enabled asset's schedule and current pool
//
func getDividendSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	logger := logs.GetLogger()
	res := &types.DividendScheduleResponse{
		List: make([]*types.DividendScheduleInfo, 0),
	}
	assets,err := db.GetDividendAssets()
	if err != nil {
		res.Status = types.StatusGetAssetError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}
	res.Status = types.StatusSuccess
	for _,asset := range assets {
		pool,err := db.GetAccountBalance(asset.DistributionAccount)
		if err != nil {
			logger.Errorf("getDividendSchedule: fail to get pool of asset %v, the error is %v", asset.Symbol, err)
		}
		res.List = append(res.List, &types.DividendScheduleInfo{
			Asset: asset.AssetId,
			Symbol: asset.Symbol,
			DistributionAccount: asset.DistributionAccount,
			PoolBalance: utils.CalcDisplayAmount(pool),
			PayoutInterval: strconv.FormatInt(asset.PayoutInterval, 10),
			NextPayoutTime: utils.FormatUnixTime(asset.NextPayoutTime),
		})
	}
	writeResponse(w, res)
}

//
// get the current vesting window and which subperiod now falls in
//
func getWindowInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	res := &types.WindowResponse{
		Info: &types.WindowInfo{},
	}
	params,err := db.GetChainParams()
	if err != nil {
		res.Status = types.StatusGetParamsError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}
	window := gpos.VestingWindow{
		PeriodSec: params.VestingPeriod,
		SubperiodSec: params.VestingSubperiod,
		PeriodStart: params.PeriodStart,
	}
	res.Status = types.StatusSuccess
	res.Info = &types.WindowInfo{
		PeriodStart: utils.FormatUnixTime(params.PeriodStart),
		VestingPeriod: strconv.FormatInt(params.VestingPeriod, 10),
		VestingSubperiod: strconv.FormatInt(params.VestingSubperiod, 10),
		CurrentSubperiod: strconv.FormatInt(window.SubperiodIndex(time.Now().Unix()), 10),
	}
	writeResponse(w, res)
}

func parseTargetKind(kind string) (int,bool) {
	switch kind {
	case "witness":
		return types.TargetKindWitness,true
	case "committee":
		return types.TargetKindCommittee,true
	case "worker":
		return types.TargetKindWorker,true
	}
	return -1,false
}

func writeResponse(w http.ResponseWriter, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Fail to marshal json", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _,err := w.Write(js); err != nil {
		log := logs.GetLogger()
		log.Errorf("w.Write fail, json is %v, error is %v \n", string(js), err)
		http.Error(w, "Fail to write json", types.StatusWriteJsonError)
	}
}

func parseParameterFromRequest(r *http.Request, parameter string) (string,error,int) {
	var (
		err error
		errCode int
	)

	if r == nil {
		return "", errors.New("empty http request"), types.StatusParamParseError
	}
	reqMethod := r.Method
	//just handle POST and Get Method
	if reqMethod == http.MethodPost || reqMethod == http.MethodGet {
		if reqMethod == http.MethodGet {
			queryForm, err := url.ParseQuery(r.URL.RawQuery)
			if err == nil && len(queryForm[parameter]) > 0  && utils.CheckIsNotEmptyStr(queryForm[parameter][0]){
				return queryForm[parameter][0], err, http.StatusOK
			} else {
				return "", errors.New(fmt.Sprintf("lack parameter %v", parameter)), types.StatusLackParamError
			}
		} else {
			err = r.ParseForm()
			if err != nil {
				return "", err, types.StatusParamParseError
			}
			val := r.PostFormValue(parameter)
			if len(val) < 1 {
				return "", errors.New(fmt.Sprintf("lack parameter %v", parameter)), types.StatusLackParamError
			}
			return val, nil, http.StatusOK
		}

	} else {
		err = errors.New(fmt.Sprintf("Not support %v method", reqMethod))
		errCode = http.StatusMethodNotAllowed
	}
	return "", err, errCode
}
