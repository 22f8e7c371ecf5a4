package check

import (
	"fmt"
	"time"

	"gpos_engine/db"
	"gpos_engine/logs"
	"gpos_engine/types"
	"gpos_engine/utils"
)

const checkInterval = 2*time.Minute

// PayoutResultChecker confirms computed payouts against the ledger mirror's
// transfer log. It never re-issues a transfer; an unconfirmed payout simply
// stays pending until the host applies it or the operator intervenes.
type PayoutResultChecker struct {
	isChecking bool
	stopCh      chan bool
}

func NewPayoutResultChecker() *PayoutResultChecker {
	return &PayoutResultChecker{
		isChecking: false,
	}
}

func (checker* PayoutResultChecker) StartCheck() {
	checker.stopCh = make(chan bool)
	ticker := time.NewTicker(time.Duration(checkInterval))
	go func() {
		for {
			select {
			case <- ticker.C:
				checker.checkPayoutResult()
			case <- checker.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

func (checker* PayoutResultChecker) StopCheck() {
	checker.stopCh <- true
	close(checker.stopCh)
}

func (checker* PayoutResultChecker) checkPayoutResult()  {
	logger := logs.GetLogger()
	if checker.isChecking {
		logger.Errorf("Last round check not finish")
		return
	}
	logger.Debugln("start new round check payout result")
	checker.isChecking = true
	payoutRecs,err := db.GetAllNotSuccessPayoutRecords()
	if err != nil {
		logger.Errorf(fmt.Sprintf("checkPayoutResult: fail to get payout records, the error is %v", err))
		checker.isChecking = false
		return
	}
	logger.Debugf("checkPayoutResult: pending payout records number is %v", len(payoutRecs))
	for _,payout := range payoutRecs {
		txHash := payout.TransferHash
		if utils.CheckIsNotEmptyStr(txHash) {
			isFinal,err := db.CheckPayoutTransferIsFinal(txHash)
			if err != nil {
				continue
			}
			if isFinal {
				//modify to processed
				pId := payout.Id
				err = db.MdPayoutProcessStatus(pId, types.ProcessingStatusSuccess)
				if err != nil {
					logger.Errorf(fmt.Sprintf("checkPayoutResult: fail to modify payout record: %v status to success, the error is %v",  pId, err))
				}
			}
		}
	}
	checker.isChecking = false
	logger.Debugln("Finish this round check")
}
