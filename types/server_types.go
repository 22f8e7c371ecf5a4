package types

const (
	DefaultPageSize = 10
	DefaultPageIndex = 1

	StatusSuccess = 200
	StatusWriteJsonError = 600
	StatusParamParseError = 601
	StatusLackParamError = 602
	StatusGetDbError = 603
	StatusDbQueryError = 604
	StatusNotFoundError = 605
	StatusGetParamsError = 606
	StatusGetAssetError = 607
	StatusGetStakeError = 608
)

type BaseResponse struct {
	Status    int
	Msg       string
}

type AccountWeightInfo struct {
	Account string
	LastVoteTime string
	GposBalance  string
	Coefficient  string  //decay multiplier as a decimal string
	WeightedStake string
}

type AccountWeightResponse struct {
	BaseResponse
	Info      *AccountWeightInfo
}

type TallyInfo struct {
	Target  string
	Kind    string
	TotalVotes string
	TickTime  string
}

type TallyResponse struct {
	BaseResponse
	List      []*TallyInfo
}

type PayoutHistory struct {
	Account string
	Asset   string
	Amount  string
	Pool    string
	WeightedStake string
	TotalWeight  string
	Period  string
	Time    string
}

type PayoutHistoryResponse struct {
	BaseResponse
	List      []*PayoutHistory
}

type DividendScheduleInfo struct {
	Asset   string
	Symbol  string
	DistributionAccount string
	PoolBalance  string
	PayoutInterval string
	NextPayoutTime string
}

type DividendScheduleResponse struct {
	BaseResponse
	List      []*DividendScheduleInfo
}

type WindowInfo struct {
	PeriodStart string
	VestingPeriod string
	VestingSubperiod string
	CurrentSubperiod string
}

type WindowResponse struct {
	BaseResponse
	Info      *WindowInfo
}
