package utils

import (
	"crypto/md5"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenPrecision is the number of decimal places of the core asset's display
// form; amounts are carried as integer base units everywhere else.
const TokenPrecision = 5

// DeterministicId derives a stable id from its parts, for rows every node
// must key identically (tally rows, payout rows).
func DeterministicId(orgs ...string) string {
	h := md5.New()
	h.Write([]byte(strings.Join(orgs, "_")))
	return hex.EncodeToString(h.Sum(nil))
}

func CheckIsNotEmptyStr(str string) bool {
	if str != "" && len(str) > 0 {
		return true
	}
	return false
}

func ConvertTimeToStamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func FormatUnixTime(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return ConvertTimeToStamp(time.Unix(sec, 0).UTC())
}

// CalcDisplayAmount converts integer base units to the human display form.
func CalcDisplayAmount(amount uint64) string  {
	bigAmount := new(big.Int).SetUint64(amount)
	d := decimal.NewFromBigInt(bigAmount, 0)
	actual,_ := d.QuoRem(decimal.New(1, TokenPrecision), TokenPrecision)
	return actual.String()
}

// FormatRat renders an exact rational (e.g. a decay coefficient) as a
// decimal string for display only; consensus math never goes through here.
func FormatRat(r *big.Rat, places int32) string {
	num := decimal.NewFromBigInt(new(big.Int).Set(r.Num()), 0)
	den := decimal.NewFromBigInt(new(big.Int).Set(r.Denom()), 0)
	q,_ := num.QuoRem(den, places)
	return q.String()
}
