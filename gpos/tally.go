package gpos

import "sort"

// TargetKind tags which governance object a vote edge points at.
type TargetKind int

const (
	TargetWitness TargetKind = iota
	TargetCommittee
	TargetWorker
)

func (k TargetKind) String() string {
	switch k {
	case TargetWitness:
		return "witness"
	case TargetCommittee:
		return "committee"
	case TargetWorker:
		return "worker"
	}
	return "unknown"
}

// VoteEdge is one live voter-to-target relation as mirrored from the chain.
type VoteEdge struct {
	Voter  string
	Target string
	Kind   TargetKind
}

// TallyTotal is the freshly recomputed vote total of one target.
type TallyTotal struct {
	Target     string
	Kind       TargetKind
	TotalVotes uint64
}

// Tally rebuilds every target's total votes from scratch out of the current
// edge set, replacing whatever a previous tick computed. A voter that votes
// for several targets contributes its full weighted stake to each of them.
// Edges whose voter is missing from stakes contribute nothing and are counted
// in skipped. Totals come back sorted by kind then target id so persistence
// is canonical across nodes.
func Tally(now int64, periodSec int64, edges []VoteEdge, stakes map[string]StakeState) (totals []TallyTotal, skipped int) {
	weights := make(map[string]uint64)
	type key struct {
		target string
		kind   TargetKind
	}
	sums := make(map[key]uint64)
	for _, e := range edges {
		st, ok := stakes[e.Voter]
		if !ok {
			skipped++
			continue
		}
		w, cached := weights[e.Voter]
		if !cached {
			w = st.AccountWeight(now, periodSec)
			weights[e.Voter] = w
		}
		sums[key{e.Target, e.Kind}] += w
	}
	totals = make([]TallyTotal, 0, len(sums))
	for k, total := range sums {
		totals = append(totals, TallyTotal{Target: k.target, Kind: k.kind, TotalVotes: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Kind != totals[j].Kind {
			return totals[i].Kind < totals[j].Kind
		}
		return totals[i].Target < totals[j].Target
	})
	return totals, skipped
}
