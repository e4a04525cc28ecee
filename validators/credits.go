package validators

import "kratos/types"

// CreditKind names one of the four VC sub-counters.
type CreditKind uint8

const (
	CreditVote CreditKind = iota
	CreditUptime
	CreditArbitration
	CreditSeniority
)

// windowRule is the per-kind limit/window pair. Vote has two rules
// (a tight per-epoch cap and a looser multi-epoch cap); both must hold
// for a vote credit to be accepted.
type windowRule struct {
	limit  uint32
	window types.EpochNumber
}

var (
	voteEpochRule  = windowRule{limit: 3, window: 1}
	vote4EpochRule = windowRule{limit: 50, window: 4}
	uptimeRule     = windowRule{limit: 1, window: 1}
	arbitrationRule = windowRule{limit: 5, window: 52}
	seniorityRule   = windowRule{limit: 1, window: 4}
)

const bootstrapCreditMultiplier = 2

// creditAmount is the per-event award for each kind before any
// bootstrap multiplier.
func creditAmount(kind CreditKind) uint64 {
	switch kind {
	case CreditVote:
		return 1
	case CreditUptime:
		return 1
	case CreditArbitration:
		return 5
	case CreditSeniority:
		return 5
	default:
		return 0
	}
}

// slideWindow advances w.WindowFrom and resets w.Count to 0 if the
// current epoch has moved past the window's span since it last reset.
func slideWindow(w types.VCWindow, currentEpoch types.EpochNumber, span types.EpochNumber) types.VCWindow {
	if currentEpoch >= w.WindowFrom+span {
		return types.VCWindow{Count: 0, WindowFrom: currentEpoch}
	}
	return w
}

// ApplyCredit applies one crediting event of kind at currentEpoch to vc,
// enforcing the anti-spam window(s) for that kind and the bootstrap 2x
// multiplier for Vote and Uptime. It returns the updated record
// and whether the event was actually credited (false if the window's
// limit was already reached).
func ApplyCredit(vc types.ValidatorCredits, kind CreditKind, currentEpoch types.EpochNumber, bootstrap bool) (types.ValidatorCredits, bool) {
	amount := creditAmount(kind)
	if bootstrap && (kind == CreditVote || kind == CreditUptime) {
		amount *= bootstrapCreditMultiplier
	}

	switch kind {
	case CreditVote:
		epochWin := slideWindow(vc.VoteEpochWindow, currentEpoch, voteEpochRule.window)
		fourWin := slideWindow(vc.Vote4EpochWindow, currentEpoch, vote4EpochRule.window)
		if epochWin.Count >= voteEpochRule.limit || fourWin.Count >= vote4EpochRule.limit {
			vc.VoteEpochWindow = epochWin
			vc.Vote4EpochWindow = fourWin
			return vc, false
		}
		epochWin.Count++
		fourWin.Count++
		vc.VoteEpochWindow = epochWin
		vc.Vote4EpochWindow = fourWin
		vc.Vote += amount

	case CreditUptime:
		win := slideWindow(vc.UptimeWindow, currentEpoch, uptimeRule.window)
		if win.Count >= uptimeRule.limit {
			vc.UptimeWindow = win
			return vc, false
		}
		win.Count++
		vc.UptimeWindow = win
		vc.Uptime += amount

	case CreditArbitration:
		win := slideWindow(vc.ArbitrationWindow, currentEpoch, arbitrationRule.window)
		if win.Count >= arbitrationRule.limit {
			vc.ArbitrationWindow = win
			return vc, false
		}
		win.Count++
		vc.ArbitrationWindow = win
		vc.Arbitration += amount

	case CreditSeniority:
		win := slideWindow(vc.SeniorityWindow, currentEpoch, seniorityRule.window)
		if win.Count >= seniorityRule.limit {
			vc.SeniorityWindow = win
			return vc, false
		}
		win.Count++
		vc.SeniorityWindow = win
		vc.Seniority += amount

	default:
		return vc, false
	}

	return vc, true
}

const (
	bootstrapMaxReductionBps  = 9900 // 0.99
	bootstrapFloorKRAT        = 50_000
	postBootstrapMaxReductionBps = 9500 // 0.95
	postBootstrapFloorKRAT    = 25_000
	vcNormDivisor             = 5000
)

// RequiredStake computes required_stake per the stake-reduction
// formula: nominal scaled down by up to max_reduction as VC approaches
// vcNormDivisor, floored at floor.
func RequiredStake(nominal types.Balance, totalVC uint64, bootstrap bool) types.Balance {
	maxReductionBps := postBootstrapMaxReductionBps
	floor := types.KRAT(postBootstrapFloorKRAT)
	if bootstrap {
		maxReductionBps = bootstrapMaxReductionBps
		floor = types.KRAT(bootstrapFloorKRAT)
	}

	vcNormBps := (totalVC * 10000) / vcNormDivisor
	if vcNormBps > 10000 {
		vcNormBps = 10000
	}
	// reductionBps = maxReductionBps * vcNorm
	reductionBps := (uint64(maxReductionBps) * vcNormBps) / 10000

	reduced := nominal.MulBasisPoints(10000 - reductionBps)
	if reduced.LessThan(floor) {
		return floor
	}
	return reduced
}
