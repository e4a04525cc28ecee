// Package governance implements the proposal lifecycle: stake-weighted
// voting against a frozen snapshot, standard and supermajority
// thresholds, quorum, and the timelock/grace timings.
package governance

import (
	"sync"

	"kratos/chainerrors"
	"kratos/primitives"
	"kratos/security"
	"kratos/types"
)

// Book owns every proposal ever created, keyed by id, plus the
// exit-proposal singleton constraint: at most one active exit
// proposal per chain. Not goroutine-safe by itself; callers serialize
// writes through the chain engine's exclusive-writer discipline. The
// internal mutex exists only to make read-only RPC access safe
// concurrently with the single writer, matching validators.Set's
// reader/writer split.
type Book struct {
	mtx sync.RWMutex

	proposals map[uint64]*types.Proposal
	nextId    uint64

	activeExitProposal uint64 // 0 means none
}

// NewBook returns an empty proposal book.
func NewBook() *Book {
	return &Book{proposals: make(map[uint64]*types.Proposal)}
}

// Get returns a copy of the proposal, if present.
func (b *Book) Get(id uint64) (types.Proposal, bool) {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	p, ok := b.proposals[id]
	if !ok {
		return types.Proposal{}, false
	}
	return *p, true
}

// Create opens a new proposal, freezing snapshot as its voting-power
// basis. Blocked in Restricted/Emergency, and for a second concurrent
// exit proposal.
func (b *Book) Create(proposer primitives.AccountId, chainId string, kind types.ProposalType, payload []byte, snapshot types.StakeSnapshot, now int64, params types.Params, secState security.State) (*types.Proposal, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if security.NewProposalsBlocked(secState) {
		return nil, chainerrors.InputInvalid("governance frozen", nil)
	}
	if kind == types.ProposalExit && b.activeExitProposal != 0 {
		return nil, chainerrors.InputInvalid("an exit proposal is already active", nil)
	}

	b.nextId++
	id := b.nextId

	timelockSeconds := params.GovStandardTimelockSeconds * security.GovernanceTimelockMultiplier(secState)
	if kind == types.ProposalExit {
		timelockSeconds = params.GovExitTimelockSeconds
	}

	p := &types.Proposal{
		Id:             id,
		ChainId:        chainId,
		Proposer:       proposer,
		Type:           kind,
		Status:         types.ProposalActive,
		CreatedAt:      now,
		VotingEndsAt:   now + params.GovVotingPeriodSeconds,
		TimelockEndsAt: now + params.GovVotingPeriodSeconds + timelockSeconds,
		Deposit:        types.KRAT(params.GovProposalDepositKRAT),
		Snapshot:       snapshot,
		Payload:        payload,
	}
	b.proposals[id] = p
	if kind == types.ProposalExit {
		b.activeExitProposal = id
	}
	return p, nil
}

// Vote records voter's stance, weighted by the proposal's frozen
// snapshot. Rejects a second vote from the same voter and any vote
// cast outside the (voter must be in snapshot, voting still open)
// window.
func (b *Book) Vote(id uint64, voter primitives.AccountId, choice types.VoteChoice, now int64) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.proposals[id]
	if !ok {
		return chainerrors.InputInvalid("unknown proposal", nil)
	}
	if p.Status != types.ProposalActive {
		return chainerrors.InputInvalid("proposal not open for voting", nil)
	}
	if now > p.VotingEndsAt {
		return chainerrors.InputInvalid("voting period ended", nil)
	}
	if p.HasVoted(voter) {
		return chainerrors.InputInvalid("already voted", nil)
	}
	weight, inSnapshot := p.Snapshot.PerValidator[voter]
	if !inSnapshot {
		return chainerrors.InputInvalid("voter not in stake snapshot", nil)
	}

	p.Votes = append(p.Votes, types.VoteRecord{Voter: voter, Choice: choice, Weight: weight})
	switch choice {
	case types.VoteYes:
		p.Yes = p.Yes.MustAdd(weight)
	case types.VoteNo:
		p.No = p.No.MustAdd(weight)
	case types.VoteAbstain:
		p.Abstain = p.Abstain.MustAdd(weight)
	}
	return nil
}

// Cancel lets the proposer withdraw a proposal up to p.VotingEndsAt;
// any later cancellation is rejected here, for exit and standard
// proposals alike.
func (b *Book) Cancel(id uint64, proposer primitives.AccountId, now int64) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.proposals[id]
	if !ok {
		return chainerrors.InputInvalid("unknown proposal", nil)
	}
	if p.Proposer != proposer {
		return chainerrors.InputInvalid("only the proposer may cancel", nil)
	}
	if now > p.VotingEndsAt {
		return chainerrors.InputInvalid("cannot cancel after voting ends", nil)
	}
	p.Status = types.ProposalCancelled
	if p.Type == types.ProposalExit && b.activeExitProposal == id {
		b.activeExitProposal = 0
	}
	return nil
}

// Tally resolves a proposal whose voting period has just elapsed into
// Passed or Rejected, applying the correct threshold (standard 51% vs
// supermajority 67%) and the 30% quorum floor over the snapshot total.
func (b *Book) Tally(id uint64, params types.Params) (types.Proposal, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.proposals[id]
	if !ok {
		return types.Proposal{}, chainerrors.InputInvalid("unknown proposal", nil)
	}
	if p.Status != types.ProposalActive {
		return *p, nil
	}
	if err := b.tallyLocked(p, params); err != nil {
		return types.Proposal{}, err
	}
	return *p, nil
}

// tallyLocked applies Tally's resolution logic to p in place; callers
// must already hold b.mtx and have already confirmed p.Status ==
// ProposalActive.
func (b *Book) tallyLocked(p *types.Proposal, params types.Params) error {
	participating, err := p.Yes.Add(p.No)
	if err == nil {
		participating, err = participating.Add(p.Abstain)
	}
	if err != nil {
		return chainerrors.Wrap(err, "governance: tally overflow")
	}

	quorumMet := meetsBps(participating, p.Snapshot.Total, params.GovQuorumBps)

	threshold := params.GovStandardThresholdBps
	if p.Type == types.ProposalExit {
		threshold = params.GovSupermajorityThresholdBps
	}

	yesNo, err := p.Yes.Add(p.No)
	if err != nil {
		return chainerrors.Wrap(err, "governance: tally overflow")
	}
	passed := quorumMet && meetsBps(p.Yes, yesNo, threshold)

	if passed {
		p.Status = types.ProposalPassed
	} else {
		p.Status = types.ProposalRejected
	}
	if p.Type == types.ProposalExit && b.activeExitProposal == p.Id {
		b.activeExitProposal = 0
	}
	return nil
}

// meetsBps reports whether numerator/denominator >= thresholdBps/10000,
// computed with pure integer cross-multiplication so no float ever
// touches a balance comparison: numerator*10000 >= denominator*thresholdBps.
func meetsBps(numerator, denominator types.Balance, thresholdBps uint64) bool {
	if denominator.IsZero() {
		return false
	}
	left, errL := numerator.MulUint64(10000)
	right, errR := denominator.MulUint64(thresholdBps)
	if errL != nil || errR != nil {
		// Overflow only happens for balances far beyond any realistic
		// total stake or vote tally; treat it as threshold-not-met
		// rather than risk a wraparound false pass.
		return false
	}
	return left.GreaterOrEqual(right)
}

// AdvanceTimelock moves a Passed proposal into ReadyToExecute once its
// timelock has elapsed. No-op for any other status.
func (b *Book) AdvanceTimelock(id uint64, now int64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.proposals[id]
	if !ok || p.Status != types.ProposalPassed {
		return
	}
	if now >= p.TimelockEndsAt {
		p.Status = types.ProposalReadyToExecute
	}
}

// Execute finalizes a ReadyToExecute proposal within its grace window
// (TimelockEndsAt + GovGracePeriodSeconds). A proposal whose grace
// window has elapsed expires instead, which burns its deposit.
// Execution is blocked while governance is frozen (Restricted/
// Emergency), except for an exit proposal when exit is always
// allowed (Emergency).
func (b *Book) Execute(id uint64, now int64, params types.Params, secState security.State) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.proposals[id]
	if !ok {
		return chainerrors.InputInvalid("unknown proposal", nil)
	}
	if p.Status != types.ProposalReadyToExecute {
		return chainerrors.InputInvalid("proposal not ready to execute", nil)
	}
	if now > p.TimelockEndsAt+params.GovGracePeriodSeconds {
		p.Status = types.ProposalExpired
		return chainerrors.InputInvalid("execution grace period elapsed", nil)
	}
	if security.NewProposalsBlocked(secState) && !(p.Type == types.ProposalExit && security.ExitAlwaysAllowed(secState)) {
		return chainerrors.InputInvalid("governance frozen", nil)
	}
	p.Status = types.ProposalExecuted
	return nil
}

// Tick advances every proposal's lifecycle against the current time:
// active proposals past their voting deadline get tallied, passed
// proposals past their timelock become ready to execute, and
// ready-to-execute proposals past their grace window expire (burning
// their deposit) without needing an explicit Execute call.
func (b *Book) Tick(now int64, params types.Params) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, p := range b.proposals {
		switch p.Status {
		case types.ProposalActive:
			if now > p.VotingEndsAt {
				b.tallyLocked(p, params)
			}
		case types.ProposalPassed:
			if now >= p.TimelockEndsAt {
				p.Status = types.ProposalReadyToExecute
			}
		case types.ProposalReadyToExecute:
			if now > p.TimelockEndsAt+params.GovGracePeriodSeconds {
				p.Status = types.ProposalExpired
			}
		}
	}
}

// DepositBurned reports whether a proposal's deposit is burned rather
// than returned to the proposer: burned only on Expire, returned on
// Pass/Execute/Reject/Cancel.
func DepositBurned(status types.ProposalStatus) bool {
	return status == types.ProposalExpired
}

// SnapshotFrom builds a StakeSnapshot from the currently active
// validator set, recording each validator's stake and the total.
func SnapshotFrom(active []types.Validator) types.StakeSnapshot {
	snap := types.StakeSnapshot{PerValidator: make(map[primitives.AccountId]types.Balance, len(active)), Total: types.ZeroBalance}
	for _, v := range active {
		snap.PerValidator[v.Id] = v.Stake
		snap.Total = snap.Total.MustAdd(v.Stake)
	}
	return snap
}
