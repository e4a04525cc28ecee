// Package chain implements the ChainEngine facade: it ties StateStore,
// ValidatorSet, the mempool, the finality gadget, and the security-
// state machine together into the block producer and block importer of
// a single block producer/importer, and sync/out-of-order buffering.
package chain

import (
	"sync"

	"kratos/chainerrors"
	"kratos/consensus"
	"kratos/governance"
	"kratos/mempool"
	"kratos/primitives"
	"kratos/security"
	"kratos/slashing"
	"kratos/state"
	"kratos/types"
	"kratos/validators"

	"github.com/tendermint/tendermint/libs/log"
)

// BlocksPerYear is the divisor used to turn an annual emission rate
// into a single block's reward.
const BlocksPerYear = 5_256_000

// Engine owns every moving part of one chain: state, validators,
// mempool, the security-state tracker, and the block store. Its
// exported methods are the only entry points that mutate chain state;
// callers never reach into state.Store or validators.Set directly for
// writes (the fixed-order combined write scope is enforced here, not
// by convention at the call site).
type Engine struct {
	mtx sync.RWMutex // protects blocksByNumber/blocksByHash/tip, not state/validators (which have their own locks)

	Params types.Params
	State  state.Store
	Vals   *validators.Set
	Pool   *mempool.Pool

	Security *security.Tracker
	Gov      *governance.Book

	blocksByNumber map[types.BlockNumber]*types.Block
	blocksByHash   map[primitives.Hash]*types.Block
	tip            types.BlockNumber

	lastJustification *types.FinalityJustification
	activeRound       *consensus.Round

	// equivocations is the persisted ledger of every EquivocationProof
	// this engine has ever recorded, keyed so a repeat observation
	// (own detection followed by seeing it again in an imported block,
	// or vice versa) is idempotent. pendingSlashes holds proofs this
	// node has recorded but not yet folded into a block it produced.
	equivocations map[equivocationKey]types.EquivocationProof
	pendingSlashes []types.EquivocationProof

	treasury        primitives.AccountId
	supply          types.Balance
	genesisTimeUnix int64

	logger log.Logger
}

// equivocationKey identifies one double-vote event: a second vote
// from the voter in the same (round, kind) is the same equivocation
// no matter which of the two conflicting votes is seen first.
type equivocationKey struct {
	Voter primitives.AccountId
	Round uint32
	Kind  types.VoteKind
}

func keyOfEquivocation(p types.EquivocationProof) equivocationKey {
	return equivocationKey{Voter: p.Voter, Round: p.Round, Kind: p.Kind}
}

// New builds an Engine from a genesis document, seeding accounts,
// validators and supply.
func New(genesis types.GenesisDoc, treasury primitives.AccountId, logger log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st := state.NewStore()
	st.SetLogger(stateLoggerAdapter{logger})
	vs := validators.NewSet()

	supply := types.ZeroBalance
	err := st.Mutate(func(tx *state.Txn) error {
		for _, ga := range genesis.Accounts {
			acc := tx.GetAccount(ga.Id)
			acc.Balance = ga.Balance
			tx.SetAccount(ga.Id, acc)
			supply = supply.MustAdd(ga.Balance)
		}
		for _, gv := range genesis.Validators {
			v := types.NewValidator(gv.Id, gv.Stake, 0, gv.IsBootstrap)
			vs.Add(v)
			supply = supply.MustAdd(gv.Stake)
			if gv.IsBootstrap {
				st.InitializeBootstrapVC(tx, gv.Id)
				vs.SetCredits(gv.Id, tx.GetVC(gv.Id))
			}
		}
		return nil
	})
	if err != nil {
		return nil, chainerrors.Configuration("chain: genesis application failed", err)
	}

	e := &Engine{
		Params:         genesis.Params,
		State:          st,
		Vals:           vs,
		Pool:           mempool.New(logger),
		Security:       security.NewTracker(),
		Gov:            governance.NewBook(),
		equivocations:  make(map[equivocationKey]types.EquivocationProof),
		blocksByNumber:  make(map[types.BlockNumber]*types.Block),
		blocksByHash:    make(map[primitives.Hash]*types.Block),
		treasury:        treasury,
		supply:          supply,
		genesisTimeUnix: genesis.GenesisTimeUnix,
		logger:          logger,
	}
	return e, nil
}

// TipHeight returns the current local chain tip.
func (e *Engine) TipHeight() types.BlockNumber {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.tip
}

// BlockByNumber returns a stored block by height.
func (e *Engine) BlockByNumber(n types.BlockNumber) (*types.Block, bool) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	b, ok := e.blocksByNumber[n]
	return b, ok
}

// BlockByHash returns a stored block by hash.
func (e *Engine) BlockByHash(h primitives.Hash) (*types.Block, bool) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	b, ok := e.blocksByHash[h]
	return b, ok
}

// LastFinalized returns the most recent finality justification, if any.
func (e *Engine) LastFinalized() (*types.FinalityJustification, bool) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.lastJustification, e.lastJustification != nil
}

// SetActiveRound installs the finality gadget's in-progress voting
// round, driven by the node's event loop (proposal/vote broadcast,
// timeout-triggered advancement) rather than by Import/Produce
// themselves. CurrentRound exposes it read-only for the RPC surface's
// finality_getRoundInfo.
func (e *Engine) SetActiveRound(r *consensus.Round) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.activeRound = r
}

func (e *Engine) CurrentRound() (*consensus.Round, bool) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.activeRound, e.activeRound != nil
}

// ProcessFinalityVote feeds one gossiped finality vote into the active
// round, the entry point the node's vote-gossip reactor calls for
// every FinalityVoteMessage it receives (SetActiveRound installs the
// round this drives). A completed round's justification is recorded
// as LastFinalized; a detected equivocation is persisted and queued so
// the next block this node produces carries it as a slashing event.
func (e *Engine) ProcessFinalityVote(vote types.FinalityVote) (*types.EquivocationProof, *types.FinalityJustification, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.activeRound == nil {
		return nil, nil, chainerrors.Consistency("chain: no active finality round", nil)
	}

	proof, justification, err := e.activeRound.AddVote(vote, e.Vals.ActiveCount())
	if err != nil {
		return nil, nil, err
	}
	if proof != nil {
		e.recordEquivocationLocked(*proof)
		e.pendingSlashes = append(e.pendingSlashes, *proof)
		return proof, nil, nil
	}
	if justification != nil {
		e.lastJustification = justification
	}
	return nil, justification, nil
}

// recordEquivocationLocked persists proof into the ledger. Callers
// must hold e.mtx.
func (e *Engine) recordEquivocationLocked(proof types.EquivocationProof) {
	e.equivocations[keyOfEquivocation(proof)] = proof
}

// EquivocationProofs returns every equivocation this engine has ever
// recorded, for RPC/explorer surfaces.
func (e *Engine) EquivocationProofs() []types.EquivocationProof {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	out := make([]types.EquivocationProof, 0, len(e.equivocations))
	for _, p := range e.equivocations {
		out = append(out, p)
	}
	return out
}

// drainPendingSlashes takes every queued-but-not-yet-slashed
// equivocation this node has recorded and clears the queue, for
// Produce to fold into the block it is building.
func (e *Engine) drainPendingSlashes() []types.EquivocationProof {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	pending := e.pendingSlashes
	e.pendingSlashes = nil
	return pending
}

// absorbSlashedProofs records proofs an imported block already
// slashed (in case this node never saw the conflicting votes itself)
// and drops them from this node's own pending queue so it never
// slashes the same equivocation a second time once it produces a
// block of its own.
func (e *Engine) absorbSlashedProofs(events []types.SlashingEvent) {
	if len(events) == 0 {
		return
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	slashed := make(map[equivocationKey]struct{}, len(events))
	for _, ev := range events {
		e.recordEquivocationLocked(ev.Proof)
		slashed[keyOfEquivocation(ev.Proof)] = struct{}{}
	}
	if len(e.pendingSlashes) == 0 {
		return
	}
	remaining := e.pendingSlashes[:0]
	for _, p := range e.pendingSlashes {
		if _, done := slashed[keyOfEquivocation(p)]; !done {
			remaining = append(remaining, p)
		}
	}
	e.pendingSlashes = remaining
}

// stateLoggerAdapter narrows tendermint's log.Logger onto state.Logger.
type stateLoggerAdapter struct{ log.Logger }

func (a stateLoggerAdapter) Debug(msg string, kv ...interface{}) { a.Logger.Debug(msg, kv...) }
func (a stateLoggerAdapter) Info(msg string, kv ...interface{})  { a.Logger.Info(msg, kv...) }
func (a stateLoggerAdapter) Error(msg string, kv ...interface{}) { a.Logger.Error(msg, kv...) }

// epochBoundedReward returns one block's reward: supply times the
// annual rate (6.5% during bootstrap, otherwise a 5% baseline, plus the
// security state's adjustment, clamped to [0.5%, 10%]), divided by
// BlocksPerYear.
func epochBoundedReward(supply types.Balance, secState security.State, bootstrap bool) types.Balance {
	rateBps := uint64(500) // 5% baseline for the adaptive regime
	if bootstrap {
		rateBps = 650
	}
	rateBps += security.InflationAdjustmentBps(secState)
	if rateBps < 50 {
		rateBps = 50
	}
	if rateBps > 1000 {
		rateBps = 1000
	}
	annual := supply.MulBasisPoints(rateBps)
	return annual.DivUint64(BlocksPerYear)
}

// slashOnEquivocation folds a finality equivocation proof into the
// slashing schedule and jails the offender, returning the outcome so
// the caller can log/expose it.
func (e *Engine) slashOnEquivocation(tx *state.Txn, proof types.EquivocationProof, currentEpoch types.EpochNumber) (slashing.Outcome, error) {
	v, ok := e.Vals.Get(proof.Voter)
	if !ok {
		return slashing.Outcome{}, chainerrors.Consistency("chain: equivocation from unknown validator", nil)
	}
	vc := tx.GetVC(proof.Voter)
	acc := tx.GetAccount(proof.Voter)

	outcome := slashing.Apply(slashing.EventFinalityEquivocation, currentEpoch, vc, acc.Staked, acc.Unbonding, v.Reputation)
	vc = slashing.RecordCritical(outcome.VC, currentEpoch)

	acc.Staked = outcome.Stake
	acc.Unbonding = outcome.Unbonding
	tx.SetAccount(proof.Voter, acc)
	tx.SetVC(proof.Voter, vc)

	v.VC = vc
	v.Reputation = outcome.Reputation
	v.Status = types.StatusJailed
	v.CooldownUntilEpoch = outcome.CooldownUntil
	e.Vals.Update(v)

	return outcome, nil
}

// applySlashingEvents folds every pending equivocation proof into the
// slashing schedule under tx's write scope and returns the resulting
// per-event record for the block under construction. Used by both
// Produce (against this node's own pendingSlashes) and Import (against
// the block's already-decided SlashingEvents), so the two always
// arrive at the same post-slash state as long as they start from the
// same proofs — which the state root check enforces.
func (e *Engine) applySlashingEvents(tx *state.Txn, proofs []types.EquivocationProof, epoch types.EpochNumber) []types.SlashingEvent {
	if len(proofs) == 0 {
		return nil
	}
	events := make([]types.SlashingEvent, 0, len(proofs))
	for _, proof := range proofs {
		outcome, err := e.slashOnEquivocation(tx, proof, epoch)
		if err != nil {
			// Unknown voter (already removed from the set by the time
			// the slash lands): nothing left to slash, drop silently
			// rather than failing the whole block over a stale proof.
			continue
		}
		events = append(events, types.SlashingEvent{Proof: proof, Severity: uint8(outcome.Severity)})
	}
	return events
}

// skippedLeadersBetween returns the validator that was the selected
// leader for every slot strictly between parentSlot and slot that
// produced no block, i.e. every leader this chain skipped over. Used
// to apply the missed-block reputation penalty to whoever was
// supposed to produce and didn't.
func (e *Engine) skippedLeadersBetween(parentSlot, slot types.SlotNumber, active []types.Validator) []primitives.AccountId {
	if slot <= parentSlot+1 {
		return nil
	}
	var missed []primitives.AccountId
	for s := parentSlot + 1; s < slot; s++ {
		randomness := e.epochRandomnessFor(types.EpochOfSlot(s))
		if leader, ok := validators.SelectLeader(randomness, s, active); ok {
			missed = append(missed, leader.Id)
		}
	}
	return missed
}

// creditBlockParticipants applies the per-block reputation and VC
// adjustments: +1 reputation and an uptime credit for the block's
// producer, -1 reputation for every leader whose slot was skipped
// since the parent, and a vote credit for every finality voter behind
// the engine's current justification.
func (e *Engine) creditBlockParticipants(tx *state.Txn, producer primitives.AccountId, missed []primitives.AccountId, epoch types.EpochNumber, bootstrap bool) {
	e.adjustReputation(producer, slashing.ReputationOnBlockProduced)
	e.creditValidator(tx, producer, validators.CreditUptime, epoch, bootstrap)

	for _, id := range missed {
		e.adjustReputation(id, slashing.ReputationOnBlockMissed)
	}

	for _, voter := range e.currentFinalityVoters() {
		e.creditValidator(tx, voter, validators.CreditVote, epoch, bootstrap)
	}
}

// adjustReputation applies adjust to id's live reputation, a no-op if
// id is not (or no longer) in the active validator set.
func (e *Engine) adjustReputation(id primitives.AccountId, adjust func(uint8) uint8) {
	v, ok := e.Vals.Get(id)
	if !ok {
		return
	}
	v.Reputation = adjust(v.Reputation)
	e.Vals.Update(v)
}

// creditValidator applies one VC crediting event to id's authoritative
// StateStore record and mirrors the result into ValidatorSet, a no-op
// if id is not a known validator (StateStore VC records for
// non-validators are otherwise harmless but pointless to accumulate).
func (e *Engine) creditValidator(tx *state.Txn, id primitives.AccountId, kind validators.CreditKind, epoch types.EpochNumber, bootstrap bool) {
	if _, ok := e.Vals.Get(id); !ok {
		return
	}
	vc := tx.GetVC(id)
	vc, _ = validators.ApplyCredit(vc, kind, epoch, bootstrap)
	tx.SetVC(id, vc)
	e.Vals.SetCredits(id, vc)
}

// AdvanceEpoch runs the chain's epoch-boundary housekeeping: the
// security-state machine, the critical-slash counter's decay, a
// seniority credit for every still-active validator, and the
// VC-discounted minimum-stake check that jails anyone who has fallen
// below validators.RequiredStake. Produce and Import both call this
// under the combined write scope exactly when the block they are
// building is the first to cross into a new epoch, so the two apply
// it at the identical point in the state transition.
func (e *Engine) AdvanceEpoch(tx *state.Txn, epoch types.EpochNumber) {
	bootstrap := types.IsBootstrapEpoch(epoch)
	e.Security.Advance(e.Vals.ActiveCount(), bootstrap)

	nominal := types.KRAT(e.Params.NominalValidatorStakeKRAT)
	for _, v := range e.Vals.Active() {
		vc := tx.GetVC(v.Id)
		vc = slashing.DecayCriticalCounter(vc, epoch)
		vc, _ = validators.ApplyCredit(vc, validators.CreditSeniority, epoch, bootstrap)
		tx.SetVC(v.Id, vc)
		e.Vals.SetCredits(v.Id, vc)

		if v.IsBootstrap {
			continue
		}
		required := validators.RequiredStake(nominal, vc.Total(), bootstrap)
		if v.Stake.LessThan(required) {
			e.Vals.Jail(v.Id)
		}
	}
}

// crossesEpochBoundary reports whether producing/importing a block at
// slot, extending a parent at parentSlot, enters a new epoch — the
// signal Produce/Import use to decide whether to call AdvanceEpoch.
func crossesEpochBoundary(parentSlot, slot types.SlotNumber) bool {
	return types.EpochOfSlot(slot) > types.EpochOfSlot(parentSlot)
}
