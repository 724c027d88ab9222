package sprite

import (
	"fmt"

	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/rng"
)

// Opcode enumerates the iscript byte-coded instructions this interpreter
// supports, covering the minimum set spec.md §4.G requires.
type Opcode uint8

const (
	OpPlayFrame Opcode = iota
	OpPlayFrameTile
	OpSetHorPos
	OpSetVertPos
	OpSetPos
	OpWait
	OpWaitRand
	OpGoto
	OpCall
	OpReturn
	OpImgOl         // spawn overlay image
	OpImgUl         // spawn underlay image
	OpImgOlUseLO    // overlay, inherit LO-file offset
	OpImgUlUseLO    // underlay, inherit LO-file offset
	OpPlaySnd
	OpDamageWeapon
	OpAttackMelee
	OpFollowMainGraphic
	OpRandCondJmp
	OpTurnCWise
	OpTurnCCWise
	OpTurn1CWise
	OpTurnRand
	OpSetSpawnFrame
	OpSigOrder
	OpAttack
	OpCastSpell
	OpUseWeapon
	OpMove // move N pixels forward along current heading
	OpGotoRepeatAttk
	OpEngFrame
	OpEngSet
	OpNoBrkCodeStart
	OpNoBrkCodeEnd
	OpIgnoreRest
	OpTmpRmGraphicStart
	OpTmpRmGraphicEnd
	OpSetFlDirect
	OpSetFlSpeed
	OpCreateGasOverlays
	OpPwrupCondJmp
	OpTgtRangeCondJmp
	OpTgtArcCondJmp
	OpCurDirectCondJmp
	OpLiftOffCondJmp
	OpWarpOverlay
	OpOrderDone
	OpGndSprOl
	OpDoGrdDamage
	OpEnd
)

// Instruction is one decoded iscript instruction: an opcode plus up to two
// integer operands (frame/offset/jump-target/wait-range, depending on the
// opcode).
type Instruction struct {
	Op   Opcode
	A, B int32
}

// Program is one compiled animation sequence (e.g. "Walking", "Death").
// Labels (Init, GndAttkInit, ...) resolve to an entry PC at load time; the
// interpreter only ever sees PCs.
type Program struct {
	Name string
	Code []Instruction
}

// SignalBits are the well-known order_signal bits an iscript program sets
// to hand control back to the order layer next frame, per spec.md §4.G.
type SignalBits uint16

const (
	SignalOrder SignalBits = 1 << iota // sigorder
	SignalGotoRepeatAttack
	SignalAttack
	SignalCastSpell
	SignalWarpOverlayDone
)

// VMState is the per-image interpreter state: program counter, a small
// call stack (spec says "call/return"), the active wait counter, and the
// signal bits raised this step for the order layer to observe next frame.
type VMState struct {
	prog       *Program
	pc         int
	callStack  []int
	wait       int32
	ended      bool
	noBreak    bool
	hiddenTmp  bool
	Direction  int8 // current flingy heading, mirrored for SetFlDirect
	Speed      int32
	SpawnFrame int32
	Signals    SignalBits
}

func NewVMState(prog *Program) VMState {
	return VMState{prog: prog}
}

// Ended reports whether the program has run its `end` opcode.
func (v *VMState) Ended() bool { return v.ended }

// Clone returns a deep copy of v. prog is left aliased since every
// Program is immutable template data loaded once from the data tables;
// callStack is the only field that needs its own backing array.
func (v VMState) Clone() VMState {
	if len(v.callStack) > 0 {
		cs := make([]int, len(v.callStack))
		copy(cs, v.callStack)
		v.callStack = cs
	}
	return v
}

// Effects is emitted by Step for actions the sprite package cannot itself
// perform (spawning another image, playing a sound, applying damage) —
// the caller (the sim/orders layer) is expected to act on them.
type Effects struct {
	FrameIndex    *int32
	Offset        *[2]int32
	SpawnOverlay  *SpawnRequest
	PlaySound     *int32
	DamageWeapon  bool
	AttackMelee   bool
	UseWeapon     bool
	CastSpell     bool
	GroundDamage  bool
	MoveForward   *int32
	WarpOverlay   bool
	GroundSprite  *int32
}

// SpawnRequest describes an overlay/underlay image the iscript wants
// spawned; the caller resolves the program by name/id.
type SpawnRequest struct {
	ImageType ImageTypeID
	Underlay  bool
	UseLO     bool
	OffsetX   int32
	OffsetY   int32
}

// Context carries the unit/order-level facts the five CondJmp opcodes
// test. The sprite package owns no unit state of its own, so the caller
// (orders/sim) computes these once per image per tick and passes them
// in; the VM itself stays a pure bytecode interpreter.
type Context struct {
	Powerup     bool // pwrupcondjmp: carrying a powerup/flag
	TargetInRange bool // tgtrangecondjmp: current target within weapon range
	TargetInArc   bool // tgtarccondjmp: current target within turret/weapon arc
	FacingTarget  bool // curdirectcondjmp: heading already matches desired
	LiftedOff     bool // liftoffcondjmp: flyer has cleared the ground
}

// Step runs instructions until the image must wait or yield for this
// frame, draws from lcg for Opcodes that need randomness (OpWaitRand,
// OpRandCondJmp, OpTurnRand), consults ctx for the five CondJmp
// opcodes, and returns the accumulated Effects for the caller to apply.
// Step is deterministic: the same (program, state, lcg state, ctx)
// always produces the same PC trajectory and draws.
func (v *VMState) Step(lcg *rng.LCG, ctx Context) (Effects, error) {
	var eff Effects
	if v.ended {
		return eff, nil
	}
	if v.wait > 0 {
		v.wait--
		return eff, nil
	}

	// Run at most a bounded number of instructions per tick to guarantee
	// termination even on a malformed program (an instruction that
	// neither waits nor ends would otherwise spin forever).
	const maxInstructionsPerStep = 256
	for i := 0; i < maxInstructionsPerStep; i++ {
		if v.pc < 0 || v.pc >= len(v.prog.Code) {
			return eff, fmt.Errorf("%w: iscript pc %d out of range in program %q", errs.ErrLogicError, v.pc, v.prog.Name)
		}
		ins := v.prog.Code[v.pc]
		v.pc++

		switch ins.Op {
		case OpPlayFrame, OpPlayFrameTile:
			f := ins.A
			eff.FrameIndex = &f
		case OpSetHorPos:
			off := [2]int32{ins.A, 0}
			eff.Offset = &off
		case OpSetVertPos:
			off := [2]int32{0, ins.A}
			eff.Offset = &off
		case OpSetPos:
			off := [2]int32{ins.A, ins.B}
			eff.Offset = &off
		case OpWait:
			v.wait = ins.A
			return eff, nil
		case OpWaitRand:
			v.wait = lcg.Roll(rng.SiteIscriptWait, ins.A, ins.B)
			return eff, nil
		case OpGoto:
			v.pc = int(ins.A)
		case OpCall:
			v.callStack = append(v.callStack, v.pc)
			v.pc = int(ins.A)
		case OpReturn:
			if len(v.callStack) == 0 {
				return eff, fmt.Errorf("%w: iscript return with empty call stack in %q", errs.ErrLogicError, v.prog.Name)
			}
			v.pc = v.callStack[len(v.callStack)-1]
			v.callStack = v.callStack[:len(v.callStack)-1]
		case OpImgOl, OpImgUl, OpImgOlUseLO, OpImgUlUseLO:
			eff.SpawnOverlay = &SpawnRequest{
				ImageType: ImageTypeID(ins.A),
				Underlay:  ins.Op == OpImgUl || ins.Op == OpImgUlUseLO,
				UseLO:     ins.Op == OpImgOlUseLO || ins.Op == OpImgUlUseLO,
			}
		case OpPlaySnd:
			s := ins.A
			eff.PlaySound = &s
		case OpDamageWeapon:
			eff.DamageWeapon = true
		case OpAttackMelee:
			eff.AttackMelee = true
		case OpFollowMainGraphic:
			// Handled by the caller copying the main image's frame/offset;
			// no local state to mutate here.
		case OpRandCondJmp:
			if lcg.Roll(rng.SiteIscriptRandomJump, 0, 255) < ins.A {
				v.pc = int(ins.B)
			}
		case OpTurnCWise:
			v.Direction += int8(ins.A)
		case OpTurnCCWise:
			v.Direction -= int8(ins.A)
		case OpTurn1CWise:
			v.Direction++
		case OpTurnRand:
			if lcg.Bool(rng.SiteIscriptRandomJump) {
				v.Direction++
			} else {
				v.Direction--
			}
		case OpSetSpawnFrame:
			v.SpawnFrame = ins.A
		case OpSigOrder:
			v.Signals |= SignalOrder
		case OpAttack:
			eff.UseWeapon = true
			v.Signals |= SignalAttack
		case OpCastSpell:
			eff.CastSpell = true
			v.Signals |= SignalCastSpell
		case OpUseWeapon:
			eff.UseWeapon = true
		case OpMove:
			f := ins.A
			eff.MoveForward = &f
		case OpGotoRepeatAttk:
			v.Signals |= SignalGotoRepeatAttack
		case OpEngFrame, OpEngSet:
			f := ins.A
			eff.FrameIndex = &f
		case OpNoBrkCodeStart:
			v.noBreak = true
		case OpNoBrkCodeEnd:
			v.noBreak = false
		case OpIgnoreRest:
			return eff, nil
		case OpTmpRmGraphicStart:
			v.hiddenTmp = true
		case OpTmpRmGraphicEnd:
			v.hiddenTmp = false
		case OpSetFlDirect:
			v.Direction = int8(ins.A)
		case OpSetFlSpeed:
			v.Speed = ins.A
		case OpCreateGasOverlays:
			eff.SpawnOverlay = &SpawnRequest{ImageType: ImageTypeID(ins.A), Underlay: true}
		case OpPwrupCondJmp:
			if ctx.Powerup {
				v.pc = int(ins.A)
			}
		case OpTgtRangeCondJmp:
			if ctx.TargetInRange {
				v.pc = int(ins.A)
			}
		case OpTgtArcCondJmp:
			if ctx.TargetInArc {
				v.pc = int(ins.A)
			}
		case OpCurDirectCondJmp:
			if ctx.FacingTarget {
				v.pc = int(ins.A)
			}
		case OpLiftOffCondJmp:
			if ctx.LiftedOff {
				v.pc = int(ins.A)
			}
		case OpWarpOverlay:
			eff.WarpOverlay = true
			v.Signals |= SignalWarpOverlayDone
		case OpOrderDone:
			v.Signals |= SignalOrder
		case OpGndSprOl:
			f := ins.A
			eff.GroundSprite = &f
		case OpDoGrdDamage:
			eff.GroundDamage = true
		case OpEnd:
			v.ended = true
			return eff, nil
		default:
			return eff, fmt.Errorf("%w: unknown iscript opcode %d in %q", errs.ErrLogicError, ins.Op, v.prog.Name)
		}
	}
	return eff, nil
}

// Hidden reports whether the image is currently suppressed by a
// temporary-remove-graphic bracket.
func (v *VMState) Hidden() bool { return v.hiddenTmp }

// ClearSignals resets the order-signal bits after the order layer has
// observed them, per spec.md §4.G ("the order state machine observes them
// next frame").
func (v *VMState) ClearSignals() { v.Signals = 0 }
