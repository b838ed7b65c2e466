package corepipe

import "github.com/RohitVenkatMutyala/COA-Project/internal/isa"

// doFetch is the IF sub-stage (spec.md §4.4 IF).
func (c *Core) doFetch() {
	if c.branchTakenFlag {
		c.branchTakenFlag = false
		return
	}
	if c.pc >= int64(c.prog.Len()) || c.waitingForSync {
		return
	}
	if c.stage[isa.StageIF] != nil {
		// A hazard stall (or a just-parked SYNC) already occupies the
		// slot; nothing new to fetch this cycle.
		return
	}

	fields := c.prog.Lines[c.pc]
	inst, err := isa.Decode(fields)
	if err != nil {
		c.events = append(c.events, DecodeEvent{
			Cycle: c.currentCycle, PC: c.pc, Kind: "decode_error", Msg: err.Error(),
		})
		c.pc++
		return
	}

	c.nextInstID++
	inst.ID = c.nextInstID
	// The fetch goes through L1I/L2 for their state and statistics; its
	// latency is not added to the core's stall counters.
	c.mem.FetchInstruction(c.id, c.pc*4, c.currentCycle)
	inst.IssueCycle = c.currentCycle
	inst.StageCycle[isa.StageIF] = c.currentCycle
	inst.FetchPC = c.pc

	instCopy := inst
	c.stage[isa.StageIF] = &instCopy
	c.pc++
}

// doDecode is the ID sub-stage (spec.md §4.4 ID).
func (c *Core) doDecode() {
	if c.waitingForSync {
		if c.bar.Generation() > c.myBarrierGen {
			c.pendingSync.Completed = true
			c.pendingSync.StageCycle[isa.StageID] = c.currentCycle
			c.executedInstructions++
			c.waitingForSync = false
			c.pendingSync = nil
			return
		}
		c.syncStalls++
		return
	}

	inst := c.stage[isa.StageIF]
	if inst == nil {
		return
	}

	if c.hasHazard(inst) {
		c.stalls++
		return // leave it parked in the IF slot; retry next cycle
	}
	c.stage[isa.StageIF] = nil

	switch inst.Opcode {
	case isa.OpBNE, isa.OpBEQ, isa.OpBLE:
		a, b := c.readOperand(inst.Src1), c.readOperand(inst.Src2)
		taken := isa.EvaluateBranch(inst.Opcode, a, b)
		if taken && c.resolveBranch(inst) {
			return
		}
		c.pushID(inst)

	case isa.OpJ:
		if !c.resolveBranch(inst) {
			c.pushID(inst)
		}

	case isa.OpJAL:
		target, ok := c.prog.Labels[inst.Label]
		if !ok {
			c.events = append(c.events, DecodeEvent{
				Cycle: c.currentCycle, PC: c.pc, Kind: "undefined_label", Msg: inst.Label,
			})
			c.pushID(inst)
			return
		}
		c.registers[inst.Dest] = int32(inst.FetchPC)
		c.stage[isa.StageIF] = nil
		c.branchTakenFlag = true
		c.pc = int64(target)
		c.stalls += 2
		inst.Completed = true
		inst.StageCycle[isa.StageID] = c.currentCycle
		c.executedInstructions++

	case isa.OpSYNC:
		arrival := c.bar.Arrive()
		if arrival.ReleasedByMe {
			inst.Completed = true
			inst.StageCycle[isa.StageID] = c.currentCycle
			c.executedInstructions++
			return
		}
		c.waitingForSync = true
		c.myBarrierGen = arrival.Generation
		c.pendingSync = inst

	default:
		c.reserveDest(inst)
		c.pushID(inst)
	}
}

// resolveBranch implements the shared "taken branch/jump" path: clear
// IF, jump, flush, and mark completed in ID (spec.md §4.4 ID). Returns
// false (falls through, not taken) if the label is undefined.
func (c *Core) resolveBranch(inst *isa.Instruction) bool {
	target, ok := c.prog.Labels[inst.Label]
	if !ok {
		c.events = append(c.events, DecodeEvent{
			Cycle: c.currentCycle, PC: c.pc, Kind: "undefined_label", Msg: inst.Label,
		})
		return false
	}
	c.stage[isa.StageIF] = nil
	c.branchTakenFlag = true
	c.pc = int64(target)
	c.stalls += 2
	inst.Completed = true
	inst.StageCycle[isa.StageID] = c.currentCycle
	c.executedInstructions++
	return true
}

// pushID reserves bookkeeping and advances inst into the ID slot for
// EX to pop next cycle.
func (c *Core) pushID(inst *isa.Instruction) {
	inst.StageCycle[isa.StageID] = c.currentCycle
	c.stage[isa.StageID] = inst
}

// hasHazard implements spec.md §4.4 ID's hazard rule. readyCycle is
// only a GATE, matching check_hazards in
// original_source/simulator_phase3.cpp: without forwarding, a gated
// source really is a hazard (the value isn't live until its producer's
// WB, which is exactly what readyCycle computes). With forwarding,
// readyCycle over-approximates on purpose — it's derived from EX-ID
// distance plus latency, so a latency>1 op still gates here even
// though EX/MEM forwarding makes the value available independent of
// latency (see forwardSource) — so a gated source falls through to the
// live EX/MEM scan and is a genuine hazard only if that scan also comes
// up empty.
func (c *Core) hasHazard(inst *isa.Instruction) bool {
	for _, src := range [2]int{inst.Src1, inst.Src2} {
		if src == isa.NoReg {
			continue
		}
		st, ok := c.regStatus[src]
		if !ok || st.readyCycle <= c.currentCycle {
			continue
		}
		if c.forwardingEnabled && c.forwardSource(src) != nil {
			continue
		}
		return true
	}
	return false
}

// reserveDest publishes the producing instruction's ready_cycle into
// register_status (spec.md §4.4 ID "Otherwise").
func (c *Core) reserveDest(inst *isa.Instruction) {
	if inst.Dest == isa.NoReg {
		return
	}
	var distance uint64
	if c.forwardingEnabled {
		distance = uint64(isa.StageEX - isa.StageID)
	} else {
		distance = uint64(isa.StageWB - isa.StageID)
	}
	ready := c.currentCycle + distance + uint64(c.latencies.Latency(inst.Opcode)) - 1
	c.regStatus[inst.Dest] = regStatusEntry{producerID: inst.ID, readyCycle: ready}
}

// doExecute is the EX sub-stage (spec.md §4.4 EX).
func (c *Core) doExecute() {
	inst := c.stage[isa.StageID]
	c.stage[isa.StageID] = nil
	if inst == nil {
		return
	}

	switch inst.Opcode {
	case isa.OpADD, isa.OpSUB, isa.OpMUL:
		inst.ResultValue = isa.EvaluateALU(inst.Opcode, c.readOperand(inst.Src1), c.readOperand(inst.Src2))
	case isa.OpADDI:
		inst.ResultValue = isa.EvaluateALU(inst.Opcode, c.readOperand(inst.Src1), inst.Imm)
	case isa.OpARR:
		c.execARR(inst)
	case isa.OpLWSPM:
		inst.MemAddr = int64(c.readOperand(inst.Src1)) + int64(inst.Imm)
	case isa.OpSWSPM:
		inst.MemAddr = int64(c.readOperand(inst.Src1)) + int64(inst.Imm)
		inst.ResultValue = c.readOperand(inst.Src2)
	case isa.OpSW:
		inst.ResultValue = c.readOperand(inst.Src1)
	}

	if lat := c.latencies.Latency(inst.Opcode); lat > 1 && !c.forwardingEnabled {
		c.stalls += uint64(lat - 1)
	}
	inst.StageCycle[isa.StageEX] = c.currentCycle
	c.stage[isa.StageEX] = inst
}

// execARR implements the ARR bulk-initialize side effect (spec.md §4.4
// EX): writes span all cores' DRAM and, per the literal formula, all
// cores' register files too (§4.4 EX takes precedence over §9's general
// private-register-bank note, which concerns ordinary cross-core reads
// via LDC2/3/4, not this one explicit side effect).
func (c *Core) execARR(inst *isa.Instruction) {
	n := int(inst.Imm)
	for i := 0; i < n; i++ {
		core := i / 25
		word := i % 25
		value := int32(i + 1)
		c.mem.WriteDRAM(core, word, value)
		if core == c.id {
			c.WriteRegister(word, value)
		} else if c.regw != nil {
			c.regw.WriteRegister(core, word, value)
		}
	}
}

// doMemory is the MEM sub-stage (spec.md §4.4 MEM).
func (c *Core) doMemory() {
	inst := c.stage[isa.StageEX]
	c.stage[isa.StageEX] = nil
	if inst == nil {
		return
	}

	switch inst.Opcode {
	case isa.OpLD:
		word, stall := c.mem.LoadData(c.id, inst.MemAddr*4, c.currentCycle)
		inst.ResultValue = word
		c.memoryStalls += uint64(stall)
		c.stalls += uint64(stall)

	case isa.OpLDC2, isa.OpLDC3, isa.OpLDC4:
		if c.id == 0 {
			srcCore := ldcSourceOffset(inst.Opcode)
			word, stall := c.mem.LoadData(srcCore, inst.MemAddr*4, c.currentCycle)
			inst.ResultValue = word
			c.memoryStalls += uint64(stall)
			c.stalls += uint64(stall)
		}
		// Other cores: no-op in MEM, still counted as executed in WB.

	case isa.OpSW:
		stall := c.mem.StoreData(c.id, inst.MemAddr*4, inst.ResultValue, c.currentCycle)
		c.memoryStalls += uint64(stall)
		c.stalls += uint64(stall)

	case isa.OpLWSPM:
		word, stall := c.mem.ReadSPM(c.id, inst.MemAddr)
		inst.ResultValue = word
		c.memoryStalls += uint64(stall)
		c.stalls += uint64(stall)

	case isa.OpSWSPM:
		stall := c.mem.WriteSPM(c.id, inst.MemAddr, inst.ResultValue)
		c.memoryStalls += uint64(stall)
		c.stalls += uint64(stall)
	}

	inst.StageCycle[isa.StageMEM] = c.currentCycle
	c.stage[isa.StageMEM] = inst
}

func ldcSourceOffset(op isa.Opcode) int {
	switch op {
	case isa.OpLDC2:
		return 1
	case isa.OpLDC3:
		return 2
	case isa.OpLDC4:
		return 3
	default:
		return 0
	}
}

// doWriteback is the WB sub-stage (spec.md §4.4 WB).
func (c *Core) doWriteback() {
	inst := c.stage[isa.StageMEM]
	c.stage[isa.StageMEM] = nil
	if inst == nil {
		return
	}

	if inst.Opcode.HasDest() && inst.Dest != isa.NoReg {
		c.registers[inst.Dest] = inst.ResultValue
	}
	inst.Completed = true
	inst.StageCycle[isa.StageWB] = c.currentCycle
	c.executedInstructions++
}
