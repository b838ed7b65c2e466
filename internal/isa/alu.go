package isa

// EvaluateALU computes the EX-stage result for the opcodes that produce
// one: signed wrap-around arithmetic for ADD/SUB/MUL, immediate add for
// ADDI (spec.md §4.4 EX). Loads, stores, and branches are not ALU
// operations and are handled by the pipeline's EX/MEM/ID logic directly.
func EvaluateALU(op Opcode, a, b int32) int32 {
	switch op {
	case OpADD:
		return a + b
	case OpSUB:
		return a - b
	case OpMUL:
		return a * b
	case OpADDI:
		return a + b
	default:
		return 0
	}
}

// EvaluateBranch reports whether a conditional branch with the given
// opcode and already-hazard-resolved operand values is taken.
func EvaluateBranch(op Opcode, a, b int32) bool {
	switch op {
	case OpBNE:
		return a != b
	case OpBEQ:
		return a == b
	case OpBLE:
		return a <= b
	default:
		return false
	}
}
