package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeError records a malformed or unrecognized instruction line. Per
// spec.md §7, decode errors are not fatal: the caller records the event
// and advances the program counter past the offending line.
type DecodeError struct {
	Line string
	Msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error on %q: %s", e.Line, e.Msg)
}

// Decode parses one pre-tokenized program line (operands already
// whitespace separated, any offset(reg) form already rewritten to two
// tokens by the program loader) into an Instruction. It does not resolve
// branch labels to indices; Label is carried as text for the pipeline's
// ID stage to resolve against the program's label map.
func Decode(fields []string) (Instruction, error) {
	if len(fields) == 0 {
		return Instruction{}, &DecodeError{Msg: "empty line"}
	}
	mnemonic := fields[0]
	op, ok := LookupOpcode(mnemonic)
	if !ok {
		return Instruction{}, &DecodeError{Line: strings.Join(fields, " "), Msg: "unknown opcode " + mnemonic}
	}

	inst := Instruction{Opcode: op, Text: strings.Join(fields, " "), Dest: NoReg, Src1: NoReg, Src2: NoReg}
	args := fields[1:]

	badArity := func() error {
		return &DecodeError{Line: inst.Text, Msg: fmt.Sprintf("wrong operand count for %s", mnemonic)}
	}

	switch op {
	case OpADD, OpSUB, OpMUL:
		if len(args) != 3 {
			return Instruction{}, badArity()
		}
		d, s1, s2, err := decodeRRR(args)
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Dest, inst.Src1, inst.Src2 = d, s1, s2

	case OpADDI:
		if len(args) != 3 {
			return Instruction{}, badArity()
		}
		d, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		s1, err := decodeReg(args[1])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		imm, err := decodeImm(args[2])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Dest, inst.Src1, inst.Imm = d, s1, imm

	case OpARR:
		if len(args) != 1 {
			return Instruction{}, badArity()
		}
		imm, err := decodeImm(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Imm = imm

	case OpLD, OpLDC2, OpLDC3, OpLDC4:
		if len(args) != 2 {
			return Instruction{}, badArity()
		}
		d, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		addr, err := decodeImm(args[1])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Dest, inst.MemAddr = d, int64(addr)

	case OpSW:
		if len(args) != 2 {
			return Instruction{}, badArity()
		}
		s, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		addr, err := decodeImm(args[1])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Src1, inst.MemAddr = s, int64(addr)

	case OpBNE, OpBEQ, OpBLE:
		if len(args) != 3 {
			return Instruction{}, badArity()
		}
		s1, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		s2, err := decodeReg(args[1])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Src1, inst.Src2, inst.Label = s1, s2, args[2]

	case OpJ:
		if len(args) != 1 {
			return Instruction{}, badArity()
		}
		inst.Label = args[0]

	case OpJAL:
		if len(args) != 2 {
			return Instruction{}, badArity()
		}
		d, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Dest, inst.Label = d, args[1]

	case OpLWSPM:
		if len(args) != 3 {
			return Instruction{}, badArity()
		}
		d, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		off, err := decodeImm(args[1])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		s1, err := decodeReg(args[2])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Dest, inst.Imm, inst.Src1 = d, off, s1

	case OpSWSPM:
		if len(args) != 3 {
			return Instruction{}, badArity()
		}
		s2, err := decodeReg(args[0])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		off, err := decodeImm(args[1])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		s1, err := decodeReg(args[2])
		if err != nil {
			return Instruction{}, wrapDecode(inst.Text, err)
		}
		inst.Src2, inst.Imm, inst.Src1 = s2, off, s1

	case OpSYNC:
		if len(args) != 0 {
			return Instruction{}, badArity()
		}

	default:
		return Instruction{}, &DecodeError{Line: inst.Text, Msg: "unsupported opcode " + mnemonic}
	}

	return inst, nil
}

func wrapDecode(line string, err error) error {
	return &DecodeError{Line: line, Msg: err.Error()}
}

func decodeRRR(args []string) (dest, src1, src2 int, err error) {
	dest, err = decodeReg(args[0])
	if err != nil {
		return
	}
	src1, err = decodeReg(args[1])
	if err != nil {
		return
	}
	src2, err = decodeReg(args[2])
	return
}

// decodeReg parses a register token of the form "xN", N in [0,31].
func decodeReg(tok string) (int, error) {
	if len(tok) < 2 || tok[0] != 'x' {
		return 0, fmt.Errorf("malformed register token %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, fmt.Errorf("register index out of range %q", tok)
	}
	return n, nil
}

// decodeImm parses a signed decimal immediate.
func decodeImm(tok string) (int32, error) {
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed immediate %q", tok)
	}
	return int32(n), nil
}
