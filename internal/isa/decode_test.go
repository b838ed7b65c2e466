package isa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArithmetic(t *testing.T) {
	inst, err := Decode(strings.Fields("ADD x2 x1 x1"))
	require.NoError(t, err)
	assert.Equal(t, OpADD, inst.Opcode)
	assert.Equal(t, 2, inst.Dest)
	assert.Equal(t, 1, inst.Src1)
	assert.Equal(t, 1, inst.Src2)
}

func TestDecodeADDI(t *testing.T) {
	inst, err := Decode(strings.Fields("ADDI x1 x0 -5"))
	require.NoError(t, err)
	assert.Equal(t, OpADDI, inst.Opcode)
	assert.Equal(t, 1, inst.Dest)
	assert.Equal(t, 0, inst.Src1)
	assert.EqualValues(t, -5, inst.Imm)
}

func TestDecodeBranch(t *testing.T) {
	inst, err := Decode(strings.Fields("BNE x1 x2 END"))
	require.NoError(t, err)
	assert.True(t, inst.Opcode.IsBranch())
	assert.Equal(t, "END", inst.Label)
}

func TestDecodeLWSPMPreRewritten(t *testing.T) {
	// the external loader rewrites "4(x1)" into "4 x1" before decode.
	inst, err := Decode(strings.Fields("LW_SPM x3 4 x1"))
	require.NoError(t, err)
	assert.Equal(t, OpLWSPM, inst.Opcode)
	assert.Equal(t, 3, inst.Dest)
	assert.EqualValues(t, 4, inst.Imm)
	assert.Equal(t, 1, inst.Src1)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := Decode(strings.Fields("NOPE x1 x2"))
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestDecodeBadRegister(t *testing.T) {
	_, err := Decode(strings.Fields("ADD x99 x1 x1"))
	require.Error(t, err)
}

func TestDecodeWrongArity(t *testing.T) {
	_, err := Decode(strings.Fields("ADD x1 x2"))
	require.Error(t, err)
}

func TestALUArithmetic(t *testing.T) {
	assert.EqualValues(t, 10, EvaluateALU(OpADD, 5, 5))
	assert.EqualValues(t, 0, EvaluateALU(OpSUB, 5, 5))
	assert.EqualValues(t, 25, EvaluateALU(OpMUL, 5, 5))
	assert.EqualValues(t, 8, EvaluateALU(OpADDI, 5, 3))
}

func TestEvaluateBranch(t *testing.T) {
	assert.True(t, EvaluateBranch(OpBNE, 3, 5))
	assert.False(t, EvaluateBranch(OpBNE, 5, 5))
	assert.True(t, EvaluateBranch(OpBEQ, 5, 5))
	assert.True(t, EvaluateBranch(OpBLE, 5, 5))
	assert.False(t, EvaluateBranch(OpBLE, 6, 5))
}

func TestLatencyTableDefaults(t *testing.T) {
	lt := DefaultLatencies()
	assert.Equal(t, 1, lt.Latency(OpADD))
	assert.Equal(t, 1, lt.Latency(OpMUL))
	assert.Equal(t, 1, lt.Latency(OpADDI)) // no explicit entry, defaults to 1

	lt2 := lt.WithLatency(OpMUL, 3)
	assert.Equal(t, 3, lt2.Latency(OpMUL))
	assert.Equal(t, 1, lt.Latency(OpMUL), "WithLatency must not mutate the receiver")
}
