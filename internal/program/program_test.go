package program

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBasicProgram(t *testing.T) {
	src := "ADDI x1 x0 5\nADD x2 x1 x1\n"
	p, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"ADDI", "x1", "x0", "5"}, p.Lines[0])
}

func TestLoadLabelOnOwnLine(t *testing.T) {
	src := "ADDI x1 x0 3\nBNE x1 x2 END\nADDI x3 x0 99\nEND:\nADDI x4 x0 7\n"
	p, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	idx, ok := p.Labels["END"]
	require.True(t, ok)
	assert.Equal(t, 3, idx) // 0:ADDI 1:BNE 2:ADDI 3:ADDI(after label)
	assert.Equal(t, []string{"ADDI", "x4", "x0", "7"}, p.Lines[idx])
}

func TestLoadLabelSharingLine(t *testing.T) {
	src := "ADDI x1 x0 3\nEND: ADDI x4 x0 7\n"
	p, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	idx, ok := p.Labels["END"]
	require.True(t, ok)
	assert.Equal(t, []string{"ADDI", "x4", "x0", "7"}, p.Lines[idx])
}

func TestLoadBlankLinesSkipped(t *testing.T) {
	src := "ADDI x1 x0 1\n\n\nADD x2 x1 x1\n"
	p, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestLoadDuplicateLabelIsError(t *testing.T) {
	src := "A:\nADDI x1 x0 1\nA:\nADDI x2 x0 2\n"
	_, err := Load(strings.NewReader(src))
	require.Error(t, err)
}

func TestLoadRewritesOffsetRegister(t *testing.T) {
	src := "LW_SPM x3 4(x1)\n"
	p, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"LW_SPM", "x3", "4", "x1"}, p.Lines[0])
}
