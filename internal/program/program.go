// Package program loads assembly source text into the read-only Program
// data model: a line list plus a label->index map (spec.md §3 Program,
// §6 Program input). The label/offset(reg) handling is the external
// parser/pre-processor's job per spec.md §1's Non-goals, but a complete
// repository still needs a concrete implementation of that boundary —
// this one is grounded directly on original_source/convert.cpp's
// offset(reg) rewrite.
package program

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Program is an ordered, read-only sequence of tokenized instruction
// lines plus a label->index map (spec.md §3).
type Program struct {
	Lines  [][]string // each line's whitespace-separated fields, offset(reg) already rewritten
	Labels map[string]int
}

// Len returns the number of instruction lines.
func (p *Program) Len() int { return len(p.Lines) }

// Load reads one instruction per non-blank line. A label is a token
// ending in ':' on its own or at the start of a line (spec.md §6); label
// names are case-sensitive and must be unique. Blank lines are skipped.
func Load(r io.Reader) (*Program, error) {
	p := &Program{Labels: make(map[string]int)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		fields := strings.Fields(raw)

		if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
			label := strings.TrimSuffix(fields[0], ":")
			if err := p.addLabel(label, lineNo); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasSuffix(fields[0], ":") {
			label := strings.TrimSuffix(fields[0], ":")
			if err := p.addLabel(label, lineNo); err != nil {
				return nil, err
			}
			fields = fields[1:]
			if len(fields) == 0 {
				continue
			}
		}

		p.Lines = append(p.Lines, rewriteOffsets(fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) addLabel(label string, lineNo int) error {
	if _, exists := p.Labels[label]; exists {
		return fmt.Errorf("duplicate label %q at input line %d", label, lineNo)
	}
	p.Labels[label] = len(p.Lines)
	return nil
}

// rewriteOffsets turns an "offset(reg)" token into two tokens, "offset"
// and "reg", matching original_source/convert.cpp's preprocessing pass
// (it splits on '(' and ')' and re-joins with a space). Tokens without
// both parens pass through unchanged.
func rewriteOffsets(fields []string) []string {
	out := make([]string, 0, len(fields)+1)
	for _, word := range fields {
		open := strings.IndexByte(word, '(')
		shut := strings.IndexByte(word, ')')
		if open >= 0 && shut >= 0 && shut > open {
			offset := word[:open]
			reg := word[open+1 : shut]
			out = append(out, offset, reg)
			continue
		}
		out = append(out, word)
	}
	return out
}
