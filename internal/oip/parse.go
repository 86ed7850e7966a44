package oip

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse разбирает строку статуса операции provd.
//
// Формат узла: [label|]state[;current[/end]], за ним дети в скобках:
//
//	download|progress;3/10(fetch|success)(extract|progress;1)
//
// Label не может содержать '(' и ')'.
func Parse(status string) (*Snapshot, error) {
	p := &statusParser{src: status}

	snap, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return snap, nil
}

type statusParser struct {
	src string
	pos int
}

func (p *statusParser) node() (*Snapshot, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '(' && p.src[p.pos] != ')' {
		p.pos++
	}

	snap, err := p.header(p.src[start:p.pos])
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++

		child, err := p.node()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, p.errorf("unclosed sub-operation")
		}
		p.pos++

		snap.children = append(snap.children, child)
	}

	return snap, nil
}

func (p *statusParser) header(header string) (*Snapshot, error) {
	var label string
	rest := header
	if i := strings.LastIndexByte(header, '|'); i >= 0 {
		label, rest = header[:i], header[i+1:]
	}

	rawState, counters, hasCounters := strings.Cut(rest, ";")
	state, err := ParseState(rawState)
	if err != nil {
		return nil, fmt.Errorf("%w at offset %d", err, p.pos)
	}

	snap := NewSnapshot(label, state)
	if !hasCounters {
		return snap, nil
	}

	rawCurrent, rawEnd, hasEnd := strings.Cut(counters, "/")
	current, err := strconv.Atoi(rawCurrent)
	if err != nil {
		return nil, p.errorf("bad current %q", rawCurrent)
	}
	if !hasEnd {
		return snap.SetProgress(current), nil
	}

	end, err := strconv.Atoi(rawEnd)
	if err != nil {
		return nil, p.errorf("bad end %q", rawEnd)
	}
	return snap.SetCount(current, end), nil
}

func (p *statusParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformedStatus, fmt.Sprintf(format, args...), p.pos)
}
