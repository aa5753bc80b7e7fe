package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maximum accepted line length
const maxLineSize = 1024 * 1024

type parseState int

const (
	// skipping blanks, waiting for an identifier or a time line
	stateSeekingHeaderOrTime parseState = iota
	// identifier seen, waiting for the time line
	stateSeekingTime
	// collecting text until a blank line
	stateInText
)

func (s parseState) String() string {
	switch s {
	case stateSeekingHeaderOrTime:
		return "seeking-header-or-time"
	case stateSeekingTime:
		return "seeking-time"
	case stateInText:
		return "in-text"
	default:
		return fmt.Sprintf("parseState(%d)", int(s))
	}
}

type parser struct {
	doc     *Document
	state   parseState
	header  []string
	cue     *Cue
	lineNum int
	warn    func(msg string, keysAndValues ...interface{})
}

type ParseOption func(*parser)

// receives recoverable oddities such as an identifier with no time line
func WithParseWarn(fn func(msg string, keysAndValues ...interface{})) ParseOption {
	return func(p *parser) { p.warn = fn }
}

// Parse reads a SubRip or WebVTT document into cues. Malformed blocks are
// skipped; only read errors and unparseable timestamps fail.
func Parse(r io.Reader, format Format, opts ...ParseOption) (*Document, error) {
	p := &parser{
		doc:   &Document{Format: format},
		state: stateSeekingHeaderOrTime,
	}
	for _, opt := range opts {
		opt(p)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	inPreamble := false
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		p.lineNum++

		if p.lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if format == FormatVTT && strings.HasPrefix(strings.TrimSpace(line), vttHeader) {
				p.doc.Header = strings.TrimSpace(line)
				inPreamble = true
				continue
			}
		}

		if inPreamble {
			if strings.TrimSpace(line) != "" && !timeRangeRegex.MatchString(line) {
				p.doc.Preamble = append(p.doc.Preamble, line)
				continue
			}
			inPreamble = false
		}

		if err := p.step(line); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading subtitle: %w", err)
	}

	p.finish()
	return p.doc, nil
}

func (p *parser) step(line string) error {
	var (
		next parseState
		err  error
	)
	switch p.state {
	case stateSeekingHeaderOrTime:
		next, err = p.seekingHeaderOrTime(line)
	case stateSeekingTime:
		next, err = p.seekingTime(line)
	case stateInText:
		next = p.inText(line)
	}
	if err != nil {
		return err
	}
	p.state = next
	return nil
}

func (p *parser) seekingHeaderOrTime(line string) (parseState, error) {
	if strings.TrimSpace(line) == "" {
		return stateSeekingHeaderOrTime, nil
	}
	opened, err := p.openCue(line)
	if err != nil {
		return p.state, err
	}
	if opened {
		return stateInText, nil
	}
	p.header = append(p.header, line)
	return stateSeekingTime, nil
}

func (p *parser) seekingTime(line string) (parseState, error) {
	if strings.TrimSpace(line) == "" {
		if p.warn != nil {
			p.warn("Blank line after cue identifier, skipping block",
				"line", p.lineNum,
				"header", strings.Join(p.header, " | "),
			)
		}
		p.header = nil
		return stateSeekingHeaderOrTime, nil
	}
	opened, err := p.openCue(line)
	if err != nil {
		return p.state, err
	}
	if opened {
		return stateInText, nil
	}
	p.header = append(p.header, line)
	return stateSeekingTime, nil
}

func (p *parser) inText(line string) parseState {
	if strings.TrimSpace(line) == "" {
		p.closeCue()
		return stateSeekingHeaderOrTime
	}
	p.cue.TextLines = append(p.cue.TextLines, line)
	return stateInText
}

// starts a cue if line is a time line; pending header lines move into it
func (p *parser) openCue(line string) (bool, error) {
	start, end, ok, err := matchTimeRange(line)
	if !ok {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("invalid timestamp at line %d: %w", p.lineNum, err)
	}
	p.cue = &Cue{
		Start:       start,
		End:         end,
		HeaderLines: p.header,
		TimeLine:    line,
	}
	p.header = nil
	return true, nil
}

func (p *parser) closeCue() {
	if p.cue != nil {
		p.doc.Cues = append(p.doc.Cues, *p.cue)
	}
	p.cue = nil
	p.header = nil
}

// files need not end with a blank line
func (p *parser) finish() {
	if p.state == stateInText && p.cue != nil && len(p.cue.TextLines) > 0 {
		p.closeCue()
	}
	p.state = stateSeekingHeaderOrTime
}
