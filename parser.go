package serial

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultRawSettings is the built-in stty script that puts a line into raw
// mode: no echo, no canonical processing, no signal characters, no
// software flow control, 8 data bits and every control character disabled.
// It was captured from `stty -a` on a port configured for raw data, one
// setting per line.
const DefaultRawSettings = `-brkint
-cmspar
-echo
-echoctl
-echoe
-echok
-echoke
-echonl
-echoprt
-extproc
-flusho
-hupcl
-icanon
-icrnl
-iexten
-ignbrk
-igncr
-ignpar
-imaxbel
-inlcr
-isig
-istrip
-iuclc
-iutf8
-ixany
-ixoff
-ixon
-noflsh
-ocrnl
-ofdel
-ofill
-olcuc
-onlcr
-onlret
-onocr
-opost
-parmrk
-parodd
-tostop
-xcase
bs0
clocal
cr0
cread
crtscts
cs8
cstopb
discard = <undef>;
eof = <undef>;
eol = <undef>;
eol2 = <undef>;
erase = <undef>;
ff0
inpck
intr = <undef>;
kill = <undef>;
line = 0;
lnext = <undef>;
min = 1; time = 0;
nl0
parenb
quit = <undef>;
rows 0; columns 0;
rprnt = <undef>;
speed 9600 baud;
start = <undef>;
stop = <undef>;
susp = <undef>;
swtch = <undef>;
tab0
vt0
werase = <undef>;
`

// maxTokenLen is the longest token the parser accepts
const maxTokenLen = 20

// disableSuffix must follow a control character name for it to be disabled
const disableSuffix = "= <undef>;"

// descriptive settings that appear in stty output but carry nothing to apply
var descriptiveTokens = map[string]bool{
	"line":    true,
	"min":     true,
	"time":    true,
	"rows":    true,
	"columns": true,
	"speed":   true,
}

// DiagnosticKind classifies a non-fatal parse outcome
type DiagnosticKind int

const (
	DiagIgnored DiagnosticKind = iota
	DiagDescriptive
	DiagNotReversible
	DiagControlCharMismatch
	DiagOverLength
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagIgnored:
		return "ignored"
	case DiagDescriptive:
		return "descriptive"
	case DiagNotReversible:
		return "not reversible"
	case DiagControlCharMismatch:
		return "control character mismatch"
	case DiagOverLength:
		return "token too long"
	default:
		return "unknown"
	}
}

// Diagnostic describes a token that had no effect on the state
type Diagnostic struct {
	Line  int
	Token string
	Kind  DiagnosticKind
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s [%s]", d.Line, d.Kind, d.Token)
}

// token is one settings token and where it sits in the source
type token struct {
	text string
	line int
	// rest of the token's line, after the token itself
	tail string
}

// tokenizer walks settings text one line at a time. Each line contributes
// at most its first whitespace-delimited word.
type tokenizer struct {
	src  string
	off  int
	line int
}

func newTokenizer(src string) *tokenizer {
	return &tokenizer{src: src, line: 1}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// next returns the next token and moves past the end of its line
func (t *tokenizer) next() (token, bool) {
	for t.off < len(t.src) && isSpace(t.src[t.off]) {
		if t.src[t.off] == '\n' {
			t.line++
		}
		t.off++
	}
	if t.off >= len(t.src) {
		return token{}, false
	}

	start := t.off
	end := start
	for end < len(t.src) && !isSpace(t.src[end]) {
		end++
	}

	lineEnd := len(t.src)
	if nl := strings.IndexByte(t.src[end:], '\n'); nl >= 0 {
		lineEnd = end + nl
	}

	tok := token{
		text: t.src[start:end],
		line: t.line,
		tail: t.src[end:lineEnd],
	}

	t.off = lineEnd
	if t.off < len(t.src) {
		t.off++
		t.line++
	}
	return tok, true
}

// hasDisableSuffix reports whether tail is exactly "= <undef>;" once
// runs of blanks are ignored
func hasDisableSuffix(tail string) bool {
	fields := strings.Fields(tail)
	switch len(fields) {
	case 1:
		return fields[0] == "=<undef>;"
	case 2:
		return fields[0] == "=" && fields[1] == "<undef>;"
	default:
		return false
	}
}

// ParseSettings applies every token of an stty-style settings text to st.
// It never fails: tokens that cannot be applied are returned as
// diagnostics and logged.
func ParseSettings(text string, st *LineDisciplineState, logger *slog.Logger) []Diagnostic {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var diags []Diagnostic
	tz := newTokenizer(text)
	for {
		tok, ok := tz.next()
		if !ok {
			break
		}
		if d, ok := applyToken(tok, st, logger); !ok {
			diags = append(diags, d)
		}
	}
	return diags
}

func applyToken(tok token, st *LineDisciplineState, logger *slog.Logger) (Diagnostic, bool) {
	diag := func(kind DiagnosticKind) Diagnostic {
		return Diagnostic{Line: tok.line, Token: tok.text, Kind: kind}
	}

	if len(tok.text) > maxTokenLen {
		logger.Warn("rejected over-length token", "line", tok.line, "token", tok.text)
		return diag(DiagOverLength), false
	}

	negated := strings.HasPrefix(tok.text, "-")

	if mode, ok := LookupMode(tok.text); ok {
		if !negated {
			st.SetMode(mode)
			logger.Debug("set mode", "token", tok.text, "group", mode.Group)
			return Diagnostic{}, true
		}
		if !st.ClearMode(mode) {
			logger.Warn("cannot clear non-reversible mode", "line", tok.line, "token", tok.text)
			return diag(DiagNotReversible), false
		}
		logger.Debug("cleared mode", "token", tok.text, "group", mode.Group)
		return Diagnostic{}, true
	}

	if cc, ok := LookupControlChar(tok.text); ok {
		if !hasDisableSuffix(tok.tail) {
			logger.Warn("control character not followed by "+disableSuffix,
				"line", tok.line, "token", tok.text, "rest", strings.TrimSpace(tok.tail))
			return diag(DiagControlCharMismatch), false
		}
		st.DisableControlChar(cc)
		logger.Debug("disabled control character", "token", tok.text, "slot", cc.Slot)
		return Diagnostic{}, true
	}

	if descriptiveTokens[tableName(tok.text)] {
		logger.Debug("skipped descriptive setting", "line", tok.line, "token", tok.text)
		return diag(DiagDescriptive), false
	}

	logger.Warn("ignored unknown setting", "line", tok.line, "token", tok.text)
	return diag(DiagIgnored), false
}
