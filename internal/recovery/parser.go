package recovery

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
)

type Result struct {
	Records   []domain.RawRecord
	Salvaged  int
	Discarded int
}

// Parser salvages record objects from text that need not be a valid JSON
// document as a whole: concatenated arrays, prose around the payload,
// truncated objects and stray commas are all tolerated.
type Parser struct {
	anchorKey string
	anchor    *regexp.Regexp
	log       *zap.Logger
	journal   *events.Journal

	// first few discards are logged, then at most one per second
	logDiscard rate.Sometimes
}

func New(cfg config.Recovery, log *zap.Logger, j *events.Journal) *Parser {
	if log == nil {
		log = zap.L()
	}
	key := cfg.AnchorKey
	if key == "" {
		key = "company_name"
	}
	return &Parser{
		anchorKey:  key,
		anchor:     regexp.MustCompile(`^\{\s*"` + regexp.QuoteMeta(key) + `"\s*:`),
		log:        log.With(zap.String("component", "recovery")),
		journal:    j,
		logDiscard: rate.Sometimes{First: 5, Interval: time.Second},
	}
}

// Parse runs a parser with default settings.
func Parse(data []byte) (Result, error) {
	return New(config.Default().Recovery, nil, nil).Parse(data)
}

type candidate struct {
	start    int
	anchored bool
	stack    []byte
	inString bool
	escaped  bool
}

// Parse never fails on a bad fragment; it drops and counts it. The only error
// is *EmptyInputError.
func (p *Parser) Parse(data []byte) (Result, error) {
	var res Result
	if len(bytes.TrimSpace(data)) == 0 {
		return res, &EmptyInputError{Bytes: len(data)}
	}

	var (
		cur *candidate
		// after a structural error, wait for the next anchor before
		// starting another candidate
		resync bool
	)
	for i := 0; i < len(data); i++ {
		c := data[i]

		// An anchor starts a new record unless it is a well-placed value of
		// the open record that also lets that record close.
		if c == '{' && (cur == nil || !cur.escaped) && p.isAnchor(data, i) && !nestedValue(data, i, cur) {
			if cur != nil {
				if cur.anchored || cur.inString || cur.stack[len(cur.stack)-1] != '[' {
					p.discard(&res, data[cur.start:i], "truncated object")
				}
				// otherwise cur is a wrapper whose records we now take one by one
			}
			cur = &candidate{start: i, anchored: true, stack: []byte{'{'}}
			resync = false
			continue
		}

		if cur == nil {
			if c == '{' && !resync {
				cur = &candidate{start: i, stack: []byte{'{'}}
			}
			continue
		}

		if cur.inString {
			switch {
			case cur.escaped:
				cur.escaped = false
			case c == '\\':
				cur.escaped = true
			case c == '"':
				cur.inString = false
			}
			continue
		}

		switch c {
		case '"':
			cur.inString = true
		case '{', '[':
			cur.stack = append(cur.stack, c)
		case '}', ']':
			open := cur.stack[len(cur.stack)-1]
			if (c == '}') != (open == '{') {
				p.discard(&res, data[cur.start:i+1], "mismatched bracket")
				cur, resync = nil, true
				continue
			}
			cur.stack = cur.stack[:len(cur.stack)-1]
			if len(cur.stack) == 0 {
				p.emit(&res, data[cur.start:i+1])
				cur = nil
			}
		}
	}
	if cur != nil {
		p.discard(&res, data[cur.start:], "unterminated at end of input")
	}

	res.Salvaged = len(res.Records)
	p.log.Debug("recovery finished",
		zap.Int("bytes", len(data)),
		zap.Int("salvaged", res.Salvaged),
		zap.Int("discarded", res.Discarded),
	)
	if res.Salvaged == 0 {
		return res, &EmptyInputError{Bytes: len(data), Discarded: res.Discarded}
	}
	return res, nil
}

// nestedValue reports whether the anchor at i sits where the open record
// expects a value (after ':' or inside an array) and the record still
// balances when read on from there.
func nestedValue(data []byte, i int, cur *candidate) bool {
	if cur == nil || !cur.anchored || cur.inString {
		return false
	}
	prev := bytes.TrimRight(data[cur.start:i], " \t\r\n")
	if len(prev) == 0 {
		return false
	}
	top := cur.stack[len(cur.stack)-1]
	switch prev[len(prev)-1] {
	case ':':
		if top != '{' {
			return false
		}
	case ',', '[':
		if top != '[' {
			return false
		}
	default:
		return false
	}
	return balances(data[i:], cur.stack)
}

// balances runs the bracket scanner over rest, starting from stack, and
// reports whether the stack empties before a mismatch or the end of input.
func balances(rest []byte, stack []byte) bool {
	st := append([]byte(nil), stack...)
	inString, escaped := false, false
	for _, c := range rest {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			st = append(st, c)
		case '}', ']':
			if (c == '}') != (st[len(st)-1] == '{') {
				return false
			}
			st = st[:len(st)-1]
			if len(st) == 0 {
				return true
			}
		}
	}
	return false
}

func (p *Parser) isAnchor(data []byte, i int) bool {
	end := i + len(p.anchorKey) + 256
	if end > len(data) {
		end = len(data)
	}
	return p.anchor.Match(data[i:end])
}

// emit runs the strict-then-fallback chain on one balanced candidate.
func (p *Parser) emit(res *Result, frag []byte) {
	if recs, ok := p.salvage(frag); ok {
		res.Records = append(res.Records, recs...)
		return
	}
	p.discard(res, frag, "unparseable object")
}

func (p *Parser) salvage(frag []byte) ([]domain.RawRecord, bool) {
	var obj domain.RawRecord
	if err := json.Unmarshal(frag, &obj); err == nil {
		return p.records(obj)
	}
	obj = nil
	if err := json.Unmarshal(stripStrayCommas(frag), &obj); err == nil {
		return p.records(obj)
	}
	// narrower pass: the nested objects may be fine even if the frame is not
	var out []domain.RawRecord
	for _, span := range nestedSpans(frag) {
		var inner domain.RawRecord
		if json.Unmarshal(span, &inner) != nil && json.Unmarshal(stripStrayCommas(span), &inner) != nil {
			continue
		}
		if recs, ok := p.records(inner); ok {
			out = append(out, recs...)
		}
	}
	return out, len(out) > 0
}

// records decides what a parsed object is: a record, a wrapper holding
// records in its array fields, or noise.
func (p *Parser) records(obj domain.RawRecord) ([]domain.RawRecord, bool) {
	if _, ok := obj[p.anchorKey]; ok {
		return []domain.RawRecord{obj}, true
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []domain.RawRecord
	for _, k := range keys {
		var items []json.RawMessage
		if json.Unmarshal(obj[k], &items) != nil {
			continue
		}
		for _, it := range items {
			var inner domain.RawRecord
			if json.Unmarshal(it, &inner) != nil {
				continue
			}
			if recs, ok := p.records(inner); ok {
				out = append(out, recs...)
			}
		}
	}
	if len(out) > 0 {
		return out, true
	}

	// a record that lost its name is still a record; the auditor reports it
	for _, k := range []string{"about", "industry", "roles", "tech_stack", "company_stage"} {
		if _, ok := obj[k]; ok {
			return []domain.RawRecord{obj}, true
		}
	}
	return nil, false
}

func (p *Parser) discard(res *Result, frag []byte, reason string) {
	res.Discarded++
	preview := frag
	if len(preview) > 80 {
		preview = preview[:80]
	}
	p.logDiscard.Do(func() {
		p.log.Warn("discarding fragment",
			zap.String("reason", reason),
			zap.Int("bytes", len(frag)),
			zap.ByteString("preview", preview),
		)
	})
	p.journal.Record(events.MakeEvent(events.TypeRecoveryDiscard, "", reason,
		map[string]any{"bytes": len(frag), "preview": string(preview)}))
}

// stripStrayCommas removes commas that directly follow an opener or another
// comma, or directly precede a closer. Text inside strings is untouched.
func stripStrayCommas(b []byte) []byte {
	out := make([]byte, 0, len(b))
	inString, escaped := false, false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			next := nextNonSpace(b, i+1)
			prev := lastNonSpace(out)
			if next == '}' || next == ']' || next == ',' || next == 0 || prev == '{' || prev == '[' || prev == 0 {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// nestedSpans returns the balanced objects one level inside frag, searching
// through any arrays in between.
func nestedSpans(frag []byte) [][]byte {
	var (
		spans    [][]byte
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i, c := range frag {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
			if depth == 2 {
				start = i
			}
		case '}':
			if depth == 2 && start >= 0 {
				spans = append(spans, frag[start:i+1])
				start = -1
			}
			depth--
		}
	}
	return spans
}

func nextNonSpace(b []byte, i int) byte {
	for ; i < len(b); i++ {
		if !isSpace(b[i]) {
			return b[i]
		}
	}
	return 0
}

func lastNonSpace(b []byte) byte {
	for i := len(b) - 1; i >= 0; i-- {
		if !isSpace(b[i]) {
			return b[i]
		}
	}
	return 0
}

func isSpace(c byte) bool { return c == ' ' || c == '\n' || c == '\r' || c == '\t' }
