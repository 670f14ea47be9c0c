package adapters

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
)

// DivanText reads console output where the harness already computed
// fastest │ slowest │ median │ mean for every bench:
//
//	bench          fastest │ slowest │ median │ mean   │ samples │ iters
//	├─ set                 │         │        │        │         │
//	│  ├─ 10      1.2 µs   │ 3.4 µs  │ 2 µs   │ 2.1 µs │ 100     │ 100
//	╰─ get        120 ns   │ 340 ns  │ 200 ns │ 210 ns │ 100     │ 100
//
// A result line must yield exactly a name and four value+unit fields,
// optionally followed by unitless count columns (samples, iters); any other
// line (banners, progress, garbled capture) is skipped. Nested benches
// are named by their tree path, e.g. "set/10".
type DivanText struct {
	logger interfaces.Logger
}

const (
	treeRunes = `\s│├╰└┌─`
	valueUnit = `([0-9]+(?:\.[0-9]+)?)\s*(ns|µs|μs|us|ms|s)`
	fieldSep  = `\s*[│|]\s*`

	// treeIndent is the rune width of one tree level ("├─ " or "│  ").
	treeIndent = 3
)

var (
	resultLine = regexp.MustCompile(`^([` + treeRunes + `]*)([^` + treeRunes + `|]+)\s+` +
		valueUnit + fieldSep + valueUnit + fieldSep + valueUnit + fieldSep + valueUnit +
		`(?:` + fieldSep + `[0-9]*)*\s*$`)

	groupLine = regexp.MustCompile(`^([` + treeRunes + `]*[├╰└])─\s*([^` + treeRunes + `|]+)[\s│|]*$`)
)

// unitToMicros maps a unit suffix to its multiplier into microseconds.
var unitToMicros = map[string]float64{
	"ns": 1 / types.NanosPerMicro,
	"µs": 1, // U+00B5 MICRO SIGN
	"μs": 1, // U+03BC GREEK SMALL LETTER MU
	"us": 1,
	"ms": types.MicrosPerMilli,
	"s":  types.MicrosPerSecond,
}

// Shape returns types.ShapeDivanText.
func (DivanText) Shape() types.Shape { return types.ShapeDivanText }

// Parse scans r line by line. Only I/O failures and duplicate bench names
// are errors; unmatched lines are counted and skipped.
func (d DivanText) Parse(in types.Input, r io.Reader) ([]types.OperationRun, error) {
	var (
		runs    []types.OperationRun
		seen    = make(map[string]bool)
		groups  []string
		skipped int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if m := resultLine.FindStringSubmatch(line); m != nil {
			summary, ok := parseQuadruple(m[3:11])
			if !ok {
				skipped++
				continue
			}
			depth := treeDepth(m[1])
			name := qualify(groups, depth, strings.TrimSpace(m[2]))
			if depth >= 1 && depth-1 < len(groups) {
				groups = groups[:depth-1]
			}
			if seen[name] {
				return nil, types.Malformed(in.Path, name, "operation appears more than once")
			}
			seen[name] = true
			runs = append(runs, types.OperationRun{Name: name, Summary: &summary})
			continue
		}

		if m := groupLine.FindStringSubmatch(line); m != nil {
			depth := treeDepth(m[1] + "─ ")
			if depth > len(groups)+1 {
				depth = len(groups) + 1
			}
			groups = append(groups[:depth-1], strings.TrimSpace(m[2]))
			continue
		}

		skipped++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", in.Path)
	}

	if d.logger != nil && skipped > 0 {
		d.logger.Info("%s: skipped %d non-result line(s)", in.Path, skipped)
	}
	return runs, nil
}

// parseQuadruple converts four (value, unit) pairs into a Summary in µs.
func parseQuadruple(fields []string) (types.Summary, bool) {
	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(fields[2*i], 64)
		if err != nil {
			return types.Summary{}, false
		}
		mult, ok := unitToMicros[fields[2*i+1]]
		if !ok {
			return types.Summary{}, false
		}
		if mult == 1 {
			vals[i] = v
		} else if mult < 1 {
			vals[i] = v / types.NanosPerMicro
		} else {
			vals[i] = v * mult
		}
	}
	return types.Summary{Fastest: vals[0], Slowest: vals[1], Median: vals[2], Mean: vals[3]}, true
}

// treeDepth converts a tree prefix such as "│  ├─ " into a nesting depth.
func treeDepth(prefix string) int {
	return utf8.RuneCountInString(prefix) / treeIndent
}

// qualify joins the enclosing group names (for depth > 1) with name.
func qualify(groups []string, depth int, name string) string {
	parents := depth - 1
	if parents > len(groups) {
		parents = len(groups)
	}
	if parents <= 0 {
		return name
	}
	return strings.Join(append(append([]string(nil), groups[:parents]...), name), "/")
}
