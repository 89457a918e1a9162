package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"blockfall/game"
)

const (
	defaultColor = "37"
	trail        = "::"
	empty        = "  "

	resetPos    = "\033[H"        // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H" // also resets the cursor
	boxWidth    = 38
)

//go:embed "layout.tmpl"
var layout string

type templateData struct {
	Boards []game.Snapshot
}

// message is the text shown in the lobby box, one entry per line.
type message []string

func defaultLobby() message {
	return message{"Welcome to Blockfall", "", "(p)lay   (o)nline   (q)uit"}
}

func waitingServer() message {
	return message{"Welcome to Blockfall", "connecting to server...", "(c)ancel"}
}

func errorMessage() message {
	return message{"something went wrong :(", "", "(p)lay   (o)nline   (q)uit"}
}

func boardClosed() message {
	return message{"the server closed the board", "", "(p)lay   (o)nline   (q)uit"}
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template

	mu   sync.Mutex
	last []game.Snapshot
}

func newRender(l *slog.Logger, cfg game.Config, name string) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   os.Stdout,
		logger:   l,
		template: tmp,
		last:     []game.Snapshot{emptyBoard(cfg, name)},
	}, nil
}

// emptyBoard is what the lobby shows before the first game. Row -1 keeps the
// block off the grid.
func emptyBoard(cfg game.Config, name string) game.Snapshot {
	return game.Snapshot{Rows: cfg.Rows, Cols: cfg.Cols, Row: -1, Name: name, State: game.Idle}
}

// boards draws snaps side by side.
func (r *render) boards(snaps ...game.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(snaps) != len(r.last) {
		fmt.Fprint(r.writer, clearScreen)
	}
	r.last = snaps
	r.draw()
}

// lobby draws the last boards with m boxed on top of them.
func (r *render) lobby(m message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw()
	fmt.Fprintf(r.writer, "\033[10;9H+%s+", strings.Repeat("-", boxWidth))
	for i, line := range m {
		fmt.Fprintf(r.writer, "\033[%d;9H|%s|", 11+i, center(line, boxWidth))
	}
	fmt.Fprintf(r.writer, "\033[%d;9H+%s+", 11+len(m), strings.Repeat("-", boxWidth))
}

func (r *render) draw() {
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, &templateData{Boards: r.last}); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"rows":   rows,
		"row":    boardRow,
		"edge":   edge,
		"bar":    bar,
		"status": statusLine,
		"vs":     vs,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Blockfall", "\033[1mBlockfall\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

// rows returns the row indexes of the tallest board.
func rows(boards []game.Snapshot) []int {
	n := 0
	for _, b := range boards {
		n = max(n, b.Rows)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// boardRow renders row r of s with its side walls. Rows past the bottom of a
// shorter board come back blank so boards stay aligned.
func boardRow(s game.Snapshot, r int) string {
	if r >= s.Rows {
		return strings.Repeat(" ", width(s))
	}
	var sb strings.Builder
	sb.WriteString("|")
	for c := range s.Cols {
		switch {
		case r == s.Row && c == s.Col:
			sb.WriteString(cell(s.Color))
		case r == s.Row && s.Sliding && c == trailCol(s):
			sb.WriteString(trail)
		default:
			sb.WriteString(empty)
		}
	}
	sb.WriteString("|")
	return sb.String()
}

// trailCol is the column the block is sliding away from.
func trailCol(s game.Snapshot) int {
	switch s.Pending {
	case game.Left:
		return s.Col + 1
	case game.Right:
		return s.Col - 1
	}
	return -1
}

func edge(s game.Snapshot) string {
	return "+" + strings.Repeat("-", s.Cols*2) + "+"
}

// bar shows how much of the fall interval has elapsed.
func bar(s game.Snapshot) string {
	w := s.Cols * 2
	n := int(math.Round(s.Progress * float64(w)))
	n = min(max(n, 0), w)
	return "[" + strings.Repeat("=", n) + strings.Repeat(" ", w-n) + "]"
}

func statusLine(s game.Snapshot) string {
	st := s.State.String()
	if s.Landed {
		st = "landed"
	}
	return pad(fmt.Sprintf("%s %s", s.Name, st), width(s))
}

func width(s game.Snapshot) int { return s.Cols*2 + 2 }

func cell(color string) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", ansiColor(color))
}

// ansiColor turns a #rrggbb color into a truecolor foreground code.
func ansiColor(hex string) string {
	h, ok := strings.CutPrefix(hex, "#")
	if !ok || len(h) != 6 {
		return defaultColor
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return defaultColor
	}
	return fmt.Sprintf("38;2;%d;%d;%d", v>>16&0xff, v>>8&0xff, v&0xff)
}

func pad(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}

func center(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	left := (w - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
}

func vs(lName, rName string) string {
	maxL := 9
	l := len(lName)
	switch {
	case l > maxL:
		lName = lName[:maxL]
	case l < maxL:
		lName = strings.Repeat(" ", maxL-len(lName)) + lName
	}

	r := len(rName)
	switch {
	case r > maxL:
		rName = rName[:maxL]
	case r < maxL:
		rName += strings.Repeat(" ", maxL-len(rName))
	}
	return fmt.Sprintf(" %s <- vs -> %s ", lName, rName)
}
