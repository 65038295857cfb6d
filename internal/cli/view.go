// FILE: internal/cli/view.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"chessbot/internal/board"
	"chessbot/internal/core"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdResume
	CmdMove
	CmdUndo
	CmdMoves
	CmdColor
	CmdVerbose
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

// DefaultTheme picks a colored board for terminals and plain text otherwise
func DefaultTheme(fd int) ColorTheme {
	if term.IsTerminal(fd) {
		return ThemeBrown
	}
	return ThemeOff
}

// LineReader is the line editor behind the view; *readline.Instance satisfies it
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand reads and parses one line. EOF reads as quit, ^C as an empty line.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	switch {
	case errors.Is(err, io.EOF):
		return &Command{Type: CmdQuit}, nil
	case errors.Is(err, readline.ErrInterrupt):
		return &Command{Type: CmdNone}, nil
	case err != nil:
		return nil, err
	}

	return parseCommand(line), nil
}

func parseCommand(input string) *Command {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		return &Command{Type: CmdResume, Args: args, Raw: input}
	case "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "moves":
		return &Command{Type: CmdMoves}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	default:
		// Anything else is taken as a move
		return &Command{Type: CmdMove, Args: []string{cmd}, Raw: input}
	}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// Ask prompts for a single answer
func (c *CLI) Ask(prompt string) string {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (c *CLI) DisplayBoard(b board.Board) {
	theme := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b.At(core.Sq(r, f))

			if c.theme == ThemeOff {
				if piece.IsEmpty() {
					sb.WriteString(". ")
				} else {
					sb.WriteString(fmt.Sprintf("%c ", piece.Letter()))
				}
				continue
			}

			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}
			if piece.IsEmpty() {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if piece.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, piece.Letter(), theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new              - Start a new game with player type selection
  resume <FEN>     - Resume from a specific board position
  <move>           - Make a move (e.g., e2e4, g1f3, e1g1 to castle)
  undo [count]     - Undo last move(s), default 1
  moves            - List legal moves for the side to move
  color <theme>    - Set board color theme (off|brown|green|gray)
  verbose          - Toggle detailed move information
  history          - Show game move history and positions
  quit/exit        - Exit the program
  help/?           - Show this help message

During any game:
  Press ENTER      - Execute computer move (when it's computer's turn)`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new, resume <FEN>, <move>, undo, moves, quit/exit, verbose, history, help/?")
	c.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w K - 0 1' to start from a puzzle.")
	c.ShowMessage("Press ENTER to execute computer moves when it's computer's turn.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(resp core.GameResponse, initialFEN string) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", initialFEN))

	moves := resp.Moves
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", moveNum, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", moveNum, moves[i]))
		}
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", resp.FEN))
	c.ShowMessage(fmt.Sprintf("Game state: %s", resp.State))
}

// describeMove appends capture and special-move notes to a move
func describeMove(info *core.MoveInfo) string {
	s := info.Move
	if info.Captured != "" {
		s += " takes " + info.Captured
	}
	if info.EnPassant {
		s += " en passant"
	}
	if info.Castle != "" {
		s += " (castles, rook " + info.Castle + ")"
	}
	return s
}

func (c *CLI) ShowComputerMove(info *core.MoveInfo) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Computer (%s): %s (depth=%d, score=%d, nodes=%d)",
			info.PlayerColor, describeMove(info), info.Depth, info.Score, info.Nodes))
		return
	}
	c.ShowMessage(fmt.Sprintf("Computer (%s): %s", info.PlayerColor, describeMove(info)))
}

func (c *CLI) ShowHumanMove(info *core.MoveInfo) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Your move: %s", describeMove(info)))
	}
}

func (c *CLI) ShowCheck() {
	c.ShowMessage("Check!")
}

func (c *CLI) ShowGameOver(state string) {
	c.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
	c.ShowMessage("Start a new game with 'new' or 'resume'.")
}
