// Package shell implements the line-oriented management prompt of spec
// §6's CLI surface: init/add_app/rm_app, the five search-driver commands,
// status, the show_* tabular views, save/load, and exit. Its structure —
// a Cmd table keyed by name, a CommandStatus result enum, and per-command
// argument parsing through the standard library's flag.FlagSet — follows
// the teacher's own pkg/memtier/prompt.go.
package shell

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/hungalab/board-allocator/pkg/allocator"
	logger "github.com/hungalab/board-allocator/pkg/log"
)

var log = logger.NewLogger("shell")

// Cmd is one registered command: a one-line description for `help`, and
// the function that runs it against the command's remaining arguments.
type Cmd struct {
	description string
	Run         func([]string) CommandStatus
}

// CommandStatus is the outcome of running one command line.
type CommandStatus int

const (
	csOk CommandStatus = iota
	csUnknownCommand
	csError
)

// Prompt is the shell's state: the allocator unit under construction (nil
// until `init`), the read/write ends of the session, and the command
// table. Exactly one AllocatorUnit is live at a time, per spec §9's
// "global search state" note — this is that state's home.
type Prompt struct {
	r    *bufio.Reader
	w    *bufio.Writer
	f    *flag.FlagSet
	ps1  string
	echo bool
	quit bool

	topoPath string
	unit     *allocator.AllocatorUnit
	rng      *rand.Rand

	cmds map[string]Cmd
}

// NewPrompt builds a Prompt with every command registered, reading from
// reader and writing prompts/output to writer. seed makes every driver
// invocation from this session reproducible by default (each driver
// command draws its own sub-seed from it).
func NewPrompt(ps1 string, reader *bufio.Reader, writer *bufio.Writer, seed int64) *Prompt {
	p := &Prompt{
		r:   reader,
		w:   writer,
		ps1: ps1,
		rng: rand.New(rand.NewSource(seed)),
	}
	p.cmds = map[string]Cmd{
		"init":      {"(re)create an empty allocator from a topology file.", p.cmdInit},
		"add_app":   {"add one or more applications from communication files.", p.cmdAddApp},
		"rm_app":    {"remove applications by id, or --all.", p.cmdRmApp},
		"alns":      {"run the adaptive-large-neighborhood-search driver.", p.cmdAlns},
		"twoopt":    {"run the node-swap-only local-search driver.", p.cmdTwoopt},
		"nsga2":     {"run the NSGA-II multi-objective driver.", p.cmdNsga2},
		"ncga":      {"run the neighborhood-cultivation-GA driver.", p.cmdNcga},
		"spea2":     {"run the SPEA2 driver.", p.cmdSpea2},
		"status":    {"print a summary, or with -f a full dump, of the current allocator.", p.cmdStatus},
		"show_apps": {"list applications, optionally filtered with --where.", p.cmdShowApps},
		"show_nodes": {
			"list vNodes and their rNode assignment, optionally filtered with --where.",
			p.cmdShowNodes,
		},
		"show_flows": {"list flows and their slot assignment, optionally filtered with --where.", p.cmdShowFlows},
		"save":       {"write the current allocator to a snapshot file.", p.cmdSave},
		"load":       {"replace the current allocator from a snapshot file.", p.cmdLoad},
		"help":       {"print this help.", p.cmdHelp},
		"nop":        {"no operation.", p.cmdNop},
		"exit":       {"quit the shell, optionally (-i) prompting to save first.", p.cmdExit},
	}
	return p
}

func (p *Prompt) output(format string, a ...interface{}) {
	if p.w == nil {
		return
	}
	fmt.Fprintf(p.w, format, a...)
	p.w.Flush()
}

// requireUnit reports an error and csError if no allocator has been
// created yet; every command but init/help/exit/nop needs one.
func (p *Prompt) requireUnit() bool {
	if p.unit == nil {
		p.output("no allocator: run init first\n")
		return false
	}
	return true
}

// RunCmdSlice dispatches one already-tokenized command line.
func (p *Prompt) RunCmdSlice(cmdSlice []string) CommandStatus {
	if len(cmdSlice) == 0 {
		return csOk
	}
	if cmdSlice[0] == "" {
		cmdSlice[0] = "nop"
	}
	p.f = flag.NewFlagSet(cmdSlice[0], flag.ContinueOnError)
	cmd, ok := p.cmds[cmdSlice[0]]
	if !ok {
		p.output("unknown command %q, try \"help\"\n", cmdSlice[0])
		return csUnknownCommand
	}
	return cmd.Run(cmdSlice[1:])
}

// RunCmdString tokenizes and runs one line of input.
func (p *Prompt) RunCmdString(cmdString string) CommandStatus {
	fields := strings.Fields(cmdString)
	return p.RunCmdSlice(fields)
}

// Interact runs the read-eval-print loop until `exit` or end of input.
func (p *Prompt) Interact() {
	for !p.quit {
		p.output("%s", p.ps1)
		line, err := p.r.ReadString('\n')
		if err != nil {
			p.output("quit: %s\n", err)
			break
		}
		if p.echo {
			p.output("%s", line)
		}
		p.RunCmdString(line)
	}
	p.output("quit.\n")
}

// SetEcho turns on echoing of input lines, for scripted/non-tty sessions.
func (p *Prompt) SetEcho(echo bool) { p.echo = echo }

func (p *Prompt) cmdNop(args []string) CommandStatus { return csOk }

func (p *Prompt) cmdHelp(args []string) CommandStatus {
	p.output("Available commands:\n")
	names := make([]string, 0, len(p.cmds))
	for name := range p.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.output("        %-12s %s\n", name, p.cmds[name].description)
	}
	return csOk
}

func (p *Prompt) cmdExit(args []string) CommandStatus {
	prompt := p.f.Bool("i", false, "prompt to save before quitting")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if *prompt && p.unit != nil {
		p.output("save before exit? [y/N] ")
		answer, _ := p.r.ReadString('\n')
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			p.output("exit: no filename remembered from this session, use \"save <file>\" first\n")
		}
	}
	p.quit = true
	return csOk
}
