// Package console provides an interactive debug REPL over a running
// fleetcore engine, in the shape of the teacher's server/console package:
// a go-prompt driven line reader with tab completion backed by a small
// command table (console.go).
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/openhaul/fleetcore/core"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// CommandFunc executes one console command against eng, returning the text
// to print (empty for no output).
type CommandFunc func(eng *core.Engine, args []string) string

// Command is one entry in the console's command table.
type Command struct {
	Name  string
	Usage string
	Run   CommandFunc
}

// Console reads commands from an io.Reader (defaulting to os.Stdin) and
// runs them against the bound engine.
type Console struct {
	eng      *core.Engine
	log      *slog.Logger
	reader   io.Reader
	history  []string
	commands map[string]Command
}

// New returns a Console bound to eng. The console reads from os.Stdin and
// writes command output to log.
func New(eng *core.Engine, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		eng:      eng,
		log:      log,
		reader:   os.Stdin,
		commands: builtinCommands(),
	}
}

// WithReader sets a custom reader for the console input, for testing
// without relying on os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run starts consuming commands. It blocks until ctx is cancelled or the
// underlying reader reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("Fleet Core Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	name := strings.ToLower(fields[0])
	cmd, ok := c.commands[name]
	if !ok {
		c.log.Error("unknown console command", "name", name)
		return
	}
	if out := cmd.Run(c.eng, fields[1:]); out != "" {
		c.log.Info(out)
	}
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.ToLower(doc.GetWordBeforeCursor())
	names := make([]string, 0, len(c.commands))
	for n := range c.commands {
		names = append(names, n)
	}
	sort.Strings(names)

	suggestions := make([]prompt.Suggest, 0, len(names))
	for _, n := range names {
		suggestions = append(suggestions, prompt.Suggest{Text: n, Description: c.commands[n].Usage})
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}

func builtinCommands() map[string]Command {
	cmds := []Command{
		{Name: "agents", Usage: "list every registered agent and its scheduling state", Run: cmdAgents},
		{Name: "jobs", Usage: "list every tracked job and its state", Run: cmdJobs},
		{Name: "settings", Usage: "settings get <key> | settings set <key> <value>", Run: cmdSettings},
		{Name: "debug", Usage: "debug fast-deconstruct on|off", Run: cmdDebug},
		{Name: "help", Usage: "list available commands", Run: nil},
	}
	out := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		out[c.Name] = c
	}
	out["help"] = Command{Name: "help", Usage: out["help"].Usage, Run: func(eng *core.Engine, args []string) string {
		names := make([]string, 0, len(out))
		for n := range out {
			names = append(names, n)
		}
		sort.Strings(names)
		return strings.Join(names, ", ")
	}}
	return out
}

func cmdAgents(eng *core.Engine, args []string) string {
	agents := eng.Agents.All()
	var b strings.Builder
	for _, a := range agents {
		fmt.Fprintf(&b, "%d: %s (scheduling=%d busyUntil=%d jobs=%d)\n",
			a.ID, a.Name, a.Scheduling, a.BusyUntilTick, len(a.Jobs))
	}
	return b.String()
}

func cmdJobs(eng *core.Engine, args []string) string {
	jobs := eng.Jobs.All()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	var b strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&b, "%d: %s creator=%s state=%d participants=%d\n",
			j.ID, j.Kind, j.Creator, j.State, len(j.Participants))
	}
	return b.String()
}

// cmdSettings implements "settings get <key>" / "settings set <key>
// <value>" over the engine's live Settings (SPEC_FULL.md debug console).
func cmdSettings(eng *core.Engine, args []string) string {
	if len(args) < 2 {
		return "usage: settings get <key> | settings set <key> <value>"
	}
	switch args[0] {
	case "get":
		return settingsGet(eng.Settings, args[1])
	case "set":
		if len(args) != 3 {
			return "usage: settings set <key> <value>"
		}
		return settingsSet(eng.Settings, args[1], args[2])
	default:
		return "usage: settings get <key> | settings set <key> <value>"
	}
}

func settingsGet(s *core.Settings, key string) string {
	switch key {
	case "show-robot-state":
		return strconv.FormatBool(s.ShowRobotState)
	case "end-of-task-wait-ticks":
		return strconv.Itoa(s.Robot.EndOfTaskWaitTicks)
	default:
		return fmt.Sprintf("unknown setting %q", key)
	}
}

func settingsSet(s *core.Settings, key, value string) string {
	switch key {
	case "show-robot-state":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Sprintf("invalid bool %q for %s", value, key)
		}
		s.ShowRobotState = b
		return fmt.Sprintf("%s = %v", key, b)
	case "end-of-task-wait-ticks":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("invalid int %q for %s", value, key)
		}
		s.Robot.EndOfTaskWaitTicks = n
		return fmt.Sprintf("%s = %d", key, n)
	default:
		return fmt.Sprintf("unknown setting %q", key)
	}
}

// cmdDebug implements "debug fast-deconstruct on|off" (SPEC_FULL.md debug
// console), toggling the same Settings.Debug.FastDeconstruct flag the
// deconstruct task checks every mine (deconstruct_task.go).
func cmdDebug(eng *core.Engine, args []string) string {
	if len(args) != 2 || args[0] != "fast-deconstruct" {
		return "usage: debug fast-deconstruct on|off"
	}
	switch args[1] {
	case "on":
		eng.Settings.Debug.FastDeconstruct = true
	case "off":
		eng.Settings.Debug.FastDeconstruct = false
	default:
		return "usage: debug fast-deconstruct on|off"
	}
	return fmt.Sprintf("debug fast-deconstruct = %v", eng.Settings.Debug.FastDeconstruct)
}
