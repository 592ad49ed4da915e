package ui

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/session"
	"github.com/KernelPryanic/fs-manager/internal/tree"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// helpText lists the commands the shell understands.
const helpText = `Available commands:
  cd <alias>                   descend into a directory
  back                         return to the previous position
  up                           move to the structural parent
  ls                           list the children of the current position
  pwd                          print the current physical path
  tree                         render the subtree at the current position
  mkdir [alias] [path] [mode]  create a directory
  mkfile [alias] [path] [mode] create a file
  rm <alias>                   remove a node with its whole subtree
  chmod <alias> <mode>         change the permissions of a node
  mv <alias> <dst>             move a node to a new relative path
  cp <alias> <dst> [alias]     copy a node to a new relative path
  save                         persist the structure document
  load                         reload the structure document
  snappy [root-bound]          rebuild the hierarchy from disk
  hash [algorithm]             capture hashsums below the current position
  check [algorithm]            verify hashsums below the current position
  verify                       check the hierarchy against the disk
  quit                         leave the shell`

// executeCommand runs a single shell command line against the session,
// returning the text to print and an optional [tea.Cmd] for asynchronous
// follow-up work.
//
//nolint:funlen
func (m TeaModel) executeCommand(line string) (string, tea.Cmd) {
	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]

	switch command {
	case "help":
		return helpText, nil

	case "quit", "exit":
		return "Leaving the shell.", tea.Quit

	case "pwd":
		return m.session.Pwd(), nil

	case "cd":
		if len(args) != 1 {
			return "usage: cd <alias>", nil
		}
		if err := m.session.Cd(args[0]); err != nil {
			return errText(err), nil
		}

		return "position: " + m.session.Pwd(), nil

	case "back":
		if err := m.session.Back(); err != nil {
			return errText(err), nil
		}

		return "position: " + m.session.Pwd(), nil

	case "up":
		if err := m.session.Up(); err != nil {
			return errText(err), nil
		}

		return "position: " + m.session.Pwd(), nil

	case "ls":
		return m.renderLs(), nil

	case "tree":
		return m.renderTree(), nil

	case "mkdir":
		return m.runMake(args, schema.KindDirectory), nil

	case "mkfile":
		return m.runMake(args, schema.KindFile), nil

	case "rm":
		if len(args) != 1 {
			return "usage: rm <alias>", nil
		}
		if err := m.session.Rm(args[0]); err != nil {
			return errText(err), nil
		}

		return fmt.Sprintf("removed %q", args[0]), nil

	case "chmod":
		if len(args) != 2 {
			return "usage: chmod <alias> <mode>", nil
		}
		mode, err := parseMode(args[1])
		if err != nil {
			return errText(err), nil
		}
		if err := m.session.Chmod(args[0], mode); err != nil {
			return errText(err), nil
		}

		return fmt.Sprintf("changed %q to %04o", args[0], mode), nil

	case "mv":
		if len(args) != 2 {
			return "usage: mv <alias> <dst>", nil
		}
		if err := m.session.Mv(args[0], args[1]); err != nil {
			return errText(err), nil
		}

		return fmt.Sprintf("moved %q to %s", args[0], args[1]), nil

	case "cp":
		if len(args) < 2 || len(args) > 3 {
			return "usage: cp <alias> <dst> [alias]", nil
		}
		opts := session.CopyOptions{}
		if len(args) == 3 {
			opts.Alias = args[2]
		}
		n, err := m.session.Cp(args[0], args[1], opts)
		if err != nil {
			return errText(err), nil
		}

		return fmt.Sprintf("copied %q to %q at %s", args[0], n.Alias(), n.Path()), nil

	case "save":
		if err := m.session.SaveAll(); err != nil {
			return errText(err), nil
		}

		return "structure document saved", nil

	case "load":
		if err := m.session.LoadAll(); err != nil {
			return errText(err), nil
		}

		return fmt.Sprintf("structure document loaded (%d nodes)", m.session.Tree().Len()), nil

	case "snappy":
		if err := m.session.Snappy(len(args) > 0 && args[0] == "root-bound"); err != nil {
			return errText(err), nil
		}

		return fmt.Sprintf("hierarchy rebuilt from disk (%d nodes)", m.session.Tree().Len()), nil

	case "verify":
		if err := m.session.Verify(); err != nil {
			return errText(err), nil
		}

		return "hierarchy is consistent with the disk", nil

	case "hash":
		algorithm, err := parseAlgorithm(args)
		if err != nil {
			return errText(err), nil
		}
		sess := m.session

		return "hashsum capture started", func() tea.Msg {
			return HashDoneMsg{op: "hash", err: sess.SaveHashsums(context.Background(), algorithm)}
		}

	case "check":
		algorithm, err := parseAlgorithm(args)
		if err != nil {
			return errText(err), nil
		}
		sess := m.session

		return "hashsum verification started", func() tea.Msg {
			mismatched, err := sess.CheckHashsums(context.Background(), algorithm, true)

			return HashDoneMsg{op: "check", mismatched: mismatched, err: err}
		}

	default:
		return fmt.Sprintf("unknown command %q, help lists the available commands", command), nil
	}
}

// runMake handles the argument shapes of the mkdir and mkfile commands.
func (m TeaModel) runMake(args []string, kind schema.Kind) string {
	if len(args) > 3 {
		return "usage: mkdir/mkfile [alias] [path] [mode]"
	}

	opts := session.MakeOptions{}
	if len(args) > 0 {
		opts.Alias = args[0]
	}
	if len(args) > 1 {
		opts.Path = args[1]
	}
	if len(args) > 2 {
		mode, err := parseMode(args[2])
		if err != nil {
			return errText(err)
		}
		opts.Mode = &mode
	}

	var n *tree.Node
	var err error

	if kind == schema.KindDirectory {
		n, err = m.session.Mkdir(opts)
	} else {
		n, err = m.session.Mkfile(opts)
	}
	if err != nil {
		return errText(err)
	}

	return fmt.Sprintf("created %q at %s", n.Alias(), n.Path())
}

// renderLs lists the children of the current position with their kind,
// permissions and, for files, their physical size.
func (m TeaModel) renderLs() string {
	var lines []string

	for alias, kind := range m.session.Ls() {
		n, err := m.session.Find(alias)
		if err != nil {
			continue
		}

		glyph := "d"
		size := ""
		if kind == schema.KindFile {
			glyph = "f"
			if entry, err := m.session.Backend().Stat(n.Path()); err == nil {
				size = "  " + humanize.Bytes(uint64(entry.Size))
			}
		}

		lines = append(lines, fmt.Sprintf("[%s] %04o  %s%s", glyph, n.Mode(), alias, size))
	}

	if len(lines) == 0 {
		return "(empty)"
	}

	return strings.Join(lines, "\n")
}

// renderTree renders the subtree at the current position, one node per
// line, indented by depth.
func (m TeaModel) renderTree() string {
	var lines []string

	start := m.session.Current()
	lines = append(lines, start.Path())

	m.session.Tree().Walk(start, func(n *tree.Node) bool {
		if n == start {
			return true
		}

		indent := strings.Repeat("  ", n.Depth()-start.Depth())

		glyph := "d"
		size := ""
		if n.Kind() == schema.KindFile {
			glyph = "f"
			if entry, err := m.session.Backend().Stat(n.Path()); err == nil {
				size = "  " + humanize.Bytes(uint64(entry.Size))
			}
		}

		lines = append(lines, fmt.Sprintf("%s[%s] %s%s", indent, glyph, n.Alias(), size))

		return true
	})

	return strings.Join(lines, "\n")
}

// parseMode parses an octal permission string ("750") into a file mode.
func parseMode(arg string) (fs.FileMode, error) {
	value, err := strconv.ParseUint(arg, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("(ui-command) invalid mode %q: %w", arg, err)
	}

	return fs.FileMode(value).Perm(), nil
}

// parseAlgorithm maps an optional algorithm argument onto a [hashsum.Algorithm],
// with the empty value standing for the session default.
func parseAlgorithm(args []string) (hashsum.Algorithm, error) {
	if len(args) == 0 {
		return "", nil
	}

	algorithm := hashsum.Algorithm(strings.ToLower(args[0]))
	if !algorithm.Valid() {
		return "", fmt.Errorf("(ui-command) %w: %q", hashsum.ErrUnsupportedAlgorithm, args[0])
	}

	return algorithm, nil
}

// errText renders an error for the output panel.
func errText(err error) string {
	return "error: " + err.Error()
}
