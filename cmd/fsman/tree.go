package main

import (
	"fmt"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the logical hierarchy of the base directory",
	Long: `Open a session over the base directory and print its logical hierarchy
as an indented tree: kind, permission bits and alias per node, physical
sizes for files.`,
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	root := sess.Tree().Root()

	fmt.Fprintln(out, root.Path())

	sess.Tree().Walk(root, func(n *tree.Node) bool {
		if n.IsRoot() {
			return true
		}

		glyph := "d"
		size := ""

		if n.Kind() == schema.KindFile {
			glyph = "f"

			if entry, err := sess.Backend().Stat(n.Path()); err == nil {
				size = " (" + humanize.Bytes(uint64(entry.Size)) + ")" //nolint:gosec
			}
		}

		indent := strings.Repeat("  ", n.Depth()-root.Depth())
		fmt.Fprintf(out, "%s[%s] %04o  %s%s\n", indent, glyph, n.Mode(), n.Alias(), size)

		return true
	})

	return sess.Close()
}
