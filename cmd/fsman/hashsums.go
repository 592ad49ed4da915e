package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	saveAlgorithm  string
	checkAlgorithm string
	checkQuiet     bool

	saveCmd = &cobra.Command{
		Use:   "save",
		Short: "Capture hashsums for all files of the hierarchy",
		Long: `Open a session over the base directory, digest every tracked file and
record the hashsums in the structure document. A partial capture (some
files unreadable) exits non-zero and names the failed aliases.`,
		RunE: runSave,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify the recorded hashsums of the hierarchy",
		Long: `Open a session over the base directory, digest every tracked file and
compare against the recorded hashsums. Any mismatch (differing digest,
missing record, unreadable file) exits non-zero.`,
		RunE: runCheck,
	}
)

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(checkCmd)

	saveCmd.Flags().StringVarP(&saveAlgorithm, "algorithm", "a", "", "digest algorithm (md5, sha1, sha256, blake3)")
	checkCmd.Flags().StringVarP(&checkAlgorithm, "algorithm", "a", "", "digest algorithm (md5, sha1, sha256, blake3)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "do not log individual mismatches")
}

func runSave(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}

	var errs []error

	algorithm := hashsum.Algorithm(strings.ToLower(saveAlgorithm))

	if err := sess.SaveHashsums(cmd.Context(), algorithm); err != nil {
		errs = append(errs, err)
	} else {
		if algorithm == "" {
			algorithm = sess.Algorithm()
		}

		slog.Info("Hashsums captured.",
			"files", len(sess.HashTargets()),
			"algorithm", algorithm,
		)
	}

	if err := sess.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}

	var errs []error

	algorithm := hashsum.Algorithm(strings.ToLower(checkAlgorithm))

	mismatched, err := sess.CheckHashsums(cmd.Context(), algorithm, !checkQuiet)
	switch {
	case err != nil:
		errs = append(errs, err)

	case len(mismatched) > 0:
		errs = append(errs, fmt.Errorf("%w: %s", ErrHashsumsMismatched, strings.Join(mismatched, ", ")))

	default:
		if algorithm == "" {
			algorithm = sess.Algorithm()
		}

		slog.Info("All hashsums match.",
			"files", len(sess.HashTargets()),
			"algorithm", algorithm,
		)
	}

	if err := sess.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
