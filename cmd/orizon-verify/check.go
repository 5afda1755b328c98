package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/orizon-verify/internal/verifycache"
	"github.com/orizon-lang/orizon-verify/internal/verifyconfig"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifypipeline"
	"github.com/orizon-lang/orizon-verify/internal/verifyreport"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var (
		watch    bool
		noColor  bool
		useCache bool
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Verify every included source file's function contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			run := func() bool {
				return runCheck(cmd, opts.cfg, root, !noColor, useCache)
			}

			if !watch {
				if !run() {
					return errCheckFailed
				}
				return nil
			}
			return watchAndRun(cmd, root, run)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "re-run on every source file change (fsnotify)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colorized diagnostics")
	cmd.Flags().BoolVar(&useCache, "cache", true, "skip functions whose source/contract hash is already cached clean")
	return cmd
}

// errCheckFailed is returned once runCheck has already written the real
// diagnostics to stdout and reported failure; newRootCommand's
// SilenceUsage only suppresses the usage text, so its short message is
// still printed.
var errCheckFailed = fmt.Errorf("check found errors")

// runCheck checks every discovered source file under root and prints a
// report; it returns false if any file had errors, matching the
// per-definition recovery policy (a bad function doesn't stop its
// siblings, but a bad run should still report failure to the shell).
func runCheck(cmd *cobra.Command, cfg *verifyconfig.Config, root string, colorize, useCache bool) bool {
	files, err := verifyconfig.Discover(cfg, root)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "discover sources:", err)
		return false
	}

	var cache verifycache.Cache
	if useCache && cfg.Cache.Enabled {
		c, err := verifycache.Open(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "open cache:", err)
		} else {
			cache = c
			defer cache.Close()
		}
	}

	var report verifyreport.Report
	ok := true
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), path, ":", err)
			ok = false
			continue
		}
		if !checkFile(cmd, &report, cache, path, string(src), cfg.VerifierVersion) {
			ok = false
		}
	}

	report.Print(cmd.OutOrStdout(), nil, colorize)
	return ok && !report.HasErrors()
}

func checkFile(cmd *cobra.Command, report *verifyreport.Report, cache verifycache.Cache, path, src, versionConstraint string) bool {
	outcome := verifypipeline.Run(path, src, versionConstraint)
	if len(outcome.ParseErrors) != 0 || len(outcome.BuildErrors) != 0 {
		for _, e := range outcome.ParseErrors {
			fmt.Fprintln(cmd.ErrOrStderr(), path, ":", e)
		}
		for _, e := range outcome.BuildErrors {
			if ve, isVE := asVerifyError(e); isVE {
				report.AddError(ve)
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), path, ":", e)
			}
		}
		return false
	}

	ok := true
	for _, fn := range outcome.Functions {
		key := verifycache.HashKey(fn.Name, src)
		if cache != nil {
			if res, hit, _ := cache.Get(key); hit {
				if !res.OK {
					fmt.Fprintln(cmd.ErrOrStderr(), path, fn.Name, ":", res.Message)
					ok = false
				}
				continue
			}
		}

		clean := len(fn.Errors) == 0
		for _, e := range fn.Errors {
			if ve, isVE := asVerifyError(e); isVE {
				report.AddError(ve)
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), path, fn.Name, ":", e)
			}
		}
		if !clean {
			ok = false
		}

		if cache != nil {
			msg := ""
			if !clean && len(fn.Errors) > 0 {
				msg = fn.Errors[0].Error()
			}
			_ = cache.Put(key, verifycache.Result{OK: clean, CheckedAt: time.Now(), Message: msg})
		}
	}
	return ok
}

func asVerifyError(err error) (*verifyerrors.Error, bool) {
	ve, ok := err.(*verifyerrors.Error)
	return ve, ok
}
