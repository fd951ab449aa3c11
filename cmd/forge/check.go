package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

type checkResult struct {
	target   string
	enabled  int
	disabled int
	elapsed  time.Duration
	err      error
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [target...]",
		Short: "Resolve several targets at once and summarize them",
		Long: `Resolve every target of the project, or the ones named, concurrently and
print how many components each enables. The command fails if any target
cannot be loaded or, with --strict, routes to an unknown component.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, err := a.open(cmd)
			if err != nil {
				return err
			}
			targets := args
			if len(targets) == 0 {
				if targets, err = p.TargetIDs(); err != nil {
					return err
				}
			}

			start := time.Now()
			results := make([]checkResult, len(targets))
			var wg sync.WaitGroup
			for i, id := range targets {
				wg.Add(1)
				go func(i int, id string) {
					defer wg.Done()
					began := time.Now()
					r := checkResult{target: id}
					res, err := p.Resolve(ctx, id)
					if err != nil {
						r.err = err
					} else {
						r.disabled = res.DisabledCount()
						r.enabled = p.Resolver.Len() - r.disabled
					}
					r.elapsed = time.Since(began)
					results[i] = r
				}(i, id)
			}
			wg.Wait()

			out := cmd.OutOrStdout()
			var errs []error
			for _, r := range results {
				if r.err != nil {
					fmt.Fprintf(out, "  ✗ %-20s %v\n", r.target, r.err)
					errs = append(errs, r.err)
					continue
				}
				fmt.Fprintf(out, "  ✓ %-20s %d enabled, %d disabled (%v)\n", r.target, r.enabled, r.disabled, r.elapsed.Round(time.Microsecond))
			}
			fmt.Fprintf(out, "\nChecked %d target(s) in %v\n", len(results), time.Since(start).Round(time.Microsecond))
			return utilerrors.NewAggregate(errs)
		},
	}
}
