package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/matcher"
	"github.com/typeforge-lang/typeforge/internal/prelude"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

// scenario is one named, self-contained match the "match" command can run
// against the builtin prelude. Real annotation parsing is out of scope
// (§1 Non-goals), so scenarios are built directly out of abstract.Value
// fixtures rather than from a type-annotation string.
type scenario struct {
	name        string
	description string
	run         func(m *matcher.Matcher) (*subst.Subst, []matcher.Error)
}

func scenarios() []scenario {
	return []scenario{
		{
			name:        "int-as-float",
			description: "int instance against a float formal (compatible-builtin rule)",
			run: func(m *matcher.Matcher) (*subst.Subst, []matcher.Error) {
				left := &abstract.Instance{Class: prelude.Int()}
				formal := &abstract.ClassValue{Class: prelude.Float()}
				return m.MatchInstanceAgainstType(services.SimpleNode{Label: "demo"}, left, formal, subst.New(), abstract.NewView())
			},
		},
		{
			name:        "str-vs-iterable-str",
			description: "str instance against Iterable[str] (non-iterable-str guard)",
			run: func(m *matcher.Matcher) (*subst.Subst, []matcher.Error) {
				left := &abstract.Instance{Class: prelude.Str()}
				elemVar := abstract.NewVariable("elem", &abstract.Instance{Class: prelude.Str()})
				formal := &abstract.ClassValue{Class: prelude.Iterable(), TypeArgs: map[string]*abstract.Variable{"T": elemVar}}
				return m.MatchInstanceAgainstType(services.SimpleNode{Label: "demo"}, left, formal, subst.New(), abstract.NewView())
			},
		},
		{
			name:        "list-of-int",
			description: "list[int] instance against list[int] formal",
			run: func(m *matcher.Matcher) (*subst.Subst, []matcher.Error) {
				leftElemVar := abstract.NewVariable("elem", &abstract.Instance{Class: prelude.Int()})
				formalElemVar := abstract.NewVariable("elem-formal", &abstract.ClassValue{Class: prelude.Int()})
				left := &abstract.Instance{Class: prelude.List(), TypeArgs: map[string]*abstract.Variable{"T": leftElemVar}}
				formal := &abstract.ClassValue{Class: prelude.List(), TypeArgs: map[string]*abstract.Variable{"T": formalElemVar}}
				return m.MatchInstanceAgainstType(services.SimpleNode{Label: "demo"}, left, formal, subst.New(), abstract.NewView())
			},
		},
	}
}

func newMatchCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "match [scenario]",
		Short: "Run a builtin match scenario and report the outcome",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			runID := uuid.New().String()
			logger.Infow("starting match run", "run_id", runID)

			m := matcher.New(services.AlwaysReachable{}, services.NewAttrTable(), services.BasicConvert{}, nil, nil)
			m.ObjectClass = prelude.Object()

			all := scenarios()
			if len(args) == 1 {
				found := false
				for _, s := range all {
					if s.name == args[0] {
						all = []scenario{s}
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("unknown scenario %q", args[0])
				}
			}

			for _, s := range all {
				_, errs := s.run(m)
				if errs == nil {
					fmt.Printf("%s: OK — %s\n", s.name, s.description)
					logger.Debugw("scenario matched", "scenario", s.name, "run_id", runID)
					continue
				}
				fmt.Printf("%s: FAIL — %s\n", s.name, s.description)
				if explain {
					for _, line := range explainLines(errs) {
						fmt.Println(line)
					}
				}
				logger.Infow("scenario failed", "scenario", s.name, "run_id", runID, "errors", len(errs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print per-failure error messages")
	return cmd
}

// explainLines renders a scenario's bad-match errors as the lines `match
// --explain` prints, factored out so the rendering itself (not the flag
// plumbing around it) can be snapshot-tested.
func explainLines(errs []matcher.Error) []string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, "  - "+e.Message())
	}
	return lines
}
