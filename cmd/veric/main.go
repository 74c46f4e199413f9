// Command veric is the reference CLI harness for the dispatch core: it
// loads a scenario file (a symbol table snapshot plus one call to
// resolve), runs the dispatcher, and prints the resulting return type
// and diagnostics to stdout. Colorizes diagnostic headers only when
// stdout is a real terminal, via isatty.IsTerminal/IsCygwinTerminal.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/dispatch"
	"github.com/veridian-lang/veri/internal/types"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: veric <scenario.yaml> [policy.yaml]")
		os.Exit(2)
	}

	sc, err := loadScenario(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "veric: %v\n", err)
		os.Exit(1)
	}

	policy := config.DefaultPolicy()
	if len(os.Args) >= 3 {
		policy, err = config.LoadPolicy(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "veric: loading policy: %v\n", err)
			os.Exit(1)
		}
	}

	snap, err := sc.BuildSnapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "veric: building snapshot: %v\n", err)
		os.Exit(1)
	}

	receiver, err := sc.Receiver.ToType()
	if err != nil {
		fmt.Fprintf(os.Stderr, "veric: receiver: %v\n", err)
		os.Exit(1)
	}

	args, err := buildDispatchArgs(sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "veric: arguments: %v\n", err)
		os.Exit(1)
	}

	d := dispatch.New(snap, policy)
	result := d.Dispatch(receiver, args)

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	printResult(os.Stdout, result, color)
}

// runScenario runs a parsed Scenario end to end and returns its dispatch
// result, for callers (the txtar-driven scenario tests) that don't need
// the os.Args/exit-code plumbing above; main performs the same steps
// inline.
func runScenario(sc Scenario, policy config.Policy) (dispatch.DispatchResult, error) {
	snap, err := sc.BuildSnapshot()
	if err != nil {
		return dispatch.DispatchResult{}, fmt.Errorf("building snapshot: %w", err)
	}
	receiver, err := sc.Receiver.ToType()
	if err != nil {
		return dispatch.DispatchResult{}, fmt.Errorf("receiver: %w", err)
	}
	args, err := buildDispatchArgs(sc)
	if err != nil {
		return dispatch.DispatchResult{}, fmt.Errorf("arguments: %w", err)
	}
	d := dispatch.New(snap, policy)
	return d.Dispatch(receiver, args), nil
}

func loadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

func buildDispatchArgs(sc Scenario) (dispatch.DispatchArgs, error) {
	var args []dispatch.Arg
	for _, a := range sc.Args {
		t, err := a.Type.ToType()
		if err != nil {
			return dispatch.DispatchArgs{}, err
		}
		args = append(args, dispatch.Arg{Type: t, KeyName: a.Key, IsKeyword: a.Keyword})
	}

	numPos := 0
	for _, a := range sc.Args {
		if !a.Keyword {
			numPos++
		}
	}

	block := dispatch.Block{Arity: -1}
	if sc.Block != nil {
		block.Present = true
		block.Arity = sc.Block.Arity
		if sc.Block.ReturnType != nil {
			rt, err := sc.Block.ReturnType.ToType()
			if err != nil {
				return dispatch.DispatchArgs{}, err
			}
			block.ReturnType = rt
		}
		for _, p := range sc.Block.ParamTypes {
			pt, err := p.ToType()
			if err != nil {
				return dispatch.DispatchArgs{}, err
			}
			block.ParamTypes = append(block.ParamTypes, pt)
		}
	}

	return dispatch.DispatchArgs{
		Name:       sc.Call,
		NumPosArgs: numPos,
		Args:       args,
		Block:      block,
		RequestID:  uuid.New(),
	}, nil
}

func printResult(w io.Writer, r dispatch.DispatchResult, color bool) {
	fmt.Fprintf(w, "return type: %s\n", safeTypeString(r.ReturnType))
	for _, d := range r.Main.Errors.Items() {
		printDiagnostic(w, d.Error(), d.Code.Severity(), color)
	}
	if r.Secondary != nil && r.Secondary.Errors != nil {
		for _, d := range r.Secondary.Errors.Items() {
			printDiagnostic(w, d.Error(), d.Code.Severity(), color)
		}
	}
}

func printDiagnostic(w io.Writer, msg string, sev diag.Severity, color bool) {
	if !color {
		fmt.Fprintln(w, msg)
		return
	}
	const (
		red    = "\x1b[31m"
		yellow = "\x1b[33m"
		reset  = "\x1b[0m"
	)
	prefix := yellow
	if sev == diag.SeverityError {
		prefix = red
	}
	fmt.Fprintln(w, prefix+msg+reset)
}

func safeTypeString(t types.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
