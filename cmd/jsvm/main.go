// Command jsvm is a small embedder demo: it assembles one of the bundled
// demo CodeBlocks (cmd/jsvm/demos.go) and runs it to completion, printing
// the result plus an optional profiling/debug report. Grounded on the
// teacher's cmd/hey entry point (urfave/cli/v3 root command with top-level
// flags and an Action closure), minus the PHP lexer/parser/compiler chain
// this module has no equivalent of -- there is no source syntax here, only
// bytecode, so "running a program" means picking one of the hand-assembled
// demos rather than parsing a file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/wudi/escargot-core/config"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
	"github.com/wudi/escargot-core/version"
	"github.com/wudi/escargot-core/vm"
)

func main() {
	app := &cli.Command{
		Name:  "jsvm",
		Usage: "escargot-core demo driver: runs bundled bytecode scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to an optional YAML tuning file (inline-cache thresholds, dispatch mode)",
			},
			&cli.StringFlag{
				Name:  "debug-level",
				Usage: "none, basic, or detailed -- overrides the config file's debug_level",
			},
			&cli.BoolFlag{
				Name:  "profile",
				Usage: "print the profiling report after the run",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "list the available demo scenarios and exit",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("list") || cmd.Args().Len() == 0 {
				fmt.Print(listDemos())
				if cmd.Args().Len() == 0 && !cmd.Bool("list") {
					return fmt.Errorf("jsvm: pass a demo name, e.g. `jsvm overflow-loop`")
				}
				return nil
			}

			name := cmd.Args().First()
			d, ok := findDemo(name)
			if !ok {
				return fmt.Errorf("jsvm: unknown demo %q\n%s", name, listDemos())
			}

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			cfg.Apply()
			if level := cmd.String("debug-level"); level != "" {
				cfg.DebugLevel = level
			}

			machine := vm.NewVirtualMachineWithOptions(parseDebugLevel(cfg.DebugLevel), cfg.MaxCallDepth)
			state := vm.NewExecutionState(machine, registry.NewRealm())

			result, runErr := machine.RunProgram(state, d.build())

			highlight := isatty.IsTerminal(os.Stdout.Fd())
			printResult(d, result, runErr, highlight)

			if cmd.Bool("profile") {
				fmt.Println(machine.ProfileReport())
				for _, hot := range machine.HotSpots(5) {
					fmt.Printf("  ip=%d count=%d\n", hot.IP, hot.Count)
				}
			}

			if runErr != nil {
				os.Exit(1)
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "jsvm (%s): %v\n", version.Version(), err)
		os.Exit(1)
	}
}

func parseDebugLevel(s string) vm.DebugLevel {
	switch s {
	case "basic":
		return vm.DebugLevelBasic
	case "detailed":
		return vm.DebugLevelDetailed
	default:
		return vm.DebugLevelNone
	}
}

func printResult(d demo, result values.Value, err error, highlight bool) {
	if err != nil {
		if highlight {
			fmt.Fprintf(os.Stderr, "\x1b[31m%s: error: %v\x1b[0m\n", d.name, err)
		} else {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", d.name, err)
		}
		return
	}
	if highlight {
		fmt.Printf("\x1b[32m%s\x1b[0m => %s\n", d.name, result.String())
	} else {
		fmt.Printf("%s => %s\n", d.name, result.String())
	}
}
