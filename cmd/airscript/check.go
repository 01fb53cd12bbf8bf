package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/driver"
	"github.com/Airsequel/AirScript/pkg/engine"
)

func (c *cli) checkCommand() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "check <script>...",
		Short: "Parse and type-check scripts without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input []byte
			if inputPath != "" {
				data, err := c.readInput(inputPath)
				if err != nil {
					return err
				}
				input = data
			}
			host, err := c.newHost(1)
			if err != nil {
				return err
			}
			for _, path := range args {
				req, err := driver.LoadRequest(path, input)
				if err != nil {
					return err
				}
				out := host.Check(req)
				if out.Err == nil {
					fmt.Fprintf(c.stdout, "%s: ok\n", path)
					continue
				}
				driver.Render(out, c.stdout, c.stderr)
				if c.exitCode == 0 {
					c.exitCode = driver.ExitCode(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Sample JSON for $input, used for its type; - reads stdin.")
	return cmd
}

func (c *cli) parseCommand() *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "parse <script>",
		Short: "Check a script's syntax, optionally printing its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, body, err := driver.SplitFrontmatter(string(source))
			if err != nil {
				return err
			}
			script, err := engine.Parse(body)
			if err != nil {
				driver.Render(driver.Outcome{Err: err, Stage: engine.StageParse}, c.stdout, c.stderr)
				c.exitCode = driver.ExitRejected
				return nil
			}
			if tree {
				fmt.Fprint(c.stdout, ast.Dump(script))
				return nil
			}
			fmt.Fprintf(c.stdout, "%s: ok\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "Print the syntax tree.")
	return cmd
}
