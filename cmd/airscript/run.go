package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Airsequel/AirScript/pkg/driver"
)

func (c *cli) runCommand() *cobra.Command {
	var (
		inputPath   string
		stats       bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "run <script>...",
		Short: "Run scripts and print their Ok values as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := c.readInput(inputPath)
			if err != nil {
				return err
			}
			host, err := c.newHost(concurrency)
			if err != nil {
				return err
			}
			reqs := make([]driver.Request, len(args))
			for i, path := range args {
				if reqs[i], err = driver.LoadRequest(path, input); err != nil {
					return err
				}
			}
			for _, out := range host.InvokeBatch(cmd.Context(), reqs) {
				code := driver.Render(out, c.stdout, c.stderr)
				if stats && out.Err == nil {
					usage := out.Result.Usage
					fmt.Fprintf(c.stderr, "%s: %s, %d cycles, %s allocated, %s\n",
						out.Name, out.Label(), usage.Cycles, humanize.Bytes(uint64(usage.MemoryBytes)), usage.WallTime)
				}
				if c.exitCode == 0 {
					c.exitCode = code
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file bound to $input; - reads stdin (piped stdin is read by default).")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print resource usage to stderr.")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Scripts run at once (default: number of CPUs).")
	return cmd
}

// readInput returns the $input payload, or nil when there is none.
func (c *cli) readInput(path string) ([]byte, error) {
	switch path {
	case "":
		f, ok := c.stdin.(*os.File)
		if !ok {
			return nil, nil
		}
		info, err := f.Stat()
		if err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return nil, nil
		}
		return io.ReadAll(f)
	case "-":
		return io.ReadAll(c.stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read input %s", path)
	}
	return data, nil
}
