// Command airscript runs, checks and explores AirScript programs.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Airsequel/AirScript/pkg/driver"
)

// exitUsage is returned for bad flags or arguments.
const exitUsage = 64

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cli struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger

	exitCode int
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{v: viper.New(), stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	return c.exitCode
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "airscript",
		Short:         "Run budgeted AirScript programs",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			logger, err := newLogger(c.v.GetString("log_level"), c.stderr)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}

	c.v.SetEnvPrefix("AIRSCRIPT")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default .airscript.yml in the working or home directory).")
	c.bind(flags, "config", "config")

	flags.String("log-level", "warn", "Log level: debug, info, warn, error or off.")
	c.bind(flags, "log_level", "log-level")

	flags.Int64("cycles", driver.DefaultBudget.MaxCycles, "Default reduction-step budget per script.")
	c.bind(flags, "cycles", "cycles")

	flags.String("memory", "256MiB", "Default memory budget per script, e.g. 64MB.")
	c.bind(flags, "memory", "memory")

	flags.Duration("time", driver.DefaultBudget.MaxWallTime, "Default wall-clock budget per script.")
	c.bind(flags, "time", "time")

	flags.Int64("max-cycles", 0, "Upper bound on any script's cycle budget (0 = no bound).")
	c.bind(flags, "max_cycles", "max-cycles")

	flags.String("max-memory", "", "Upper bound on any script's memory budget.")
	c.bind(flags, "max_memory", "max-memory")

	flags.Duration("max-time", 0, "Upper bound on any script's wall-clock budget.")
	c.bind(flags, "max_time", "max-time")

	root.AddCommand(
		c.runCommand(),
		c.checkCommand(),
		c.parseCommand(),
		c.replCommand(),
		c.versionCommand(),
	)
	return root
}

// bind makes the flag the viper source for key; AIRSCRIPT_<KEY> and the
// config file fill in when the flag is not set.
func (c *cli) bind(flags *pflag.FlagSet, key, flag string) {
	if err := c.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(err)
	}
}

// loadConfig reads the optional config file. A missing default file is fine;
// a missing explicit one is not.
func (c *cli) loadConfig() error {
	if path := c.v.GetString("config"); path != "" {
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
		return nil
	}
	c.v.SetConfigName(".airscript")
	c.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		c.v.AddConfigPath(home)
	}
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}
