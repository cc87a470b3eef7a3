package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cinder/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cinder",
	Short: "Cinder IR generation toolchain",
	Long:  `Cinder lowers function declarations to calling-convention-correct CIR prologues`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag against the output terminal.
func useColor(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	}
}

func errorf(format string, args ...any) {
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
