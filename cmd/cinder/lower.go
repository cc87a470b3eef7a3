package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cinder/internal/cir"
	"cinder/internal/decl"
	"cinder/internal/driver"
	"cinder/internal/layout"
	"cinder/internal/types"
)

var lowerCmd = &cobra.Command{
	Use:   "lower <fixture.toml>",
	Short: "Lower fixture functions to CIR and print their entry blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().Bool("no-cache", false, "always re-lower, ignoring the dump cache")
}

func runLower(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	data, err := os.ReadFile(args[0])
	if err != nil {
		errorf("reading fixture: %v", err)
		return err
	}
	hash := driver.HashFixture(data)

	colored := useColor(cmd)

	noCache, _ := cmd.Flags().GetBool("no-cache")
	var cache *driver.DiskCache
	if !noCache {
		// A broken cache is never fatal; lowering proceeds without it.
		cache, _ = driver.OpenDiskCache("cinder")
	}
	// The cache stores plain text only, so colored output always re-lowers.
	if cache != nil && !colored {
		if payload, ok := cache.Load(hash); ok {
			for _, dump := range payload.Dumps {
				fmt.Print(dump)
			}
			return nil
		}
	}

	typesIn := types.NewInterner()
	funcs, err := decl.ParseFixture(data, typesIn)
	if err != nil {
		errorf("%v", err)
		return err
	}
	eng := layout.New(layout.X86_64LinuxGNU(), typesIn)

	lowered, err := driver.LowerFuncs(cmd.Context(), typesIn, eng, funcs)
	if err != nil {
		errorf("%v", err)
		return err
	}

	payload := &driver.DiskPayload{FixtureHash: hash}
	for _, lf := range lowered {
		var plain strings.Builder
		if err := cir.DumpFunc(&plain, lf.Func, typesIn, cir.DumpOptions{}); err != nil {
			return err
		}
		payload.Names = append(payload.Names, lf.Func.Name)
		payload.Dumps = append(payload.Dumps, plain.String())

		if colored {
			if err := cir.DumpFunc(os.Stdout, lf.Func, typesIn, cir.DumpOptions{Color: true}); err != nil {
				return err
			}
		} else {
			fmt.Print(plain.String())
		}
	}

	if cache != nil {
		if err := cache.Store(payload); err != nil {
			errorf("caching dumps: %v", err)
		}
	}
	return nil
}
