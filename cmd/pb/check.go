package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aquaticfungi/pubdb/internal/storage"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the store schema",
	Long: `Check that the store exists and holds the publications table with every
required column. Exits with status 4 when it does not.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	storage.Validation
	Publications int        `json:"publications,omitempty"`
	Size         int64      `json:"size,omitempty"`
	Modified     *time.Time `json:"modified,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	v, err := storage.ValidateStore(cfg.StorePath)
	if err != nil {
		exitWithError(ExitError, "checking store: %v", err)
	}

	result := CheckResult{Validation: v}
	if v.Valid {
		err := storage.WithDB(cfg.StorePath, func(db *storage.DB) error {
			var err error
			result.Publications, err = db.Count(storage.Filter{})
			return err
		})
		if err != nil {
			exitWithError(ExitError, "counting publications: %v", err)
		}
		if info, err := os.Stat(cfg.StorePath); err == nil {
			mod := info.ModTime()
			result.Size = info.Size()
			result.Modified = &mod
		}
	}

	if humanOutput {
		if v.Valid {
			fmt.Printf("%s: ok, %s publications, %s", v.Path,
				humanize.Comma(int64(result.Publications)),
				humanize.Bytes(uint64(result.Size)))
			if result.Modified != nil {
				fmt.Printf(", updated %s", humanize.Time(*result.Modified))
			}
			fmt.Println()
		} else {
			fmt.Printf("%s: invalid: %s\n", v.Path, v.Reason)
		}
	} else {
		outputJSON(result)
	}

	if !v.Valid {
		os.Exit(ExitSchemaError)
	}
	return nil
}
