package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-trace-deps/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gtd configuration interactively",
	Long: `Guides you through setting up gtd configuration step by step.
Creates a config file with the call depth bound and output settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	depthChoice := "-1"
	var keepData bool
	formatChoice := string(config.FormatText)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Call depth bound").
				Description("How deep to trace through calls; -1 disables the bound").
				Placeholder("-1").
				Value(&depthChoice),
			huh.NewConfirm().
				Title("Keep variable data on edges?").
				Description("Stores full variables on reaching-definition labels instead of counters").
				Affirmative("Keep data").
				Negative("Counters only").
				Value(&keepData),
			huh.NewSelect[string]().
				Title("Default output format").
				Options(
					huh.NewOption("Text edge list", string(config.FormatText)),
					huh.NewOption("JSON", string(config.FormatJSON)),
					huh.NewOption("Graphviz dot", string(config.FormatDot)),
				).
				Value(&formatChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	callDepth, err := strconv.Atoi(depthChoice)
	if err != nil {
		return fmt.Errorf("invalid call depth %q: %w", depthChoice, err)
	}

	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.gtd/config.yaml)", "global"),
					huh.NewOption("Project (./.gtd/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".gtd", "config.yaml")
	} else {
		configPath = ".gtd/config.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.CallDepth = callDepth
	cfg.KeepData = keepData
	cfg.Format = config.OutputFormat(formatChoice)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	if cfg.CallDepth < 0 {
		fmt.Println("Call depth: unbounded")
	} else {
		fmt.Printf("Call depth: %d\n", cfg.CallDepth)
	}
	fmt.Printf("Keep data: %t\n", cfg.KeepData)
	fmt.Printf("Format: %s\n", cfg.Format)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
