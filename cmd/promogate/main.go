package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davidahmann/promogate/internal/candidate"
	"github.com/davidahmann/promogate/internal/runner"
	"github.com/davidahmann/promogate/internal/safety"
)

func main() {
	exitFn(run(os.Args, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "run":
		return handleRun(args[2:], stdout, stderr)
	case "check-config":
		return handleCheckConfig(args[2:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func handleRun(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", envOrDefault("PROMOGATE_CONFIG", "promogate.yaml"), "runner config path")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	cfg, err := runner.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	summary, err := runner.Run(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	fmt.Fprintf(stdout, "run %s: %d considered, %d accepted, %d rejected\n",
		summary.RunID, summary.Considered, summary.Accepted, summary.Rejected)
	for _, dir := range summary.ProposalDirs {
		fmt.Fprintf(stdout, "proposal: %s\n", dir)
	}
	for _, target := range summary.AppliedTargets {
		fmt.Fprintf(stdout, "auto-applied: %s\n", target)
	}
	return 0
}

func handleCheckConfig(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("check-config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", envOrDefault("PROMOGATE_CONFIG", "promogate.yaml"), "runner config path")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	cfg, err := runner.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if _, err := safety.Load(cfg.SafetyConfigPath); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if cfg.ApprovalsPath != "" {
		if _, err := candidate.LoadApprovals(cfg.ApprovalsPath); err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 1
		}
	}

	fmt.Fprintln(stdout, "config ok")
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: promogate <run|check-config> [flags]")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
