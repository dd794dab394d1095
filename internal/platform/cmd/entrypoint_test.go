package cmd

import (
	"context"
	"flag"
	"testing"

	"github.com/louisbranch/ledgerdesk/internal/platform/logging"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"CMD_TEST_MODE" envDefault:"server"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("LEDGERDESK_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("LEDGERDESK_CMD_TEST_MODE", "env-mode")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.Address, "address", cfgRef.Address, "address")
	fs.StringVar(&cfgRef.Mode, "mode", cfgRef.Mode, "mode")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.Address != "flag:9001" {
		t.Fatalf("expected flag value for address, got %q", cfgRef.Address)
	}
	if cfgRef.Mode != "env-mode" {
		t.Fatalf("expected env default mode, got %q", cfgRef.Mode)
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetryAndOptions(context.Background(), "", RunOptions{}, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetryAndOptions(context.Background(), ServiceWeb, RunOptions{}, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryRejectsBadLogLevel(t *testing.T) {
	err := RunWithTelemetryAndOptions(context.Background(), ServiceWeb, RunOptions{
		Logging: logging.Options{Level: "loud"},
	}, func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected logging setup error")
	}
}

func TestRunWithTelemetryRunsLoop(t *testing.T) {
	t.Setenv("LEDGERDESK_OTEL_ENDPOINT", "")

	called := false
	err := RunWithTelemetryAndOptions(context.Background(), ServiceWeb, RunOptions{}, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunWithTelemetryAndOptions() error = %v", err)
	}
	if !called {
		t.Fatal("expected run function to be called")
	}
}
