package main

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
)

func TestGenSecretsOutputsEnvAssignments(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"gen-secrets"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	pattern := regexp.MustCompile(`^GOGUARD_JWT_SECRET=[0-9a-f]{64}\nGOGUARD_SERVER_OPERATOR_TOKEN=[0-9a-f]{48}\n$`)
	if !pattern.MatchString(out.String()) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestGenSecretsPropagatesEntropyError(t *testing.T) {
	original := randomRead
	t.Cleanup(func() { randomRead = original })
	randomRead = func([]byte) (int, error) { return 0, errors.New("no entropy") }

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"gen-secrets"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestServeRejectsMissingExplicitConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--config", t.TempDir() + "/absent.yaml", "--env-file", ""})

	if err := cmd.Execute(); err == nil {
		t.Fatal("an explicit config file that does not exist must fail")
	}
}
