package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	electionhttp "electoral/contexts/governance/election-engine/transport/http"
)

var (
	chair = strings.Repeat("01", 32)
	ann   = strings.Repeat("a0", 32)
	ben   = strings.Repeat("b0", 32)
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("POSTGRES_DSN", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("electionctl %v: %v (output=%s)", args, err, out)
	}
	return out
}

func TestElectionLifecycleOverBolt(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "cli.db")
	store := []string{"--store", "bolt", "--bolt-path", path}
	with := func(args ...string) []string {
		return append(append([]string(nil), args...), store...)
	}

	out := mustExecute(t, with("create", "--capacity", "1", "--key", "club", "--as", chair)...)
	var election electionhttp.ElectionResponse
	if err := json.Unmarshal([]byte(out), &election); err != nil {
		t.Fatalf("decode create output: %v (%s)", err, out)
	}
	if election.ElectionKey != "club" || election.Stage != "application" {
		t.Fatalf("unexpected election: %+v", election)
	}

	for _, user := range []string{ann, ben} {
		mustExecute(t, with("apply", "club", "--as", user)...)
		mustExecute(t, with("register", "club", "--as", user)...)
	}
	mustExecute(t, with("advance", "club", "voting", "--as", chair)...)
	mustExecute(t, with("vote", "club", "2", "--as", ann)...)

	if _, err := execute(t, with("vote", "club", "1", "--as", ann)...); err == nil {
		t.Fatalf("expected second vote to fail")
	}

	mustExecute(t, with("advance", "club", "closed", "--as", chair)...)

	out = mustExecute(t, with("show", "club", "--results")...)
	var result electionhttp.ElectionResultResponse
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result output: %v (%s)", err, out)
	}
	if len(result.Standings) != 1 || result.Standings[0].CandidateID != 2 || result.Standings[0].Votes != 1 {
		t.Fatalf("unexpected standings: %+v", result.Standings)
	}

	out = mustExecute(t, with("show", "club", "--candidate", "2")...)
	var candidate electionhttp.CandidateResponse
	if err := json.Unmarshal([]byte(out), &candidate); err != nil {
		t.Fatalf("decode candidate output: %v (%s)", err, out)
	}
	if !candidate.IsWinner || candidate.Owner != ben {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}
}

func TestMutatingCommandsRequireActor(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "cli.db")
	_, err := execute(t, "create", "--capacity", "2", "--bolt-path", path)
	if err == nil || !strings.Contains(err.Error(), "--as") {
		t.Fatalf("expected --as error, got %v", err)
	}
}

func TestMemoryStoreIsRejected(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "show", "club", "--store", "memory")
	if err == nil {
		t.Fatalf("expected memory store to be rejected")
	}
}

func TestMigrateNeedsPostgres(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "migrate", "--bolt-path", filepath.Join(t.TempDir(), "cli.db"))
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected postgres requirement, got %v", err)
	}
}
