package builtins

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siliconlad/aish/internal/alias"
)

type testCtx struct {
	table *alias.Table
}

func (c *testCtx) Aliases() *alias.Table { return c.table }

func newCtx() *testCtx {
	return &testCtx{table: alias.NewTable()}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"cd", "pwd", "exit", "echo", "export", "unset", "alias"} {
		if !IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false", name)
		}
	}
	if IsBuiltin("ls") {
		t.Error("IsBuiltin(ls) = true")
	}
}

func TestEcho(t *testing.T) {
	out, err := Run(newCtx(), "echo", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a b c" {
		t.Errorf("got %q", out)
	}
}

func TestCd(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(orig) }()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Run(newCtx(), "cd", []string{dir}); err != nil {
		t.Fatalf("cd: %v", err)
	}
	got, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("cwd: got %q, expected %q", got, dir)
	}

	if _, err := Run(newCtx(), "cd", []string{"/nonexistent_aish_dir"}); err == nil {
		t.Error("cd to a missing directory: expected error")
	}
}

func TestCd_DefaultsToHome(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(orig) }()

	home, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)

	if _, err := Run(newCtx(), "cd", nil); err != nil {
		t.Fatalf("cd: %v", err)
	}
	got, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if got != home {
		t.Errorf("cwd: got %q, expected %q", got, home)
	}
}

func TestPwd(t *testing.T) {
	out, err := Run(newCtx(), "pwd", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if out != wd {
		t.Errorf("got %q, expected %q", out, wd)
	}
}

func TestExit(t *testing.T) {
	_, err := Run(newCtx(), "exit", nil)
	if !stderrors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
}

func TestExport(t *testing.T) {
	t.Setenv("AISH_EXPORT_TEST", "")

	if _, err := Run(newCtx(), "export", []string{"AISH_EXPORT_TEST=42"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := os.Getenv("AISH_EXPORT_TEST"); got != "42" {
		t.Errorf("env: got %q", got)
	}

	// Listing includes the variable as K="V".
	out, err := Run(newCtx(), "export", nil)
	if err != nil {
		t.Fatalf("export listing: %v", err)
	}
	if !strings.Contains(out, `AISH_EXPORT_TEST="42"`) {
		t.Errorf("listing missing entry:\n%s", out)
	}

	if _, err := Run(newCtx(), "export", []string{"A=1", "B=2"}); err == nil {
		t.Error("export with two arguments: expected error")
	}
	if _, err := Run(newCtx(), "export", []string{"NOEQUALS"}); err == nil {
		t.Error("export without '=': expected error")
	}
}

func TestExport_TildeValue(t *testing.T) {
	home, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	t.Setenv("AISH_TILDE_TEST", "")

	if _, err := Run(newCtx(), "export", []string{"AISH_TILDE_TEST=~/sub"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := os.Getenv("AISH_TILDE_TEST"); got != home+"/sub" {
		t.Errorf("tilde expansion: got %q", got)
	}
}

func TestUnset(t *testing.T) {
	t.Setenv("AISH_UNSET_TEST", "set")

	if _, err := Run(newCtx(), "unset", []string{"AISH_UNSET_TEST"}); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if _, ok := os.LookupEnv("AISH_UNSET_TEST"); ok {
		t.Error("variable still set after unset")
	}

	if _, err := Run(newCtx(), "unset", nil); err == nil {
		t.Error("unset with no arguments: expected error")
	}
}

func TestAlias(t *testing.T) {
	ctx := newCtx()

	// Define, overwrite, query.
	if _, err := Run(ctx, "alias", []string{"a=echo A"}); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := Run(ctx, "alias", []string{"a=echo B"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	out, err := Run(ctx, "alias", []string{"a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if out != "a='echo B'" {
		t.Errorf("query: got %q", out)
	}

	// Listing prints every alias, sorted.
	if _, err := Run(ctx, "alias", []string{"b=echo C"}); err != nil {
		t.Fatal(err)
	}
	out, err = Run(ctx, "alias", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "a='echo B'\nb='echo C'" {
		t.Errorf("listing: got %q", out)
	}

	// Unknown alias is an error.
	if _, err := Run(ctx, "alias", []string{"missing"}); err == nil {
		t.Error("query of unknown alias: expected error")
	}
}
