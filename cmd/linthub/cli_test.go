// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"linthub": Execute,
	})
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	t.Parallel()

	goEnv := goToolEnv(t)
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			for k, v := range goEnv {
				env.Setenv(k, v)
			}
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("XDG_CACHE_HOME", filepath.Join(env.WorkDir, ".cache"))
			env.Setenv("LINTHUB_ANALYZERS_DOWNLOAD_ENABLED", "false")
			env.Setenv("LINTHUB_LOG_LEVEL", "warn")
			return nil
		},
		ContinueOnError: true,
	})
}

// goToolEnv returns the variables the go command needs inside a script,
// whose HOME is not writable.
func goToolEnv(t *testing.T) map[string]string {
	t.Helper()

	env := map[string]string{
		"GOTOOLCHAIN": "local",
		"GOPROXY":     "off",
		"GOFLAGS":     "-mod=mod",
	}
	for _, k := range []string{"GOPATH", "GOMODCACHE", "GOCACHE", "GOROOT"} {
		if v := os.Getenv(k); v != "" {
			env[k] = v
		}
	}
	if env["GOCACHE"] == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			t.Skipf("no user cache dir for GOCACHE: %v", err)
		}
		env["GOCACHE"] = filepath.Join(dir, "go-build")
	}
	if env["GOPATH"] == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home dir for GOPATH: %v", err)
		}
		env["GOPATH"] = filepath.Join(home, "go")
	}
	return env
}
