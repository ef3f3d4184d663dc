package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func apkBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("AndroidManifest.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("<manifest/>"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeTestConfig(t *testing.T, checkURL, cacheDir string) string {
	t.Helper()
	content := fmt.Sprintf(`
check_url = %q
package_name = "com.example.app"
local_version_code = 10
cache_dir = %q
launcher_command = "true"
sdk_int = 30
`, checkURL, cacheDir)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommandInstallsUpdate(t *testing.T) {
	apk := apkBytes(t)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"version":12,"filever":"v2","ossPath":"%s/u.apk","isForce":0,"verDesc":"Bug fixes"}}`, srv.URL)
	})
	mux.HandleFunc("/u.apk", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(apk)
	})

	cacheDir := t.TempDir()
	cfgPath := writeTestConfig(t, srv.URL+"/check", cacheDir)

	out, err := runCLI(t, "1\n", "check", "--config", cfgPath, "--manual")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Bug fixes") {
		t.Errorf("update dialog not rendered:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "update_vv2.apk")); err != nil {
		t.Errorf("artifact not cached: %v", err)
	}
}

func TestCheckCommandNoUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"version":10}}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL, t.TempDir())
	out, err := runCLI(t, "", "check", "--config", cfgPath, "--manual", "--lang", "zh-CN")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "当前已是最新版本") {
		t.Errorf("expected localized toast, got:\n%s", out)
	}
}

func TestCheckCommandReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL, t.TempDir())
	if _, err := runCLI(t, "", "check", "--config", cfgPath); err == nil {
		t.Error("expected failed run to return an error")
	}
}

func TestCheckCommandURLFlag(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, "http://127.0.0.1:1/unused", t.TempDir())
	if _, err := runCLI(t, "", "check", "--config", cfgPath, "--url", srv.URL); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !hit {
		t.Error("--url did not override check_url")
	}
}

func TestCheckCommandRequiresURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	_ = os.WriteFile(path, []byte(`package_name = "p"`), 0644)
	if _, err := runCLI(t, "", "check", "--config", path); err == nil {
		t.Error("expected config error without check_url")
	}
}

func TestCheckCommandReportsStatus(t *testing.T) {
	var outcome string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"version":10}}`))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Outcome string `json:"outcome"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		outcome = payload.Outcome
		w.WriteHeader(http.StatusNoContent)
	})

	cfgPath := writeTestConfig(t, srv.URL+"/check", t.TempDir())
	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintf(f, "status_report_url = %q\n", srv.URL+"/status")
	f.Close()

	if _, err := runCLI(t, "", "check", "--config", cfgPath); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if outcome != "NoUpdateFound" {
		t.Errorf("reported outcome = %q, want NoUpdateFound", outcome)
	}
}

func TestCheckCommandSendsFormFieldsVerbatim(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		form = r.PostForm
		_, _ = w.Write([]byte(`{"data":{"version":10}}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL, t.TempDir())
	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, "http_method = \"POST\"\n\n[form_body]\nappId = \"7\"\n")
	f.Close()

	if _, err := runCLI(t, "", "check", "--config", cfgPath); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if got := form["appId"]; len(got) != 1 || got[0] != "7" {
		t.Errorf("posted form = %v, want appId=7", form)
	}
}
