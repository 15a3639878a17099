package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rscript"
)

func writeScript(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func names(algs []*rscript.Algorithm) []string {
	var out []string
	for _, a := range algs {
		out = append(out, a.Name)
	}
	return out
}

func TestDiscoverMissingFolders(t *testing.T) {
	tmp := t.TempDir()
	var log processinglog.Memory

	algs := Discover([]string{
		filepath.Join(tmp, "does-not-exist"),
		filepath.Join(tmp, "also", "missing"),
	}, rscript.Parser{}, &log)

	if len(algs) != 0 {
		t.Errorf("expected no algorithms, got %v", names(algs))
	}
	if n := log.Count(processinglog.SeverityError); n != 0 {
		t.Errorf("expected no error entries, got %d", n)
	}
}

func TestDiscoverEmptyFolderList(t *testing.T) {
	var log processinglog.Memory
	if algs := Discover(nil, rscript.Parser{}, &log); len(algs) != 0 {
		t.Errorf("expected no algorithms, got %d", len(algs))
	}
	if len(log.Entries()) != 0 {
		t.Errorf("expected no log entries, got %v", log.Entries())
	}
}

func TestDiscoverMixedFolder(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.rsx", "##Buffer=name\n##Layer=vector\n##output=output vector\noutput = Layer\n")
	writeScript(t, dir, "b.rsx", "##   =name\n##Layer=vector\n")
	writeScript(t, dir, "c.txt", "##Slope=name\n##Layer=raster\n")
	writeScript(t, dir, "d.rsx", "##this is not a directive\n")

	var log processinglog.Memory
	algs := Discover([]string{dir}, rscript.Parser{}, &log)

	if len(algs) != 1 {
		t.Fatalf("expected exactly one algorithm, got %v", names(algs))
	}
	if algs[0].Name != "Buffer" {
		t.Errorf("Name = %q, want %q", algs[0].Name, "Buffer")
	}
	if filepath.Base(algs[0].SourcePath) != "a.rsx" {
		t.Errorf("SourcePath = %q, want a.rsx", algs[0].SourcePath)
	}

	entries := log.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d: %v", len(entries), entries)
	}
	if entries[0].Severity != processinglog.SeverityError {
		t.Errorf("Severity = %q, want %q", entries[0].Severity, processinglog.SeverityError)
	}
	if !strings.Contains(entries[0].Message, "d.rsx") {
		t.Errorf("log message %q should reference d.rsx", entries[0].Message)
	}
}

func TestDiscoverBlankNamesAreSilent(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "empty.rsx", "##=name\n")
	writeScript(t, dir, "spaces.rsx", "##  \t =name\n")

	var log processinglog.Memory
	algs := Discover([]string{dir}, rscript.Parser{}, &log)

	if len(algs) != 0 {
		t.Errorf("expected no algorithms, got %v", names(algs))
	}
	if len(log.Entries()) != 0 {
		t.Errorf("expected no log entries, got %v", log.Entries())
	}
}

func TestDiscoverMalformedLogsParserMessage(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.rsx", "x")

	parser := ParserFunc(func(path string) rscript.Result {
		return rscript.Malformed("Could not load R script: broken header")
	})

	var log processinglog.Memory
	algs := Discover([]string{dir}, parser, &log)

	if len(algs) != 0 {
		t.Errorf("expected no algorithms, got %v", names(algs))
	}
	entries := log.Entries()
	if len(entries) != 1 || entries[0].Message != "Could not load R script: broken header" {
		t.Errorf("entries = %v, want exactly the parser message", entries)
	}
}

func TestDiscoverUnexpectedFailuresDoNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "1_panics.rsx", "x")
	writeScript(t, dir, "2_fails.rsx", "x")
	writeScript(t, dir, "3_nil.rsx", "x")
	writeScript(t, dir, "4_good.rsx", "x")

	parser := ParserFunc(func(path string) rscript.Result {
		switch filepath.Base(path) {
		case "1_panics.rsx":
			panic("boom")
		case "2_fails.rsx":
			return rscript.Unexpected(os.ErrPermission)
		case "3_nil.rsx":
			return rscript.Result{}
		}
		return rscript.Parsed(&rscript.Algorithm{Name: "Good", SourcePath: path})
	})

	var log processinglog.Memory
	algs := Discover([]string{dir}, parser, &log)

	if got := names(algs); !reflect.DeepEqual(got, []string{"Good"}) {
		t.Errorf("names = %v, want [Good]", got)
	}

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d: %v", len(entries), entries)
	}
	wantFiles := []string{"1_panics.rsx", "2_fails.rsx", "3_nil.rsx"}
	for i, e := range entries {
		if !strings.HasPrefix(e.Message, "Could not load R script: "+wantFiles[i]) {
			t.Errorf("entries[%d] = %q, want it to name %s", i, e.Message, wantFiles[i])
		}
	}
	if !strings.Contains(entries[0].Message, "boom") {
		t.Errorf("panic entry %q should carry the panic value", entries[0].Message)
	}
	if !strings.Contains(entries[1].Message, os.ErrPermission.Error()) {
		t.Errorf("failure entry %q should carry the error description", entries[1].Message)
	}
}

func TestDiscoverIgnoresOtherSuffixes(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "script.R", "##Valid=name\n")
	writeScript(t, dir, "notes.rsx.bak", "##Valid=name\n")
	writeScript(t, dir, "script.rsx.help", `{"ALG_DESC": "help"}`)

	called := 0
	parser := ParserFunc(func(path string) rscript.Result {
		called++
		return rscript.Parsed(&rscript.Algorithm{Name: "x", SourcePath: path})
	})

	if algs := Discover([]string{dir}, parser, nil); len(algs) != 0 {
		t.Errorf("expected no algorithms, got %v", names(algs))
	}
	if called != 0 {
		t.Errorf("parser called %d times, want 0", called)
	}
}

func TestDiscoverCustomSuffix(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "one.rscript", "##One=name\n")
	writeScript(t, dir, "two.rsx", "##Two=name\n")

	algs := NewLoader(rscript.Parser{}, nil, WithSuffix(".rscript")).Discover([]string{dir})
	if got := names(algs); !reflect.DeepEqual(got, []string{"One"}) {
		t.Errorf("names = %v, want [One]", got)
	}
}

func TestDiscoverRecursesAndKeepsOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeScript(t, first, "b.rsx", "##B=name\n")
	writeScript(t, first, "a/deep/er/c.rsx", "##C=name\n")
	writeScript(t, first, "a/a.rsx", "##A=name\n")
	writeScript(t, second, "z.rsx", "##Z=name\n")

	algs := Discover([]string{second, first}, rscript.Parser{}, nil)

	want := []string{"Z", "A", "C", "B"}
	if got := names(algs); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestDiscoverKeepsDuplicates(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	script := "##Terrain=group\n##Slope=name\n##DEM=raster\n"
	writeScript(t, first, "slope.rsx", script)
	writeScript(t, second, "slope.rsx", script)

	algs := Discover([]string{first, second}, rscript.Parser{}, nil)

	if got := names(algs); !reflect.DeepEqual(got, []string{"Slope", "Slope"}) {
		t.Fatalf("names = %v, want [Slope Slope]", got)
	}
	if algs[0].SourcePath == algs[1].SourcePath {
		t.Error("expected records from two different files")
	}
}

func TestDiscoverIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "one.rsx", "##One=name\n##Layer=vector\n")
	writeScript(t, dir, "sub/two.rsx", "##Two=name\n##Dist=number 5\n")
	writeScript(t, dir, "sub/bad.rsx", "##Layer=nonsense\n")

	var log processinglog.Memory
	loader := NewLoader(rscript.Parser{}, &log)
	first := loader.Discover([]string{dir})
	second := loader.Discover([]string{dir})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive passes differ:\n%v\n%v", names(first), names(second))
	}
	if n := log.Count(processinglog.SeverityError); n != 2 {
		t.Errorf("expected log entries to accumulate to 2, got %d", n)
	}
}

func TestDiscoverSkipsFileGivenAsFolder(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "single.rsx", "##Single=name\n")

	if algs := Discover([]string{path}, rscript.Parser{}, nil); len(algs) != 0 {
		t.Errorf("expected no algorithms, got %v", names(algs))
	}
}

func TestDiscoverDoesNotMutateInput(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "x.rsx", "##X=name\n")
	folders := []string{dir, filepath.Join(dir, "missing")}
	orig := append([]string(nil), folders...)

	Discover(folders, rscript.Parser{}, nil)

	if !reflect.DeepEqual(folders, orig) {
		t.Errorf("folders mutated: %v, want %v", folders, orig)
	}
}

func TestFolderSet(t *testing.T) {
	set := FolderSet{User: []string{"/a", "/b", "/a"}, Builtin: "/builtin"}
	want := []string{"/a", "/b", "/a", "/builtin"}
	if got := set.Folders(); !reflect.DeepEqual(got, want) {
		t.Errorf("Folders() = %v, want %v", got, want)
	}
	if got := (FolderSet{}).Folders(); len(got) != 0 {
		t.Errorf("empty FolderSet.Folders() = %v, want empty", got)
	}
}

func TestDiscoverWhitespaceNameFromParser(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "stub.rsx", "x")

	parser := ParserFunc(func(path string) rscript.Result {
		return rscript.Parsed(&rscript.Algorithm{Name: " \t\n ", SourcePath: path})
	})

	var log processinglog.Memory
	if algs := Discover([]string{dir}, parser, &log); len(algs) != 0 {
		t.Errorf("expected whitespace-named record to be discarded, got %v", names(algs))
	}
	if len(log.Entries()) != 0 {
		t.Errorf("expected no log entries, got %v", log.Entries())
	}
}

func TestDiscoverSymlinkedFolder(t *testing.T) {
	target := t.TempDir()
	writeScript(t, target, "a.rsx", "##A=name\n##Layer=vector\n")
	writeScript(t, target, "sub/b.rsx", "##B=name\n")
	link := filepath.Join(t.TempDir(), "rscripts")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var log processinglog.Memory
	algs := Discover([]string{link}, rscript.Parser{}, &log)

	if got := names(algs); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("names = %v, want [A B]", got)
	}
	if want := filepath.Join(link, "sub", "b.rsx"); algs[1].SourcePath != want {
		t.Errorf("SourcePath = %q, want %q", algs[1].SourcePath, want)
	}
	if len(log.Entries()) != 0 {
		t.Errorf("unexpected log entries: %v", log.Entries())
	}
}

func TestDiscoverSymlinkedScript(t *testing.T) {
	target := writeScript(t, t.TempDir(), "shared.rsx", "##Shared=name\n")
	dir := t.TempDir()
	if err := os.Symlink(target, filepath.Join(dir, "shared.rsx")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling.rsx")); err != nil {
		t.Fatal(err)
	}

	var log processinglog.Memory
	algs := Discover([]string{dir}, rscript.Parser{}, &log)

	if got := names(algs); !reflect.DeepEqual(got, []string{"Shared"}) {
		t.Errorf("names = %v, want [Shared]", got)
	}
	if len(log.Entries()) != 0 {
		t.Errorf("unexpected log entries: %v", log.Entries())
	}
}

func TestDiscoverOverlongLineLogsFileName(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "huge.rsx", "##Huge=name\nx <- \""+strings.Repeat("a", 2<<20)+"\"\n")
	writeScript(t, dir, "ok.rsx", "##Ok=name\n")

	var log processinglog.Memory
	algs := Discover([]string{dir}, rscript.Parser{}, &log)

	if got := names(algs); !reflect.DeepEqual(got, []string{"Ok"}) {
		t.Errorf("names = %v, want [Ok]", got)
	}
	entries := log.Entries()
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Message, "Could not load R script: huge.rsx\n") {
		t.Errorf("entries = %+v", entries)
	}
}
