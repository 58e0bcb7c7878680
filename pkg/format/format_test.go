package format_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/format"
	"github.com/yaklabco/refapply/pkg/fsutil"
)

func TestWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ws       format.Whitespace
		original string
		content  string
		changed  []fix.Range
		want     string
	}{
		{
			name:     "trims only changed lines",
			ws:       format.DefaultWhitespace(),
			original: "a  \nb\nc  \n",
			content:  "a  \nbee   \nc  \n",
			changed:  []fix.Range{{Start: 4, End: 10}},
			want:     "a  \nbee\nc  \n",
		},
		{
			name:     "nil changed trims everything",
			ws:       format.DefaultWhitespace(),
			original: "a \n",
			content:  "a \nb\t\n",
			changed:  nil,
			want:     "a\nb\n",
		},
		{
			name:     "deletion touches its line",
			ws:       format.DefaultWhitespace(),
			original: "foo(x) \n",
			content:  "foo() \n",
			changed:  []fix.Range{{Start: 4, End: 4}},
			want:     "foo()\n",
		},
		{
			name:     "keeps carriage return",
			ws:       format.DefaultWhitespace(),
			original: "x\r\n",
			content:  "xy \r\n",
			changed:  []fix.Range{{Start: 1, End: 2}},
			want:     "xy\r\n",
		},
		{
			name:     "restores final newline",
			ws:       format.DefaultWhitespace(),
			original: "int a;\n",
			content:  "int a;",
			changed:  []fix.Range{{Start: 6, End: 6}},
			want:     "int a;\n",
		},
		{
			name:     "no final newline when original had none",
			ws:       format.DefaultWhitespace(),
			original: "int a;",
			content:  "long a;",
			changed:  []fix.Range{{Start: 0, End: 4}},
			want:     "long a;",
		},
		{
			name:     "disabled",
			ws:       format.Whitespace{},
			original: "a\n",
			content:  "a  ",
			changed:  nil,
			want:     "a  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.ws.Format(context.Background(), format.Request{
				Path:     "a.c",
				Content:  []byte(tt.content),
				Original: []byte(tt.original),
				Changed:  tt.changed,
			})
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWhitespace_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	content := []byte("a  \nb")
	_, err := format.DefaultWhitespace().Format(context.Background(), format.Request{
		Content:  content,
		Original: []byte("a\nb\n"),
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(content) != "a  \nb" {
		t.Errorf("input mutated: %q", content)
	}
}

func TestGofmt(t *testing.T) {
	t.Parallel()

	got, err := format.Gofmt{}.Format(context.Background(), format.Request{
		Path:    "main.go",
		Content: []byte("package main\nfunc  main( ) {  }\n"),
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(got) != "package main\n\nfunc main() {}\n" {
		t.Errorf("Format() = %q", got)
	}

	_, err = format.Gofmt{}.Format(context.Background(), format.Request{
		Path:    "broken.go",
		Content: []byte("package main\nfunc {"),
	})
	if !errors.Is(err, format.ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestRegistry_NamedStyles(t *testing.T) {
	t.Parallel()

	reg := format.NewRegistry(format.WithStyleFileName(""))
	ctx := context.Background()

	got, err := reg.Format(ctx, format.Request{Path: "a.c", Content: []byte("x  \n"), Style: format.StyleNone})
	if err != nil || string(got) != "x  \n" {
		t.Errorf("none: Format() = %q, %v", got, err)
	}

	got, err = reg.Format(ctx, format.Request{Path: "a.c", Content: []byte("x  \n"), Style: format.StyleWhitespace})
	if err != nil || string(got) != "x\n" {
		t.Errorf("whitespace: Format() = %q, %v", got, err)
	}

	_, err = reg.Format(ctx, format.Request{Path: "a.c", Content: []byte("x"), Style: "LLVM"})
	if !errors.Is(err, format.ErrFormat) || !errors.Is(err, format.ErrUnknownStyle) {
		t.Errorf("unknown style error = %v, want ErrFormat and ErrUnknownStyle", err)
	}

	upper := format.FormatterFunc(func(_ context.Context, req format.Request) ([]byte, error) {
		return append([]byte("// generated\n"), req.Content...), nil
	})
	if err := reg.Register("header", upper); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !reg.Has("header") {
		t.Error("Has(header) = false after Register")
	}
	got, err = reg.Format(ctx, format.Request{Path: "a.c", Content: []byte("x\n"), Style: "header"})
	if err != nil || string(got) != "// generated\nx\n" {
		t.Errorf("header: Format() = %q, %v", got, err)
	}

	if err := reg.Register(format.StyleFile, upper); !errors.Is(err, format.ErrUnknownStyle) {
		t.Errorf("Register(file) error = %v, want ErrUnknownStyle", err)
	}
}

func TestRegistry_Styles(t *testing.T) {
	t.Parallel()

	got := format.NewRegistry().Styles()
	want := []string{"file", "gofmt", "none", "whitespace"}
	if len(got) != len(want) {
		t.Fatalf("Styles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Styles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_FileStyleInference(t *testing.T) {
	t.Parallel()

	reg := format.NewRegistry(format.WithStyleFileName(""))

	_, name, err := reg.Resolve(context.Background(), "cmd/main.go", nil, format.StyleFile)
	if err != nil || name != format.StyleGofmt {
		t.Errorf("Resolve(main.go) = %q, %v; want gofmt", name, err)
	}

	_, name, err = reg.Resolve(context.Background(), "src/a.c", []byte("int a;\n"), "")
	if err != nil || name != format.StyleWhitespace {
		t.Errorf("Resolve(a.c) = %q, %v; want whitespace", name, err)
	}
}

func TestRegistry_StyleFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sub := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	styleFile := "style-" + t.Name() + ".yml"
	if err := os.WriteFile(filepath.Join(root, styleFile), []byte("style: none\n"), 0o644); err != nil {
		t.Fatalf("write style file: %v", err)
	}

	reg := format.NewRegistry(format.WithStyleFileName(styleFile))
	path := filepath.Join(sub, "main.go")

	// The style file overrides Go inference.
	got, err := reg.Format(context.Background(), format.Request{
		Path:    path,
		Content: []byte("package main\nfunc  main( ) {  }\n"),
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(got) != "package main\nfunc  main( ) {  }\n" {
		t.Errorf("Format() = %q, want unchanged", got)
	}

	// A closer style file wins.
	if err := os.WriteFile(filepath.Join(sub, styleFile), []byte("final_newline: false\n"), 0o644); err != nil {
		t.Fatalf("write style file: %v", err)
	}
	other := format.NewRegistry(format.WithStyleFileName(styleFile))
	_, name, err := other.Resolve(context.Background(), path, nil, format.StyleFile)
	if err != nil || name != format.StyleWhitespace {
		t.Errorf("Resolve() = %q, %v; want whitespace", name, err)
	}
}

func TestRegistry_StyleFileFromFileAccess(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "src", "main.go")
	mem := fsutil.NewMemory(map[string]string{
		filepath.Join(root, format.StyleFileName): "style: none\n",
	})

	_, name, err := format.NewRegistry(format.WithFiles(mem)).Resolve(context.Background(), path, nil, format.StyleFile)
	if err != nil || name != format.StyleNone {
		t.Errorf("Resolve() with stored style file = %q, %v; want none", name, err)
	}

	// The local file system holds no style file for root.
	_, name, err = format.NewRegistry().Resolve(context.Background(), path, nil, format.StyleFile)
	if err != nil || name != format.StyleGofmt {
		t.Errorf("Resolve() from disk = %q, %v; want gofmt", name, err)
	}
}

func TestRegistry_StyleFileSearchBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		files     map[string]string
		wantStyle string
		wantErr   error
	}{
		{
			name: "stops at repository root",
			files: map[string]string{
				"/work/.refapply-style.yml": "style: nosuch\n",
				"/work/repo/.git/HEAD":      "ref: refs/heads/main\n",
				"/work/repo/src/a.c":        "int a;\n",
			},
			wantStyle: format.StyleWhitespace,
		},
		{
			name: "style file at repository root applies",
			files: map[string]string{
				"/work/repo/.refapply-style.yml": "style: none\n",
				"/work/repo/.hg/store":           "",
				"/work/repo/src/a.c":             "int a;\n",
			},
			wantStyle: format.StyleNone,
		},
		{
			name: "searches above directories without a repository",
			files: map[string]string{
				"/work/.refapply-style.yml": "style: nosuch\n",
				"/work/repo/src/a.c":        "int a;\n",
			},
			wantErr: format.ErrUnknownStyle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := format.NewRegistry(format.WithFiles(fsutil.NewMemory(tt.files)))
			_, name, err := reg.Resolve(context.Background(), "/work/repo/src/a.c", []byte("int a;\n"), format.StyleFile)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || name != tt.wantStyle {
				t.Errorf("Resolve() = %q, %v; want %q", name, err, tt.wantStyle)
			}
		})
	}
}

func TestStyleConfig_NamedAlongsideFileStyle(t *testing.T) {
	t.Parallel()

	var sc *format.StyleConfig
	var err error
	sc, err = format.ParseStyleFile("x.yml", []byte("style: "+format.StyleFile+"\n"))
	if err != nil {
		t.Fatalf("ParseStyleFile() error = %v", err)
	}
	if sc.Style != format.StyleFile || sc.Path != "x.yml" {
		t.Errorf("ParseStyleFile() = %+v", sc)
	}
}

func TestParseStyleFile(t *testing.T) {
	t.Parallel()

	sf, err := format.ParseStyleFile("x.yml", []byte("style: gofmt\ntrim_trailing_whitespace: false\n"))
	if err != nil {
		t.Fatalf("ParseStyleFile() error = %v", err)
	}
	if sf.Style != "gofmt" || sf.TrimTrailingWhitespace == nil || *sf.TrimTrailingWhitespace {
		t.Errorf("ParseStyleFile() = %+v", sf)
	}

	if _, err := format.ParseStyleFile("x.yml", []byte("bogus: 1\n")); err == nil {
		t.Error("ParseStyleFile() accepted unknown key")
	}

	sf, err = format.ParseStyleFile("x.yml", []byte("# empty\n"))
	if err != nil || sf.Style != "" {
		t.Errorf("ParseStyleFile(comment only) = %+v, %v", sf, err)
	}
}
