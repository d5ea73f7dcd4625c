package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"
	"tolv.systems/chatmark"
	"tolv.systems/chatmark/html"
)

const (
	defaultThemeName = "default"
	defaultWidth     = 80
	defaultChunkSize = 3
	defaultDelay     = 20 * time.Millisecond
)

func init() {
	version.SetDefaultModule("tolv.systems/chatmark")
}

func main() {
	var (
		simulate     bool
		simChunkSize int
		simDelay     time.Duration
		themeName    string
		widthFlag    int
		osc8Flag     string
		listThemes   bool
		outPath      string
		boring       bool
		htmlMode     bool
		htmlTitle    string
		dumpTree     bool
		verbose      bool
		showVersion  bool
	)

	flags := pflag.NewFlagSet("chatmark", pflag.ExitOnError)
	flags.BoolVarP(&simulate, "simulate", "s", false, "Trickle output like a streaming model reply")
	flags.IntVar(&simChunkSize, "simulate-chunk", defaultChunkSize, "Max runes per simulated chunk")
	flags.DurationVar(&simDelay, "simulate-delay", defaultDelay, "Delay between simulated chunks")
	flags.StringVarP(&themeName, "theme", "t", defaultThemeName, "Theme name")
	flags.IntVarP(&widthFlag, "width", "w", 0, "Output width override (0 uses terminal width if available)")
	flags.StringVarP(&osc8Flag, "osc8", "8", "auto", "OSC8 hyperlinks: auto|on|off")
	flags.BoolVar(&listThemes, "list-themes", false, "List available themes")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&boring, "boring", "b", false, "Render without ANSI styling")
	flags.BoolVar(&htmlMode, "html", false, "Render a standalone HTML document instead of ANSI output")
	flags.StringVar(&htmlTitle, "title", "", "HTML document title (default: first heading)")
	flags.BoolVar(&dumpTree, "dump", false, "Dump the parsed node tree instead of rendering")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Report sizes and timing on stderr")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: chatmark [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, chat markup is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if showVersion {
		fmt.Fprintln(os.Stdout, version.Module(), version.Current())
		return
	}
	if listThemes {
		printThemes()
		return
	}

	args := flags.Args()
	reader, closer, err := openInputs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	input, err := io.ReadAll(reader)
	if closer != nil {
		_ = closer.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	writer, closeOut, err := resolveOutput(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open output: %v\n", err)
		os.Exit(1)
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}
	counter := &countingWriter{w: writer}

	theme, ok := chatmark.ThemeByName(themeName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown theme %q\n\n", themeName)
		printThemes()
		os.Exit(2)
	}
	if boring {
		theme = boringTheme()
	}

	start := time.Now()
	switch {
	case dumpTree:
		err = dumpNodes(counter, input)
	case htmlMode:
		err = renderHTML(counter, input, htmlTitle)
	default:
		width := resolveWidth(widthFlag)
		osc8, osc8Err := resolveOSC8(osc8Flag)
		if osc8Err != nil {
			fmt.Fprintf(os.Stderr, "invalid --osc8 %q: %v\n", osc8Flag, osc8Err)
			os.Exit(2)
		}
		if simulate {
			err = chatmark.Simulate(chatmark.SimulateRequest{
				Reader:    bytes.NewReader(input),
				Writer:    counter,
				Width:     width,
				Theme:     theme,
				ChunkSize: simChunkSize,
				Delay:     simDelay,
				Options:   []chatmark.RenderOption{chatmark.WithOSC8(osc8)},
			})
		} else {
			err = chatmark.Render(chatmark.RenderRequest{
				Reader:  bytes.NewReader(input),
				Writer:  counter,
				Width:   width,
				Theme:   theme,
				Options: []chatmark.RenderOption{chatmark.WithOSC8(osc8)},
			})
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "chatmark: %s in, %s out, %s\n",
			humanize.Bytes(uint64(len(input))),
			humanize.Bytes(uint64(counter.n)),
			time.Since(start).Round(time.Millisecond),
		)
	}
}

func dumpNodes(w io.Writer, input []byte) error {
	body := chatmark.StripFrontMatter(input)
	if err := chatmark.ValidateInput(body); err != nil {
		return err
	}
	nodes := chatmark.Parse(string(body))
	_, err := pp.Fprintln(w, nodes)
	return err
}

func renderHTML(w io.Writer, input []byte, title string) error {
	body := chatmark.StripFrontMatter(input)
	if err := chatmark.ValidateInput(body); err != nil {
		return err
	}
	nodes := chatmark.Parse(string(body))
	if title == "" {
		title = firstHeading(nodes)
	}
	return html.RenderDocument(w, title, nodes)
}

// firstHeading supplies the document title when none is given.
func firstHeading(nodes []chatmark.ContentNode) string {
	for _, node := range nodes {
		if h, ok := node.(chatmark.Heading); ok {
			return h.Text()
		}
	}
	return ""
}

func printThemes() {
	names := chatmark.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(os.Stdout, name)
	}
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconvAtoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func resolveOSC8(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return chatmark.DetectOSC8Support(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

func boringTheme() chatmark.Theme {
	return chatmark.NewTheme("boring", chatmark.Styles{})
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return os.Stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	reader := &multiInputReader{sources: sources}
	return reader, reader, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	clean := normalizePath(path)
	f, err := os.Open(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func strconvAtoi(value string) (int, error) {
	var n int
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, fmt.Errorf("invalid int")
		}
		n = n*10 + int(value[i]-'0')
	}
	return n, nil
}
