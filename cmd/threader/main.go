package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/vdavid/mailthread/internal/config"
	"github.com/vdavid/mailthread/internal/imap"
	"github.com/vdavid/mailthread/internal/models"
	"github.com/vdavid/mailthread/internal/thread"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := run(context.Background(), cfg, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Threading failed: %v", err)
	}
}

type options struct {
	format     string
	algorithm  string
	insistOnRe bool
	useUID     bool
	allow      []uint32
	input      string
}

// parseFlags reads the command line. Flags default to the loaded config.
func parseFlags(cfg *config.Config, args []string) (*options, error) {
	opts := &options{}
	var allow string

	fs := flag.NewFlagSet("threader", flag.ContinueOnError)
	fs.StringVar(&opts.format, "format", "imap", "output format: imap, tree or json")
	fs.StringVar(&opts.algorithm, "algorithm", string(cfg.Algorithm), "threading algorithm: REFERENCES or ORDEREDSUBJECT")
	fs.BoolVar(&opts.insistOnRe, "insist-on-re", cfg.InsistOnRe, "only group same-subject threads when one is a reply")
	fs.BoolVar(&opts.useUID, "uid", cfg.UseUID, "identify messages by UID instead of sequence number")
	fs.StringVar(&allow, "allow", "", "comma-separated message numbers to list; all when empty")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: threader [flags] [messages.json]\n\nReads a JSON array of messages from the file or stdin.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	opts.input = fs.Arg(0)

	switch opts.format {
	case "imap", "tree", "json":
	default:
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}

	for _, part := range strings.Split(allow, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid message number %q in -allow", part)
		}
		opts.allow = append(opts.allow, uint32(n))
	}

	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(cfg, args)
	if err != nil {
		return err
	}

	engine, err := thread.NewEngine(config.ParseAlgorithm(opts.algorithm), thread.Options{InsistOnRe: opts.insistOnRe})
	if err != nil {
		return err
	}

	source := "stdin"
	input := stdin
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		source = opts.input
		input = f
	}

	records, err := readMessages(input)
	if err != nil {
		return err
	}

	service := imap.NewService(engine, opts.useUID)
	result, err := service.ThreadMessages(ctx, source, records)
	if err != nil {
		return err
	}

	switch opts.format {
	case "tree":
		return writeTree(stdout, result.Root, opts.useUID)
	case "json":
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(imap.Summarize(result.Root))
	default:
		_, err := fmt.Fprintln(stdout, imap.FormatThreadResponse(result.Root, opts.useUID, opts.allow))
		return err
	}
}

// readMessages decodes a JSON array of messages. Messages without a sequence
// number are numbered by their position in the array, starting at 1.
func readMessages(r io.Reader) ([]thread.Record, error) {
	var msgs []*models.Message
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	records := make([]thread.Record, 0, len(msgs))
	for i, m := range msgs {
		if m == nil {
			continue
		}
		if m.SeqNum == 0 {
			m.SeqNum = uint32(i + 1)
		}
		records = append(records, m)
	}
	return records, nil
}

// writeTree prints one message per line, indented by depth.
func writeTree(w io.Writer, root thread.Record, useUID bool) error {
	type entry struct {
		r     thread.Record
		depth int
	}

	var stack []entry
	if root != nil {
		stack = append(stack, entry{r: root})
	}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		line := "*"
		if m, ok := e.r.(*models.Message); ok {
			line = strings.TrimSpace(m.Token(useUID) + " " + m.RawSubject())
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", e.depth), line); err != nil {
			return err
		}

		if next := e.r.Next(); next != nil {
			stack = append(stack, entry{r: next, depth: e.depth})
		}
		if child := e.r.Child(); child != nil {
			stack = append(stack, entry{r: child, depth: e.depth + 1})
		}
	}
	return nil
}
