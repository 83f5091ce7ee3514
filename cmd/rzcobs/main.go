// Command rzcobs encodes messages into rzCOBS frames and decodes frame
// streams back into messages.
//
//	rzcobs [flags] encode|decode
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oy3o/rzcobs"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rzcobs: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rzcobs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a TOML config file")
	input := fs.String("in", "", "input file (default stdin)")
	output := fs.String("out", "", "output file (default stdout)")
	hexText := fs.Bool("hex", false, "read/write messages as hex text, one per line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one command: encode|decode")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *hexText {
		cfg.Hex = true
	}
	logger := newLogger(stderr, cfg.LogLevel)

	in := stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	out := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	stats := rzcobs.NewStats()
	switch cmd := fs.Arg(0); cmd {
	case "encode":
		err = encode(cfg, in, out, stats)
	case "decode":
		err = decode(cfg, in, out, stats, logger)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	snap := stats.Snapshot()
	logger.Info().
		Str("cmd", fs.Arg(0)).
		Int64("frames", snap.Frames).
		Int64("wire_bytes", snap.WireBytes).
		Int64("payload_bytes", snap.Payload).
		Int64("malformed", snap.Malformed).
		Int64("oversized", snap.Oversized).
		Msg("done")
	return err
}

// encode writes one frame per message. Messages are the whole input, or
// one per line with split_lines or hex input.
func encode(cfg config, in io.Reader, out io.Writer, stats *rzcobs.Stats) error {
	w, err := rzcobs.NewWriterSize(out, cfg.BufferSize)
	if err != nil {
		return err
	}
	w.WithStats(stats)

	if !cfg.SplitLines && !cfg.Hex {
		if _, err := io.Copy(w, in); err != nil {
			return err
		}
		if err := w.EndMessage(); err != nil {
			return err
		}
		_, err = w.Result()
		return err
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, cfg.BufferSize), max(cfg.MaxFrameSize, cfg.BufferSize))
	for sc.Scan() {
		msg := sc.Bytes()
		if cfg.Hex {
			if msg, err = hex.DecodeString(strings.TrimSpace(string(msg))); err != nil {
				return fmt.Errorf("line %d: %w", w.Frames()+1, err)
			}
		}
		if err := w.WriteMessage(msg); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	_, err = w.Result()
	return err
}

// decode writes every message of the frame stream in. Bad frames are
// logged and skipped unless strict is set.
func decode(cfg config, in io.Reader, out io.Writer, stats *rzcobs.Stats, logger zerolog.Logger) error {
	r, err := rzcobs.NewReaderSize(in, cfg.BufferSize)
	if err != nil {
		return err
	}
	r.WithMaxFrameSize(cfg.MaxFrameSize).WithStats(stats)

	bw := bufio.NewWriterSize(out, cfg.BufferSize)
	for {
		msg, err := r.ReadMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			if r.Err() != nil || cfg.Strict {
				bw.Flush()
				return err
			}
			if errors.Is(err, rzcobs.ErrMalformedFrame) || errors.Is(err, rzcobs.ErrFrameTooLarge) {
				logger.Warn().Err(err).Int64("frame", r.Frames()).Int64("offset", r.Count()).Msg("skipping frame")
				continue
			}
			bw.Flush()
			return err
		}
		if cfg.TrimZeros {
			msg = rzcobs.TrimPadding(msg)
		}
		logger.Debug().Int("len", len(msg)).Msg("decoded message")
		if cfg.Hex {
			_, err = fmt.Fprintln(bw, hex.EncodeToString(msg))
		} else {
			_, err = bw.Write(msg)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
